package launcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/zinc-sig/ftlaunch/internal/outcome"
	"github.com/zinc-sig/ftlaunch/internal/runner"
)

func (l *Launcher) runGeneric(ctx context.Context, d *Descriptor) *outcome.RunOutcome {
	run := l.newRun(d)

	loc, ok := apiReportLocation(d)
	run.ReportLocation = loc
	if !ok {
		return l.fail(run, "invalid report path")
	}

	replacer := strings.NewReplacer("{test}", d.TestPath, "{report}", loc)
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = replacer.Replace(a)
	}

	result, err := l.execute(ctx, run, &runner.Config{
		Command: d.Command,
		Args:    args,
		Dir:     d.Dir,
		Env:     d.Env,
	})
	if err != nil {
		return l.fail(run, err.Error())
	}

	switch result.Status {
	case runner.StatusCanceled:
		return l.fail(run, "Process was stopped since job has timed out!")
	case runner.StatusFailed:
		return l.fail(run, fmt.Sprintf("The test runner's exit code was: %d", result.ExitCode))
	}

	l.resolve(run)
	return run
}
