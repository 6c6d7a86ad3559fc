package launcher

import (
	"context"
	"fmt"

	"github.com/zinc-sig/ftlaunch/internal/outcome"
	"github.com/zinc-sig/ftlaunch/internal/report"
	"github.com/zinc-sig/ftlaunch/internal/runner"
)

func (l *Launcher) runAPI(ctx context.Context, d *Descriptor) *outcome.RunOutcome {
	run := l.newRun(d)

	loc, ok := apiReportLocation(d)
	run.ReportLocation = loc
	if !ok {
		return l.fail(run, "invalid report path")
	}
	l.note("Report path: %s", loc)

	args := []string{"-test", d.TestPath, "-report", loc}
	if d.InputParamsFile != "" {
		args = append(args, "-inParams", d.InputParamsFile)
	}
	command := d.Command
	if command == "" {
		command = l.opts.APIRunner
	}

	result, err := l.execute(ctx, run, &runner.Config{
		Command: command,
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
		return l.fail(run, fmt.Sprintf("The API test runner's exit code was: %d", result.ExitCode))
	}

	l.reconcile(ctx, run)

	if !report.HasFile(loc, report.ResultsXML) && !report.HasFile(loc, report.RunResultsHTML) {
		return l.fail(run, "No Results.xml or run_results.html file found")
	}
	l.resolve(run)
	return run
}
