package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/zinc-sig/ftlaunch/internal/outcome"
	"github.com/zinc-sig/ftlaunch/internal/runner"
)

func (l *Launcher) runParallel(ctx context.Context, d *Descriptor) *outcome.RunOutcome {
	run := l.newRun(d)
	run.ReportLocation = parallelReportLocation(d)

	if l.opts.Singleton != nil {
		running, err := l.opts.Singleton.Running()
		if err != nil {
			l.logger.Warn("failed to check for a running tool instance", zap.Error(err))
		}
		if running {
			return l.fail(run, "interactive tool instance is already running")
		}
	}

	if err := os.MkdirAll(run.ReportLocation, 0o755); err != nil {
		return l.fail(run, fmt.Sprintf("failed to create report directory %s: %v", run.ReportLocation, err))
	}
	l.note("Using ParallelRunner to execute test: %s", d.TestPath)

	command := d.Command
	if command == "" {
		command = l.opts.ParallelRunner
	}
	cfg := &runner.Config{
		Command: command,
		Args:    append([]string{"-o", "static", "-c", d.ConfigFile}, d.Args...),
		Dir:     d.Dir,
		Env:     d.Env,
	}
	if d.Elevated {
		if l.opts.Broker != nil {
			cfg.Broker = l.opts.Broker
		} else {
			l.logger.Warn("elevated run requested but no elevation launcher is configured", zap.String("test", d.TestPath))
		}
	}

	code, reason := l.parallelExitCode(ctx, run, cfg)
	run.ExitCode = code

	state, desc := runner.MapParallelExit(code, reason)
	if state == outcome.StateError && desc == "" {
		desc = fmt.Sprintf("ParallelRunner exited with code %d", code)
	}
	if state == outcome.StateFailed {
		l.complete(run, state, "", desc)
	} else {
		l.complete(run, state, desc, "")
	}
	return run
}

func (l *Launcher) parallelExitCode(ctx context.Context, run *outcome.RunOutcome, cfg *runner.Config) (int, string) {
	result, err := l.execute(ctx, run, cfg)
	switch {
	case errors.Is(err, runner.ErrUnsupportedProcess):
		return int(runner.ParallelError), "Could not create process adapter instance!"
	case err != nil:
		l.logger.Warn("failed to start parallel runner", zap.Error(err))
		return int(runner.ParallelNotStarted), err.Error()
	case result.Status == runner.StatusCanceled:
		return int(runner.ParallelCanceled), ""
	default:
		return result.ExitCode, ""
	}
}
