package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/zinc-sig/ftlaunch/internal/console"
	"github.com/zinc-sig/ftlaunch/internal/logging"
	"github.com/zinc-sig/ftlaunch/internal/outcome"
	"github.com/zinc-sig/ftlaunch/internal/process"
	"github.com/zinc-sig/ftlaunch/internal/reconcile"
	"github.com/zinc-sig/ftlaunch/internal/report"
	"github.com/zinc-sig/ftlaunch/internal/runner"
)

const (
	DefaultAPIRunner      = "ServiceTestExecuter"
	DefaultParallelRunner = "ParallelRunner"

	timestampLayout = "2006-01-02 15:04:05"
)

// SingletonCheck reports whether the interactive tool is already running.
type SingletonCheck interface {
	Running() (bool, error)
}

type Options struct {
	Console      *console.Writer
	Logger       *zap.Logger
	PollInterval time.Duration
	Reconciler   *reconcile.Reconciler

	// Broker starts processes for descriptors that ask to run elevated.
	Broker    process.Broker
	Singleton SingletonCheck

	APIRunner      string
	ParallelRunner string

	// Trace receives the execution banners when set.
	Trace io.Writer
	// OnReconcileFailure is called when a report folder could not be flattened.
	OnReconcileFailure func(error)
}

// Launcher runs descriptors one at a time per call; a single Launcher may be
// used from several goroutines.
type Launcher struct {
	opts    Options
	logger  *zap.Logger
	console *console.Writer
}

func New(opts Options) *Launcher {
	logger := logging.OrNop(opts.Logger)
	if opts.Console == nil {
		opts.Console = console.NewWriter(nil, nil, logger)
	}
	if opts.Reconciler == nil {
		opts.Reconciler = reconcile.New(logger)
	}
	if opts.APIRunner == "" {
		opts.APIRunner = DefaultAPIRunner
	}
	if opts.ParallelRunner == "" {
		opts.ParallelRunner = DefaultParallelRunner
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = runner.DefaultPollInterval
	}
	return &Launcher{opts: opts, logger: logger, console: opts.Console}
}

// Launch runs d and returns its terminal outcome. The tool is killed once ctx
// is done. Invalid descriptors produce an Error outcome.
func (l *Launcher) Launch(ctx context.Context, d *Descriptor) *outcome.RunOutcome {
	if err := d.Validate(); err != nil {
		run := l.newRun(d)
		return l.fail(run, err.Error())
	}

	var run *outcome.RunOutcome
	switch d.Type {
	case outcome.TypeAPI:
		run = l.runAPI(ctx, d)
	case outcome.TypeParallel:
		run = l.runParallel(ctx, d)
	default:
		run = l.runGeneric(ctx, d)
	}

	if l.opts.Trace != nil {
		runner.PrintPostExecution(l.opts.Trace, run)
	}
	l.logger.Info("test finished",
		zap.String("test", run.TestPath),
		zap.String("type", string(run.TestType)),
		zap.Stringer("state", run.TestState),
		zap.Duration("duration", run.Duration),
	)
	return run
}

func (l *Launcher) newRun(d *Descriptor) *outcome.RunOutcome {
	run := outcome.NewRunOutcome(d.TestPath, d.Type)
	if d.TestName != "" {
		run.TestName = d.TestName
	}
	run.SetGroup(d.TestGroup)
	return run
}

func (l *Launcher) fail(run *outcome.RunOutcome, desc string) *outcome.RunOutcome {
	l.complete(run, outcome.StateError, desc, "")
	return run
}

func (l *Launcher) complete(run *outcome.RunOutcome, state outcome.TestState, errorDesc, failureDesc string) {
	if err := run.Complete(state, errorDesc, failureDesc); err != nil {
		l.logger.Warn("run already completed", zap.String("test", run.TestPath), zap.Error(err))
		return
	}
	if errorDesc != "" {
		l.console.WriteErrLine(errorDesc)
	}
}

func (l *Launcher) note(format string, args ...any) {
	l.console.WriteLine(time.Now().Format(timestampLayout) + " " + fmt.Sprintf(format, args...))
}

func (l *Launcher) execute(ctx context.Context, run *outcome.RunOutcome, cfg *runner.Config) (*runner.Result, error) {
	cfg.Sink = l.console.ForRun(run)
	cfg.PollInterval = l.opts.PollInterval
	cfg.Canceled = runner.CanceledBy(ctx)
	cfg.Logger = l.logger

	if l.opts.Trace != nil {
		runner.PrintPreExecution(l.opts.Trace, &runner.ExecutionDetails{
			TestPath:    run.TestPath,
			TestType:    run.TestType,
			Report:      run.ReportLocation,
			FullCommand: cfg.FullCommand(),
		})
	}

	result, err := runner.Execute(cfg)
	if result != nil {
		run.ExitCode = result.ExitCode
	}
	return result, err
}

// reconcile flattens the report folder. Failures never change the run's state.
func (l *Launcher) reconcile(ctx context.Context, run *outcome.RunOutcome) {
	err := l.opts.Reconciler.Reconcile(ctx, run.ReportLocation)
	if err == nil || errors.Is(err, reconcile.ErrNothingToReconcile) {
		return
	}
	l.logger.Warn("report folder left unreconciled", zap.String("report", run.ReportLocation), zap.Error(err))
	l.console.AddErrorSummary(fmt.Sprintf("failed to reconcile report folder %s: %v", run.ReportLocation, err))
	if l.opts.OnReconcileFailure != nil {
		l.opts.OnReconcileFailure(err)
	}
}

// resolve classifies the report folder. A parallel summary found after a
// clean exit counts as passed.
func (l *Launcher) resolve(run *outcome.RunOutcome) {
	res, err := report.ResolveRun(run)
	if err != nil {
		l.logger.Warn("failed to record resolution", zap.String("test", run.TestPath), zap.Error(err))
		return
	}
	if res.Passthrough {
		l.complete(run, outcome.StatePassed, "", "")
		return
	}
	if run.ErrorDesc != "" {
		l.console.WriteErrLine(run.ErrorDesc)
	}
	l.logger.Debug("report resolved",
		zap.String("report", run.ReportLocation),
		zap.String("format", res.Format),
		zap.Stringer("state", res.State),
	)
}
