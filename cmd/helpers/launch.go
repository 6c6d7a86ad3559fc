package helpers

import (
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/zinc-sig/ftlaunch/cmd/config"
	"github.com/zinc-sig/ftlaunch/internal/console"
	"github.com/zinc-sig/ftlaunch/internal/launcher"
	"github.com/zinc-sig/ftlaunch/internal/metrics"
	"github.com/zinc-sig/ftlaunch/internal/outcome"
	"github.com/zinc-sig/ftlaunch/internal/process"
	"github.com/zinc-sig/ftlaunch/internal/reconcile"
	"github.com/zinc-sig/ftlaunch/internal/retry"
	"github.com/zinc-sig/ftlaunch/internal/singleton"
)

// BuildLauncher wires a launcher from the command's flags. trace may be nil.
func BuildLauncher(flags *config.LauncherFlags, out *console.Writer, trace io.Writer, recorder *metrics.Recorder, logger *zap.Logger) *launcher.Launcher {
	reconciler := reconcile.New(logger)
	if flags.ReconcileAttempts > 0 {
		reconciler.Policy = retry.Fixed(flags.ReconcileAttempts, flags.ReconcileDelay)
	}

	opts := launcher.Options{
		Console:        out,
		Logger:         logger,
		PollInterval:   flags.PollInterval,
		Reconciler:     reconciler,
		APIRunner:      flags.APIRunner,
		ParallelRunner: flags.ParallelRunner,
		Trace:          trace,
	}
	if prefix := strings.Fields(flags.ElevateWith); len(prefix) > 0 {
		opts.Broker = process.NewExecBroker(prefix, out.ForRun(nil))
	}
	if flags.ToolLock != "" {
		opts.Singleton = singleton.NewProbe(flags.ToolLock)
	}
	if recorder != nil {
		opts.OnReconcileFailure = func(error) { recorder.ReconcileFailed() }
	}
	return launcher.New(opts)
}

// BuildDescriptor turns the run command's flags and trailing command into a
// descriptor. For api and parallel tests the command overrides the runner.
func BuildDescriptor(flags *config.TestFlags, args []string) *launcher.Descriptor {
	d := &launcher.Descriptor{
		TestPath:            flags.Test,
		TestName:            flags.Name,
		TestGroup:           flags.Group,
		Type:                outcome.TestType(flags.Type),
		ReportPath:          flags.Report,
		ReportBaseDirectory: flags.ReportBase,
		InputParamsFile:     flags.InputParams,
		ConfigFile:          flags.ConfigFile,
		Dir:                 flags.Dir,
		Elevated:            flags.Elevated,
	}
	if len(args) > 0 {
		d.Command = args[0]
		d.Args = args[1:]
	}
	return d
}
