package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zinc-sig/ftlaunch/cmd/config"
	"github.com/zinc-sig/ftlaunch/cmd/helpers"
	"github.com/zinc-sig/ftlaunch/internal/console"
	contextparser "github.com/zinc-sig/ftlaunch/internal/context"
	"github.com/zinc-sig/ftlaunch/internal/junit"
	"github.com/zinc-sig/ftlaunch/internal/launcher"
	"github.com/zinc-sig/ftlaunch/internal/metrics"
	"github.com/zinc-sig/ftlaunch/internal/outcome"
	"github.com/zinc-sig/ftlaunch/internal/output"
)

type runOptions struct {
	root *rootOptions

	common   config.CommonFlags
	test     config.TestFlags
	launcher config.LauncherFlags
	junit    config.JUnitFlags
	context  config.ContextConfig
	webhook  config.WebhookConfig
	upload   config.UploadConfig
}

func newRunCmd(root *rootOptions) *cobra.Command {
	o := &runOptions{root: root}

	cmd := &cobra.Command{
		Use:   "run [flags] [-- <command> [args...]]",
		Short: "Run one test and print its outcome as JSON",
		Long: `Run one test through its tool, wait for it to exit, tidy its report folder
and classify the outcome from the report. The result is printed as JSON.

Functional and performance tests need a command after '--'; '{test}' and
'{report}' in its arguments are replaced with the test path and report folder.
For api and parallel tests a command overrides the default runner executable.

The command fails when the test did not pass.`,
		Example: `  ftlaunch run --type api --test /tests/Orders --report-base /reports
  ftlaunch run --type parallel --test /tests/Checkout --config parallel.json
  ftlaunch run --test /tests/Login --junit out/junit.xml -- ./uft-runner -t {test} -r {report}`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateCommandSeparator(cmd, args); err != nil {
				return err
			}
			timeout, err := helpers.ParseTimeout(o.common.TimeoutStr)
			if err != nil {
				return err
			}
			o.common.Timeout = timeout
			return nil
		},
		RunE: o.run,
	}

	helpers.SetupTestFlags(cmd, &o.test)
	helpers.SetupCommonFlags(cmd, &o.common)
	helpers.SetupLauncherFlags(cmd, &o.launcher)
	helpers.SetupJUnitFlags(cmd, &o.junit)
	helpers.SetupContextFlags(cmd, &o.context)
	helpers.SetupWebhookFlags(cmd, &o.webhook)
	helpers.SetupUploadFlags(cmd, &o.upload)
	return cmd
}

func (o *runOptions) run(cmd *cobra.Command, args []string) error {
	logger := o.root.logger
	stderr := cmd.ErrOrStderr()

	ctxData, err := contextparser.BuildContext(o.context.JSON, o.context.KV, o.context.File)
	if err != nil {
		return fmt.Errorf("failed to build context: %w", err)
	}
	webhookCfg, policy, err := helpers.ParseWebhookConfigToInternal(&o.webhook)
	if err != nil {
		return err
	}
	provider, uploadConf, err := helpers.SetupUploadProvider(&o.upload)
	if err != nil {
		return err
	}

	d := helpers.BuildDescriptor(&o.test, args)
	if o.common.DryRun {
		helpers.PrintContextInfo(stderr, ctxData, true)
		if helpers.PrintDryRun(stderr, []launcher.Descriptor{*d}) > 0 {
			return fmt.Errorf("invalid test %s", d.TestPath)
		}
		return nil
	}

	runID := uuid.NewString()
	prefix := o.upload.Prefix
	if prefix == "" {
		prefix = runID
	}

	var trace io.Writer
	if o.common.Verbose {
		trace = stderr
		helpers.PrintContextInfo(stderr, ctxData, false)
		if provider != nil {
			helpers.PrintUploadInfo(stderr, provider, uploadConf, prefix)
		}
	}

	ctx, cancel := helpers.JobContext(cmd.Context(), o.common.Timeout)
	defer cancel()

	recorder := metrics.NewRecorder()
	out := console.NewWriter(stderr, stderr, logger)
	l := helpers.BuildLauncher(&o.launcher, out, trace, recorder, logger)

	run := l.Launch(ctx, d)
	recorder.ObserveRun(run)

	result := output.FromRun(run)
	result.RunID = runID
	result.Context = ctxData
	if len(args) > 0 {
		result.Command = strings.Join(args, " ")
	}
	if o.common.Timeout > 0 {
		ms := o.common.Timeout.Milliseconds()
		result.Timeout = &ms
	}

	if o.junit.Path != "" {
		if err := emitJUnit(o.junit, run, logger); err != nil {
			recorder.EmissionFailed()
			logger.Warn("junit report not written", zap.Error(err))
			result.JUnitError = err.Error()
		} else {
			result.JUnitPath = o.junit.Path
		}
	}

	uploaded, err := helpers.PublishArtifacts(cmd.Context(), provider, prefix, result.JUnitPath, []*outcome.RunOutcome{run}, logger)
	result.Uploaded = uploaded
	if err != nil {
		logger.Warn("artifact upload failed", zap.Error(err))
		result.UploadError = err.Error()
	}

	payload := *result
	sent, err := helpers.SendWebhook(cmd.Context(), webhookCfg, policy, &payload, logger)
	result.WebhookSent = sent
	if err != nil {
		result.WebhookError = err.Error()
	}

	writeMetrics(o.common.MetricsFile, recorder, logger)

	if err := helpers.OutputJSON(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if !result.Passed() {
		return fmt.Errorf("test %s finished %s", run.TestPath, run.TestState)
	}
	return nil
}

func emitJUnit(flags config.JUnitFlags, run *outcome.RunOutcome, logger *zap.Logger) error {
	builder := junit.NewBuilder(junitOptions(flags, logger))
	if err := builder.Add(run); err != nil {
		return err
	}
	return builder.Emit()
}

func junitOptions(flags config.JUnitFlags, logger *zap.Logger) junit.Options {
	return junit.Options{
		Path:             flags.Path,
		SuiteName:        flags.SuiteName,
		TestNameOnly:     flags.TestNameOnly,
		UnifiedClassname: flags.UnifiedClassname,
		Logger:           logger,
	}
}

func writeMetrics(path string, recorder *metrics.Recorder, logger *zap.Logger) {
	if path == "" {
		return
	}
	if err := recorder.WriteFile(path); err != nil {
		logger.Warn("metrics not written", zap.String("path", path), zap.Error(err))
	}
}
