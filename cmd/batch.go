package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zinc-sig/ftlaunch/cmd/config"
	"github.com/zinc-sig/ftlaunch/cmd/helpers"
	"github.com/zinc-sig/ftlaunch/internal/console"
	contextparser "github.com/zinc-sig/ftlaunch/internal/context"
	"github.com/zinc-sig/ftlaunch/internal/junit"
	"github.com/zinc-sig/ftlaunch/internal/metrics"
	"github.com/zinc-sig/ftlaunch/internal/outcome"
	"github.com/zinc-sig/ftlaunch/internal/output"
	"github.com/zinc-sig/ftlaunch/internal/runner"
)

type batchOptions struct {
	root *rootOptions

	jobFile  string
	parallel int

	common   config.CommonFlags
	launcher config.LauncherFlags
	junit    config.JUnitFlags
	context  config.ContextConfig
	webhook  config.WebhookConfig
	upload   config.UploadConfig
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	o := &batchOptions{root: root}

	cmd := &cobra.Command{
		Use:   "batch --job <file>",
		Short: "Run every test of a job file",
		Long: `Run the tests listed in a JSON or YAML job file. The JUnit report is
rewritten after every finished test so a partial report survives an aborted job.

A summary table and the collected errors are printed on stderr, the job summary
as JSON on stdout. The command fails when any test did not pass.`,
		Example: `  ftlaunch batch --job nightly.yaml --junit out/junit.xml --timeout 2h
  ftlaunch batch --job smoke.json --parallel 4 --metrics-file out/ftlaunch.prom`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			timeout, err := helpers.ParseTimeout(o.common.TimeoutStr)
			if err != nil {
				return err
			}
			o.common.Timeout = timeout
			return nil
		},
		RunE: o.run,
	}

	cmd.Flags().StringVar(&o.jobFile, "job", "", "Job file listing the tests to run (required)")
	cmd.Flags().IntVarP(&o.parallel, "parallel", "p", 1, "Number of tests run at the same time (overrides the job file)")
	_ = cmd.MarkFlagRequired("job")

	helpers.SetupCommonFlags(cmd, &o.common)
	helpers.SetupLauncherFlags(cmd, &o.launcher)
	helpers.SetupJUnitFlags(cmd, &o.junit)
	helpers.SetupContextFlags(cmd, &o.context)
	helpers.SetupWebhookFlags(cmd, &o.webhook)
	helpers.SetupUploadFlags(cmd, &o.upload)
	return cmd
}

// loadJob reads a job file.
func loadJob(path string) (*config.Job, error) {
	doc, err := contextparser.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	var job config.Job
	if err := contextparser.Decode(doc, &job); err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", path, err)
	}
	if len(job.Tests) == 0 {
		return nil, fmt.Errorf("job %s has no tests", path)
	}
	if job.Name == "" {
		job.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &job, nil
}

func (o *batchOptions) run(cmd *cobra.Command, args []string) error {
	logger := o.root.logger
	stderr := cmd.ErrOrStderr()

	job, err := loadJob(o.jobFile)
	if err != nil {
		return err
	}
	parallel := o.parallel
	if !cmd.Flags().Changed("parallel") && job.Parallel > 0 {
		parallel = job.Parallel
	}
	if parallel < 1 {
		return fmt.Errorf("parallel must be at least 1")
	}

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

	if o.common.DryRun {
		helpers.PrintContextInfo(stderr, ctxData, true)
		if invalid := helpers.PrintDryRun(stderr, job.Tests); invalid > 0 {
			return fmt.Errorf("%d of %d tests in %s are invalid", invalid, len(job.Tests), o.jobFile)
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

	jopts := junitOptions(o.junit, logger)
	if jopts.Path == "" {
		jopts.Path = junit.DefaultFileName
	}
	builder := junit.NewBuilder(jopts)

	logger.Info("job started",
		zap.String("job", job.Name),
		zap.String("run_id", runID),
		zap.Int("tests", len(job.Tests)),
		zap.Int("parallel", parallel),
	)

	runs := make([]*outcome.RunOutcome, len(job.Tests))
	var (
		emitMu sync.Mutex
		// written reports whether the file on disk holds the whole aggregate
		written bool
	)
	var g errgroup.Group
	g.SetLimit(parallel)
	for i := range job.Tests {
		d := job.Tests[i]
		g.Go(func() error {
			run := l.Launch(ctx, &d)
			runs[i] = run
			recorder.ObserveRun(run)

			// Add and Emit under one lock so an older document never replaces a newer one
			emitMu.Lock()
			defer emitMu.Unlock()
			if err := builder.Add(run); err != nil {
				logger.Warn("run left out of junit report", zap.String("test", run.TestPath), zap.Error(err))
				return nil
			}
			written = false
			if err := builder.Emit(); err != nil {
				recorder.EmissionFailed()
				logger.Warn("junit report not written", zap.String("path", builder.Path()), zap.Error(err))
				return nil
			}
			written = true
			return nil
		})
	}
	_ = g.Wait()

	// the final document is written again unless the last attempt already wrote it
	var emitErr error
	if !written {
		if emitErr = builder.Emit(); emitErr != nil {
			recorder.EmissionFailed()
			out.AddErrorSummary(fmt.Sprintf("failed to write junit report %s: %v", builder.Path(), emitErr))
		}
	}

	runner.PrintSummaryTable(stderr, runs)
	errorLines := out.ErrorSummary()
	runner.PrintErrorSummary(stderr, errorLines)

	results := make([]*output.Result, len(runs))
	for i, run := range runs {
		results[i] = output.FromRun(run)
		results[i].RunID = runID
	}
	summary := output.NewBatchSummary(runID, job.Name, results)
	summary.Errors = errorLines
	summary.Context = ctxData
	if emitErr != nil {
		summary.JUnitError = emitErr.Error()
	} else {
		summary.JUnitPath = builder.Path()
	}

	uploaded, err := helpers.PublishArtifacts(cmd.Context(), provider, prefix, summary.JUnitPath, runs, logger)
	summary.Uploaded = uploaded
	if err != nil {
		logger.Warn("artifact upload failed", zap.Error(err))
		summary.UploadError = err.Error()
	}

	payload := *summary
	sent, err := helpers.SendWebhook(cmd.Context(), webhookCfg, policy, &payload, logger)
	summary.WebhookSent = sent
	if err != nil {
		summary.WebhookError = err.Error()
	}

	writeMetrics(o.common.MetricsFile, recorder, logger)

	if err := helpers.OutputJSON(cmd.OutOrStdout(), summary); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d tests did not pass", summary.Failed, summary.Total)
	}
	return nil
}
