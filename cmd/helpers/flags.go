package helpers

import (
	"github.com/spf13/cobra"

	"github.com/zinc-sig/ftlaunch/cmd/config"
	"github.com/zinc-sig/ftlaunch/internal/junit"
	"github.com/zinc-sig/ftlaunch/internal/reconcile"
	"github.com/zinc-sig/ftlaunch/internal/runner"
)

// SetupContextFlags adds context-related flags to a command
func SetupContextFlags(cmd *cobra.Command, cfg *config.ContextConfig) {
	cmd.Flags().StringVar(&cfg.JSON, "context", "", "Context data as JSON string")
	cmd.Flags().StringArrayVar(&cfg.KV, "context-kv", nil, "Context key=value pairs (can be used multiple times)")
	cmd.Flags().StringVar(&cfg.File, "context-file", "", "Path to JSON or YAML file containing context data")
}

// SetupUploadFlags adds upload-related flags to a command
func SetupUploadFlags(cmd *cobra.Command, cfg *config.UploadConfig) {
	cmd.Flags().StringVar(&cfg.Provider, "upload-provider", "", "Upload provider type (e.g., minio)")
	cmd.Flags().StringVar(&cfg.Config, "upload-config", "", "Upload configuration as JSON string")
	cmd.Flags().StringArrayVar(&cfg.ConfigKV, "upload-config-kv", nil, "Upload config key=value pairs (can be used multiple times)")
	cmd.Flags().StringVar(&cfg.ConfigFile, "upload-config-file", "", "Path to JSON or YAML file containing upload configuration")
	cmd.Flags().StringVar(&cfg.Prefix, "upload-prefix", "", "Object name prefix for uploaded artifacts (default: the run id)")
}

// SetupCommonFlags adds commonly used flags to a command
func SetupCommonFlags(cmd *cobra.Command, flags *config.CommonFlags) {
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Print execution banners on stderr")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Show what would be run without starting any tool")
	cmd.Flags().StringVarP(&flags.TimeoutStr, "timeout", "t", "", "Job timeout after which running tools are killed (e.g., 30s, 2m)")
	cmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")
}

// SetupWebhookFlags adds webhook-related flags to a command
func SetupWebhookFlags(cmd *cobra.Command, cfg *config.WebhookConfig) {
	cmd.Flags().StringVar(&cfg.URL, "webhook-url", "", "Webhook URL to send results to")
	cmd.Flags().StringVar(&cfg.Method, "webhook-method", "POST", "HTTP method to use: GET, POST, PUT, PATCH, DELETE")
	cmd.Flags().StringVar(&cfg.AuthType, "webhook-auth-type", "none", "Authentication type: none, bearer, api-key")
	cmd.Flags().StringVar(&cfg.AuthToken, "webhook-auth-token", "", "Authentication token (use with --webhook-auth-type)")
	cmd.Flags().IntVar(&cfg.Retries, "webhook-retries", 3, "Maximum webhook retry attempts (0 = no retries)")
	cmd.Flags().StringVar(&cfg.RetryDelay, "webhook-retry-delay", "1s", "Initial delay between webhook retries")
	cmd.Flags().StringVar(&cfg.Timeout, "webhook-timeout", "30s", "Total timeout for webhook including retries")

	cmd.Flags().StringVar(&cfg.Config, "webhook-config", "", "Webhook configuration as JSON string")
	cmd.Flags().StringArrayVar(&cfg.ConfigKV, "webhook-config-kv", nil, "Webhook config key=value pairs (can be used multiple times)")
	cmd.Flags().StringVar(&cfg.ConfigFile, "webhook-config-file", "", "Path to JSON or YAML file containing webhook configuration")
}

// SetupLauncherFlags adds tool and report handling flags to a command
func SetupLauncherFlags(cmd *cobra.Command, cfg *config.LauncherFlags) {
	cmd.Flags().DurationVar(&cfg.PollInterval, "poll-interval", runner.DefaultPollInterval, "How often running tools are checked for exit and cancellation")
	cmd.Flags().IntVar(&cfg.ReconcileAttempts, "reconcile-attempts", reconcile.DefaultAttempts, "Attempts to flatten a nested report folder")
	cmd.Flags().DurationVar(&cfg.ReconcileDelay, "reconcile-delay", reconcile.DefaultDelay, "Delay between report folder attempts")
	cmd.Flags().StringVar(&cfg.ElevateWith, "elevate-with", "", `Launcher prefix for elevated tests (e.g., "sudo -n")`)
	cmd.Flags().StringVar(&cfg.ToolLock, "tool-lock", "", "Lock file held by the interactive tool; parallel runs fail while it is held")
	cmd.Flags().StringVar(&cfg.APIRunner, "api-runner", "", "Service test runner executable")
	cmd.Flags().StringVar(&cfg.ParallelRunner, "parallel-runner", "", "Parallel runner executable")
}

// SetupJUnitFlags adds JUnit report flags to a command
func SetupJUnitFlags(cmd *cobra.Command, cfg *config.JUnitFlags) {
	cmd.Flags().StringVar(&cfg.Path, "junit", "", "Write the aggregated JUnit report to this file")
	cmd.Flags().StringVar(&cfg.SuiteName, "suite-name", junit.DefaultSuiteName, "Name of the shared test suite")
	cmd.Flags().BoolVar(&cfg.TestNameOnly, "test-name-only", false, "Name test cases by test name instead of full path")
	cmd.Flags().BoolVar(&cfg.UnifiedClassname, "unified-classname", false, "Use the test's parent folder as classname")
}

// SetupTestFlags adds the single-test descriptor flags to a command
func SetupTestFlags(cmd *cobra.Command, cfg *config.TestFlags) {
	cmd.Flags().StringVar(&cfg.Test, "test", "", "Path of the test to run (required)")
	cmd.Flags().StringVar(&cfg.Name, "name", "", "Test name (default: last segment of --test)")
	cmd.Flags().StringVar(&cfg.Group, "group", "", "Test group used for the JUnit classname")
	cmd.Flags().StringVar(&cfg.Type, "type", "functional", "Test type: api, parallel, functional, performance")
	cmd.Flags().StringVar(&cfg.Report, "report", "", "Explicit report folder")
	cmd.Flags().StringVar(&cfg.ReportBase, "report-base", "", "Folder under which report folders are generated")
	cmd.Flags().StringVar(&cfg.InputParams, "input-params", "", "Input parameter file for service tests")
	cmd.Flags().StringVar(&cfg.ConfigFile, "config", "", "Parallel runner configuration file")
	cmd.Flags().StringVar(&cfg.Dir, "dir", "", "Working directory of the tool")
	cmd.Flags().BoolVar(&cfg.Elevated, "elevated", false, "Start the tool through --elevate-with")
	_ = cmd.MarkFlagRequired("test")
}
