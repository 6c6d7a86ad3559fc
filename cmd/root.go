package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zinc-sig/ftlaunch/internal/logging"
)

// rootOptions carries state shared by every subcommand.
type rootOptions struct {
	logLevel  string
	logFormat string
	logger    *zap.Logger
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	root := &rootOptions{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "ftlaunch",
		Short: "Launch functional test tools and collect their reports",
		Long: `ftlaunch starts functional, API, performance and parallel test tools,
waits for them under a job timeout, tidies the report folders they write and
classifies each run from its report.

Results are printed as JSON and aggregated into a JUnit report.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.NewLoggerTo(cmd.ErrOrStderr(), logging.Level(root.logLevel), logging.Format(root.logFormat))
			if err != nil {
				return err
			}
			root.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = root.logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&root.logLevel, "log-level", string(logging.LevelWarn), "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&root.logFormat, "log-format", string(logging.FormatConsole), "Log format: console, structured")

	cmd.AddCommand(newRunCmd(root))
	cmd.AddCommand(newBatchCmd(root))
	cmd.AddCommand(newResolveCmd(root))
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
