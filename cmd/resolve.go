package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zinc-sig/ftlaunch/cmd/helpers"
	"github.com/zinc-sig/ftlaunch/internal/output"
	"github.com/zinc-sig/ftlaunch/internal/report"
)

func newResolveCmd(root *rootOptions) *cobra.Command {
	var dir, name string

	cmd := &cobra.Command{
		Use:   "resolve --report <dir>",
		Short: "Classify an existing report folder",
		Long: `Inspect a report folder written by a test tool and print the state it
describes as JSON. Nothing is started and the folder is not modified.`,
		Example: `  ftlaunch resolve --report /reports/Login_1
  ftlaunch resolve --report /tests/Checkout/ParallelReport/Res2 --name Checkout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				name = filepath.Base(filepath.Clean(dir))
			}
			res := report.Resolve(dir, name)
			root.logger.Debug("report resolved",
				zap.String("report", dir),
				zap.String("format", res.Format),
				zap.Stringer("state", res.State),
			)
			return helpers.OutputJSON(cmd.OutOrStdout(), output.FromResolution(dir, res))
		},
	}

	cmd.Flags().StringVar(&dir, "report", "", "Report folder to classify (required)")
	cmd.Flags().StringVar(&name, "name", "", "Test name used in diagnostics (default: folder name)")
	_ = cmd.MarkFlagRequired("report")
	return cmd
}
