package runner

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/zinc-sig/ftlaunch/internal/outcome"
)

// ExecutionDetails holds the information for execution printing
type ExecutionDetails struct {
	TestPath     string
	TestType     outcome.TestType
	Report       string
	FullCommand  string
	PollInterval string
	Timeout      string
}

// PrintPreExecution prints invocation details before the tool starts
func PrintPreExecution(w io.Writer, d *ExecutionDetails) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "ftlaunch Test Execution Details")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Test:    %s\n", d.TestPath)
	fmt.Fprintf(w, "Type:    %s\n", d.TestType)
	fmt.Fprintf(w, "Command: %s\n", d.FullCommand)
	if d.Report != "" {
		fmt.Fprintf(w, "Report:  %s\n", d.Report)
	}
	if d.Timeout != "" {
		fmt.Fprintf(w, "Timeout: %s\n", d.Timeout)
	}
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, "Tool Output:")
	fmt.Fprintln(w, "----------------------------------------")
}

// PrintPostExecution prints the outcome of one run
func PrintPostExecution(w io.Writer, run *outcome.RunOutcome) {
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, "Execution Results:")
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "State:          %s\n", run.TestState)
	fmt.Fprintf(w, "Exit Code:      %d\n", run.ExitCode)
	fmt.Fprintf(w, "Execution Time: %d ms\n", run.Duration.Milliseconds())
	if run.ErrorDesc != "" {
		fmt.Fprintf(w, "Error:          %s\n", run.ErrorDesc)
	}
	if run.FailureDesc != "" {
		fmt.Fprintf(w, "Failure:        %s\n", run.FailureDesc)
	}
	fmt.Fprintln(w, "========================================")
}

// PrintSummaryTable renders one row per run plus totals.
func PrintSummaryTable(w io.Writer, runs []*outcome.RunOutcome) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	t.SetTitle("Test Summary")
	t.AppendHeader(table.Row{"Test", "Type", "State", "Duration", "Report"})

	counts := make(map[outcome.TestState]int)
	for _, run := range runs {
		counts[run.TestState]++
		t.AppendRow(table.Row{
			run.TestName,
			run.TestType,
			run.TestState,
			run.Duration.Round(time.Millisecond).String(),
			run.ReportLocation,
		})
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("Total: %d", len(runs)),
		"",
		fmt.Sprintf("Passed: %d  Warning: %d  Failed: %d  Error: %d",
			counts[outcome.StatePassed], counts[outcome.StateWarning],
			counts[outcome.StateFailed], counts[outcome.StateError]+counts[outcome.StateUnknown]),
		"",
		"",
	})
	t.Render()
}

// PrintErrorSummary lists job-level failures collected during the run.
func PrintErrorSummary(w io.Writer, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w, "Errors:")
	for _, l := range lines {
		fmt.Fprintf(w, "  - %s\n", l)
	}
}
