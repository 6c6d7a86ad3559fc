package helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/zinc-sig/ftlaunch/internal/launcher"
)

// PrintContextInfo prints context configuration in verbose/dry-run mode
func PrintContextInfo(w io.Writer, context any, dryRun bool) {
	if context == nil {
		return
	}

	header := "Context Configuration"
	if dryRun {
		header = "Context Configuration (DRY RUN)"
	}

	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "========================================")

	jsonBytes, err := json.MarshalIndent(context, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "  %v\n", context)
	} else {
		fmt.Fprintf(w, "%s\n", string(jsonBytes))
	}

	fmt.Fprintln(w, "----------------------------------------")
}

// PrintDryRun lists the tests that would be started, validating each one.
// It returns the number of invalid descriptors.
func PrintDryRun(w io.Writer, descriptors []launcher.Descriptor) int {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Planned Tests (DRY RUN)")
	fmt.Fprintln(w, "========================================")

	invalid := 0
	for i := range descriptors {
		d := &descriptors[i]
		if err := d.Validate(); err != nil {
			invalid++
			fmt.Fprintf(w, "%d. %s: invalid: %v\n", i+1, d.TestPath, err)
			continue
		}
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, d.Type, d.TestPath)
		if d.Command != "" {
			fmt.Fprintf(w, "   Command: %s\n", strings.TrimSpace(d.Command+" "+strings.Join(d.Args, " ")))
		}
		if d.ReportPath != "" {
			fmt.Fprintf(w, "   Report:  %s\n", d.ReportPath)
		} else if d.ReportBaseDirectory != "" {
			fmt.Fprintf(w, "   Report:  under %s\n", d.ReportBaseDirectory)
		}
	}

	fmt.Fprintln(w, "----------------------------------------")
	return invalid
}
