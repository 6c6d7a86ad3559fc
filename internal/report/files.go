// Package report classifies a tool's result directory into a canonical test state.
package report

import (
	"os"
	"path/filepath"
	"strings"
)

// Well-known report file names.
const (
	ResultsXML          = "Results.xml"
	RunResultsXML       = "run_results.xml"
	RunResultsHTML      = "run_results.html"
	SLAXML              = "SLA.xml"
	RunReportXML        = "RunReport.xml"
	ParallelResultsHTML = "parallelrun_results.html"
)

const (
	runResultsDataXPath = "/Results/ReportNode/Data"
	runResultsResultTag = "Result"
	resultsNodeArgsPath = "//Report/Doc/NodeArgs"
	statusAttr          = "status"
)

// findTopLevel returns the path of the first entry in dir whose name matches
// name case-insensitively, or "" when there is none.
func findTopLevel(dir, name string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), name) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", nil
}

// findRecursive returns every file under dir whose name matches name case-insensitively.
func findRecursive(dir, name string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(d.Name(), name) {
			found = append(found, path)
		}
		return nil
	})
	return found, err
}

// HasFile reports whether dir directly contains a file called name.
func HasFile(dir, name string) bool {
	path, err := findTopLevel(dir, name)
	return err == nil && path != ""
}
