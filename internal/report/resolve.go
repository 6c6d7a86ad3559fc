package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/zinc-sig/ftlaunch/internal/outcome"
)

// Resolution is the classification of one report directory.
type Resolution struct {
	State       outcome.TestState
	ErrorDesc   string
	FailureDesc string
	// Passthrough is set when the directory holds a parallel run summary;
	// the state decided from the runner's exit code stands.
	Passthrough bool
	// Format names the file that decided the state.
	Format string
}

// Resolve inspects dir and classifies it. Detection order: functional result
// files (Results.xml, then run_results.xml), SLA.xml anywhere below dir, then a
// parallel run summary. testName is used in diagnostics.
func Resolve(dir, testName string) Resolution {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return Resolution{
			State:     outcome.StateError,
			ErrorDesc: fmt.Sprintf("directory %s does not exist", dir),
		}
	}

	for _, name := range []string{ResultsXML, RunResultsXML} {
		path, err := findTopLevel(dir, name)
		if err != nil {
			return unknown(err)
		}
		if path != "" {
			res := resolveFunctional(path)
			res.Format = name
			return res
		}
	}

	slaFiles, err := findRecursive(dir, SLAXML)
	if err != nil {
		return unknown(err)
	}
	if len(slaFiles) > 0 {
		res := resolvePerformance(slaFiles)
		res.Format = SLAXML
		return res
	}

	path, err := findTopLevel(dir, ParallelResultsHTML)
	if err != nil {
		return unknown(err)
	}
	if path != "" {
		return Resolution{Passthrough: true, Format: ParallelResultsHTML}
	}

	return Resolution{
		State:     outcome.StateError,
		ErrorDesc: fmt.Sprintf("no results file found for %s", testName),
	}
}

// ResolveRun classifies run.ReportLocation and completes run with the result.
// A parallel run summary leaves the run's state as it is. It returns
// outcome.ErrAlreadyTerminal if run was completed before.
func ResolveRun(run *outcome.RunOutcome) (Resolution, error) {
	res := Resolve(run.ReportLocation, run.TestName)
	if res.Passthrough {
		return res, nil
	}
	return res, run.Complete(res.State, res.ErrorDesc, res.FailureDesc)
}

func unknown(err error) Resolution {
	return Resolution{State: outcome.StateUnknown, ErrorDesc: err.Error()}
}

// resolveFunctional reads a functional tool result file. Parse failures give
// Unknown; a missing or unrecognised status gives Failed.
func resolveFunctional(path string) Resolution {
	doc, err := loadXML(path)
	if err != nil {
		return unknown(err)
	}

	status, desc := functionalStatus(doc, filepath.Base(path))
	state := stateFromStatus(status)

	res := Resolution{State: state}
	if state == outcome.StateFailed {
		res.FailureDesc = desc
	}
	return res
}

func functionalStatus(doc *xmlquery.Node, fileName string) (status, desc string) {
	if strings.EqualFold(fileName, RunResultsXML) {
		data := xmlquery.FindOne(doc, runResultsDataXPath)
		if data == nil {
			return "", fmt.Sprintf("XML node %s does not exist", runResultsDataXPath)
		}
		result := xmlquery.FindOne(data, ".//"+runResultsResultTag)
		if result == nil {
			return "", fmt.Sprintf("XML node %s/%s does not exist", runResultsDataXPath, runResultsResultTag)
		}
		return result.InnerText(), ""
	}

	args := xmlquery.FindOne(doc, resultsNodeArgsPath)
	if args == nil {
		return "", fmt.Sprintf("XML node %s does not exist", resultsNodeArgsPath)
	}
	if !hasAttr(args, statusAttr) {
		return "", fmt.Sprintf("XML node %s has no %s attribute", resultsNodeArgsPath, statusAttr)
	}
	return args.SelectAttr(statusAttr), ""
}

func stateFromStatus(status string) outcome.TestState {
	switch strings.TrimSpace(status) {
	case "Passed", "Done":
		return outcome.StatePassed
	case "Warning":
		return outcome.StateWarning
	default:
		return outcome.StateFailed
	}
}

// resolvePerformance evaluates SLA files in order and stops at the first failure.
func resolvePerformance(files []string) Resolution {
	res := Resolution{State: outcome.StatePassed}
	for _, f := range files {
		state, desc, err := evaluateSLAFile(f)
		if err != nil {
			return unknown(err)
		}
		res.State = state
		if state == outcome.StateFailed {
			res.FailureDesc = desc
			break
		}
	}
	return res
}
