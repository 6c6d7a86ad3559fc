// Package junit aggregates run outcomes and writes them as a JUnit document.
package junit

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/zinc-sig/ftlaunch/internal/logging"
	"github.com/zinc-sig/ftlaunch/internal/outcome"
	"github.com/zinc-sig/ftlaunch/internal/report"
)

const (
	// PackageName is the package attribute of the shared suite.
	PackageName = "FTToolsLauncher"
	// RootName is the name of the testsuites element.
	RootName = "uftRunnerRoot"

	DefaultSuiteName = "ftlaunch"
	DefaultFileName  = "Results.junit.xml"

	startTimeLayout = "2006-01-02 15:04:05"
)

const (
	statusPass    = "pass"
	statusFail    = "fail"
	statusError   = "error"
	statusWarning = "warning"
	statusSkipped = "skipped"
)

var drivePath = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

// Options configures a Builder.
type Options struct {
	Path string
	// SuiteName names the shared suite.
	SuiteName string
	// TestNameOnly names shared test cases by test name instead of full path.
	TestNameOnly bool
	// UnifiedClassname uses the parent directory URI as classname instead of the group.
	UnifiedClassname bool
	Logger           *zap.Logger
}

// Builder folds run outcomes into one shared suite plus one suite per
// performance run. It is safe for concurrent use.
type Builder struct {
	opts   Options
	logger *zap.Logger

	mu     sync.Mutex
	shared *outcome.SuiteOutcome
	perf   []perfSuite
	seen   map[*outcome.RunOutcome]struct{}
}

type perfSuite struct {
	suite   TestSuite
	runtime time.Duration
}

// NewBuilder creates an empty Builder.
func NewBuilder(opts Options) *Builder {
	if opts.SuiteName == "" {
		opts.SuiteName = DefaultSuiteName
	}
	if opts.Path == "" {
		opts.Path = DefaultFileName
	}
	return &Builder{
		opts:   opts,
		logger: logging.OrNop(opts.Logger),
		shared: outcome.NewSuiteOutcome(opts.SuiteName),
		seen:   make(map[*outcome.RunOutcome]struct{}),
	}
}

// Path returns the destination file.
func (b *Builder) Path() string {
	return b.opts.Path
}

// Add folds a terminal run. Performance runs are expanded from their SLA goals;
// a performance run without goals becomes a single test case of its own.
func (b *Builder) Add(run *outcome.RunOutcome) error {
	if run.TestType != outcome.TypePerformance {
		return b.shared.Add(run)
	}
	if !run.TestState.IsTerminal() {
		return outcome.ErrNotTerminal
	}

	b.mu.Lock()
	if _, ok := b.seen[run]; ok {
		b.mu.Unlock()
		return outcome.ErrAlreadyFolded
	}
	b.seen[run] = struct{}{}
	b.mu.Unlock()

	info, goals, err := report.LoadSLAGoals(run.ReportLocation)
	if err != nil {
		b.logger.Warn("failed to read SLA goals", zap.String("report", run.ReportLocation), zap.Error(err))
	}
	suite := performanceSuite(run, info, goals)
	if len(goals) == 0 {
		appendCase(&suite, b.testCase(run))
	}

	b.mu.Lock()
	b.perf = append(b.perf, perfSuite{suite: suite, runtime: run.Duration})
	b.mu.Unlock()
	return nil
}

// Document renders the current aggregate. The shared suite is omitted while empty.
func (b *Builder) Document() *TestSuites {
	var total time.Duration

	b.mu.Lock()
	suites := make([]TestSuite, 0, len(b.perf)+1)
	for _, p := range b.perf {
		suites = append(suites, p.suite)
		total += p.runtime
	}
	b.mu.Unlock()

	if b.shared.Len() > 0 {
		suites = append(suites, b.sharedSuite())
		total += b.shared.Counters().TotalRuntime
	}

	doc := &TestSuites{Name: RootName, Time: seconds(total), Suites: suites}
	for _, s := range suites {
		doc.Tests += s.Tests
		doc.Failures += s.Failures
		doc.Errors += s.Errors
		doc.Skipped += s.Skipped
	}
	return doc
}

// Emit writes the whole document to the destination, replacing any previous
// file. On failure the aggregate is untouched and Emit may be called again.
func (b *Builder) Emit() error {
	data, err := xml.MarshalIndent(b.Document(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal junit report: %w", err)
	}
	data = append([]byte(xml.Header), data...)

	dir := filepath.Dir(b.opts.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".junit-*.xml")
	if err != nil {
		return fmt.Errorf("failed to create temporary report file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write junit report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write junit report: %w", err)
	}
	if err := os.Rename(tmpName, b.opts.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", b.opts.Path, err)
	}

	b.logger.Debug("junit report written", zap.String("path", b.opts.Path))
	return nil
}

func (b *Builder) sharedSuite() TestSuite {
	runs := b.shared.Runs()
	c := b.shared.Counters()

	suite := TestSuite{
		Name:      b.shared.Name,
		Package:   PackageName,
		Tests:     c.Total,
		Failures:  c.Failures,
		Errors:    c.Errors,
		Skipped:   c.Skipped,
		Time:      seconds(c.TotalRuntime),
		TestCases: make([]TestCase, 0, len(runs)),
	}
	for _, run := range runs {
		suite.TestCases = append(suite.TestCases, b.testCase(run))
	}
	return suite
}

func (b *Builder) testCase(run *outcome.RunOutcome) TestCase {
	tc := TestCase{
		Name:      b.testCaseName(run),
		Classname: b.classname(run),
		Status:    runStatus(run.TestState),
		Time:      seconds(run.Duration),
		Report:    run.ReportLocation,
		Type:      string(run.TestType),
		SystemOut: run.ConsoleOut(),
		SystemErr: run.ConsoleErr(),
	}
	if !run.StartTime.IsZero() {
		tc.StartExecDateTime = run.StartTime.Format(startTimeLayout)
	}

	if strings.TrimSpace(run.FailureDesc) != "" {
		tc.Failures = append(tc.Failures, Failure{Message: run.FailureDesc})
	}
	switch {
	case strings.TrimSpace(run.ErrorDesc) != "":
		tc.Errors = append(tc.Errors, Error{Message: run.ErrorDesc})
	case run.TestState == outcome.StateUnknown:
		tc.Errors = append(tc.Errors, Error{Message: "test state could not be determined"})
	}
	if run.TestState == outcome.StateNoRun {
		tc.Skipped = &Skipped{}
	}
	return tc
}

func (b *Builder) testCaseName(run *outcome.RunOutcome) string {
	if !b.opts.TestNameOnly {
		return run.TestPath
	}
	if run.TestName != "" {
		return run.TestName
	}
	return lastSegment(run.TestPath)
}

func (b *Builder) classname(run *outcome.RunOutcome) string {
	if !b.opts.UnifiedClassname {
		return "All-Tests." + strings.ReplaceAll(run.TestGroup, ".", "_")
	}
	return directoryURI(parentDir(run.TestPath))
}

func runStatus(state outcome.TestState) string {
	switch state {
	case outcome.StatePassed:
		return statusPass
	case outcome.StateFailed:
		return statusFail
	case outcome.StateWarning:
		return statusWarning
	case outcome.StateNoRun:
		return statusSkipped
	default:
		return statusError
	}
}

func performanceSuite(run *outcome.RunOutcome, info report.GeneralInfo, goals []report.SLAGoalResult) TestSuite {
	suite := TestSuite{
		Name: run.TestPath,
		Time: seconds(run.Duration),
		Properties: &Properties{Property: []Property{
			{Name: "Total vUsers", Value: strconv.Itoa(info.VUsersCount)},
		}},
	}

	var leafTime string
	if len(goals) > 0 {
		leafTime = seconds(run.Duration / time.Duration(len(goals)))
	}

	for _, goal := range goals {
		tc := TestCase{
			Name:      goal.TransactionName,
			Classname: goal.FullName + ": " + goal.Percentile,
			Report:    run.ReportLocation,
			Type:      string(run.TestType),
			Time:      leafTime,
		}

		switch strings.ToLower(strings.TrimSpace(goal.Status)) {
		case "failed", "fail":
			tc.Status = statusFail
			tc.Failures = append(tc.Failures, Failure{
				Message: fmt.Sprintf("The goal value '%s' does not equal to the actual value '%s'", goal.GoalValue, goal.ActualValue),
			})
			suite.Failures++
		case "error", "err":
			tc.Status = statusError
			tc.Errors = append(tc.Errors, Error{Message: run.ErrorDesc})
			suite.Errors++
		case "warning", "warn":
			tc.Status = statusWarning
		default:
			tc.Status = statusPass
		}

		suite.TestCases = append(suite.TestCases, tc)
		suite.Tests++
	}
	return suite
}

// appendCase adds tc to suite and counts it by status.
func appendCase(suite *TestSuite, tc TestCase) {
	switch tc.Status {
	case statusFail:
		suite.Failures++
	case statusError:
		suite.Errors++
	case statusSkipped:
		suite.Skipped++
	}
	suite.TestCases = append(suite.TestCases, tc)
	suite.Tests++
}

// seconds renders d in seconds with millisecond precision.
func seconds(d time.Duration) string {
	return decimal.NewFromInt(d.Milliseconds()).Shift(-3).StringFixed(3)
}

func trimSlashes(p string) string {
	return strings.TrimRight(p, `/\`)
}

func lastSegment(p string) string {
	p = trimSlashes(p)
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

func parentDir(p string) string {
	p = trimSlashes(p)
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[:i]
	}
	return ""
}

// directoryURI renders an absolute directory as a file URI and leaves relative
// paths as they are.
func directoryURI(dir string) string {
	slashed := strings.ReplaceAll(dir, `\`, "/")
	switch {
	case drivePath.MatchString(dir):
		return (&url.URL{Scheme: "file", Path: "/" + slashed}).String()
	case strings.HasPrefix(slashed, "/"):
		return (&url.URL{Scheme: "file", Path: slashed}).String()
	default:
		return dir
	}
}
