package junit

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zinc-sig/ftlaunch/internal/outcome"
)

func finishedRun(t *testing.T, path string, typ outcome.TestType, state outcome.TestState, d time.Duration) *outcome.RunOutcome {
	t.Helper()
	run := outcome.NewRunOutcome(path, typ)
	run.StartTime = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, run.Complete(state, "", ""))
	run.Duration = d
	return run
}

func readDoc(t *testing.T, path string) TestSuites {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc TestSuites
	require.NoError(t, xml.Unmarshal(data, &doc))
	return doc
}

func writePerfReport(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "RunReport.xml"), []byte(`<Report>
  <General><VUsers Count="10"/></General>
  <SLA>
    <SLA_GOAL TransactionName="login" Percentile="90" FullName="TRT login" GoalValue="3" ActualValue="2">Passed</SLA_GOAL>
    <SLA_GOAL TransactionName="buy" Percentile="95" FullName="TRT buy" GoalValue="3" ActualValue="8">Failed</SLA_GOAL>
  </SLA>
</Report>`), 0o644))
}

func TestBuilderSharedSuite(t *testing.T) {
	out := filepath.Join(t.TempDir(), "junit.xml")
	b := NewBuilder(Options{Path: out, SuiteName: "nightly"})

	passed := finishedRun(t, "/tests/web/Login", outcome.TypeFunctional, outcome.StatePassed, 2*time.Second)
	passed.SetGroup("web.smoke")
	passed.ReportLocation = "/tests/web/Login/Report1"
	passed.AppendConsoleOut("step 1 ok")

	failed := finishedRun(t, "/tests/api/Checkout", outcome.TypeAPI, outcome.StateFailed, 1500*time.Millisecond)
	failed.ErrorDesc = "The API test runner's exit code was: 2"

	unknown := finishedRun(t, "/tests/api/Broken", outcome.TypeAPI, outcome.StateUnknown, 0)
	skipped := finishedRun(t, "/tests/api/Skipped", outcome.TypeAPI, outcome.StateNoRun, 0)

	for _, r := range []*outcome.RunOutcome{passed, failed, unknown, skipped} {
		require.NoError(t, b.Add(r))
	}
	require.NoError(t, b.Emit())

	doc := readDoc(t, out)
	assert.Equal(t, RootName, doc.Name)
	assert.Equal(t, 4, doc.Tests)
	require.Len(t, doc.Suites, 1)

	suite := doc.Suites[0]
	assert.Equal(t, "nightly", suite.Name)
	assert.Equal(t, PackageName, suite.Package)
	assert.Equal(t, 4, suite.Tests)
	assert.Equal(t, 1, suite.Failures)
	assert.Equal(t, 1, suite.Errors)
	assert.Equal(t, 1, suite.Skipped)
	assert.Equal(t, "3.500", suite.Time)

	require.Len(t, suite.TestCases, 4)
	tc := suite.TestCases[0]
	assert.Equal(t, "/tests/web/Login", tc.Name)
	assert.Equal(t, "All-Tests.web_smoke", tc.Classname)
	assert.Equal(t, "pass", tc.Status)
	assert.Equal(t, "2.000", tc.Time)
	assert.Equal(t, "functional", tc.Type)
	assert.Equal(t, "/tests/web/Login/Report1", tc.Report)
	assert.Equal(t, "2024-05-06 07:08:09", tc.StartExecDateTime)
	assert.Equal(t, "step 1 ok\n", tc.SystemOut)

	tc = suite.TestCases[1]
	assert.Equal(t, "fail", tc.Status)
	require.Len(t, tc.Failures, 1)
	assert.Equal(t, "Test failed", tc.Failures[0].Message)
	require.Len(t, tc.Errors, 1)
	assert.Contains(t, tc.Errors[0].Message, "exit code was: 2")

	tc = suite.TestCases[2]
	assert.Equal(t, "error", tc.Status)
	require.Len(t, tc.Errors, 1)

	tc = suite.TestCases[3]
	assert.Equal(t, "skipped", tc.Status)
	assert.NotNil(t, tc.Skipped)
}

func TestBuilderNamingOptions(t *testing.T) {
	run := finishedRun(t, `/work/tests/group one/LoginTest/`, outcome.TypeFunctional, outcome.StatePassed, 0)
	winRun := finishedRun(t, `C:\tests\suite\Checkout`, outcome.TypeFunctional, outcome.StatePassed, 0)
	winRun.TestName = ""
	relRun := finishedRun(t, `suite/Search`, outcome.TypeFunctional, outcome.StatePassed, 0)

	b := NewBuilder(Options{Path: filepath.Join(t.TempDir(), "j.xml"), TestNameOnly: true, UnifiedClassname: true})
	require.NoError(t, b.Add(run))
	require.NoError(t, b.Add(winRun))
	require.NoError(t, b.Add(relRun))

	cases := b.Document().Suites[0].TestCases
	assert.Equal(t, "LoginTest", cases[0].Name)
	assert.Equal(t, "file:///work/tests/group%20one", cases[0].Classname)
	assert.Equal(t, "Checkout", cases[1].Name)
	assert.Equal(t, "file:///C:/tests/suite", cases[1].Classname)
	assert.Equal(t, "suite", cases[2].Classname)
}

func TestBuilderPerformanceSuite(t *testing.T) {
	dir := t.TempDir()
	reportDir := filepath.Join(dir, "lr", "Res1")
	writePerfReport(t, reportDir)

	run := finishedRun(t, "/tests/lr/Scenario1", outcome.TypePerformance, outcome.StateFailed, 10*time.Second)
	run.ReportLocation = reportDir

	b := NewBuilder(Options{Path: filepath.Join(dir, "junit.xml")})
	require.NoError(t, b.Add(run))
	require.NoError(t, b.Emit())

	doc := readDoc(t, b.Path())
	require.Len(t, doc.Suites, 1, "empty shared suite must not be emitted")

	suite := doc.Suites[0]
	assert.Equal(t, "/tests/lr/Scenario1", suite.Name)
	assert.Equal(t, 2, suite.Tests)
	assert.Equal(t, 1, suite.Failures)
	assert.Equal(t, 0, suite.Errors)
	assert.Equal(t, "10.000", suite.Time)
	require.NotNil(t, suite.Properties)
	assert.Equal(t, []Property{{Name: "Total vUsers", Value: "10"}}, suite.Properties.Property)

	require.Len(t, suite.TestCases, 2)
	assert.Equal(t, "login", suite.TestCases[0].Name)
	assert.Equal(t, "TRT login: 90", suite.TestCases[0].Classname)
	assert.Equal(t, "pass", suite.TestCases[0].Status)
	assert.Equal(t, "5.000", suite.TestCases[0].Time)

	buy := suite.TestCases[1]
	assert.Equal(t, "fail", buy.Status)
	require.Len(t, buy.Failures, 1)
	assert.Equal(t, "The goal value '3' does not equal to the actual value '8'", buy.Failures[0].Message)
}

func TestPerformanceGoalStatuses(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SLA.xml"), []byte(`<SLA>
  <SLA_GOAL TransactionName="a">ERR</SLA_GOAL>
  <SLA_GOAL TransactionName="b"> warn </SLA_GOAL>
  <SLA_GOAL TransactionName="c">fail</SLA_GOAL>
  <SLA_GOAL TransactionName="d">NoData</SLA_GOAL>
</SLA>`), 0o644))

	run := finishedRun(t, "/tests/lr/S2", outcome.TypePerformance, outcome.StateError, 4*time.Second)
	run.ReportLocation = dir
	run.ErrorDesc = "analysis failed"

	b := NewBuilder(Options{Path: filepath.Join(dir, "j.xml")})
	require.NoError(t, b.Add(run))

	suite := b.Document().Suites[0]
	assert.Equal(t, 4, suite.Tests)
	assert.Equal(t, 1, suite.Failures)
	assert.Equal(t, 1, suite.Errors)
	assert.Equal(t, "0", suite.Properties.Property[0].Value)

	statuses := make([]string, 0, 4)
	for _, tc := range suite.TestCases {
		statuses = append(statuses, tc.Status)
	}
	assert.Equal(t, []string{"error", "warning", "fail", "pass"}, statuses)
	assert.Equal(t, "analysis failed", suite.TestCases[0].Errors[0].Message)
}

func TestPerformanceRunWithoutGoals(t *testing.T) {
	tests := []struct {
		name      string
		state     outcome.TestState
		errorDesc string
		failure   string
		status    string
		errors    int
		failures  int
	}{
		{"canceled", outcome.StateError, "Process was stopped since job has timed out!", "", "error", 1, 0},
		{"failed without report", outcome.StateFailed, "", "no SLA results", "fail", 0, 1},
		{"passed without goals", outcome.StatePassed, "", "", "pass", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			run := outcome.NewRunOutcome("/tests/lr/Nightly", outcome.TypePerformance)
			run.ReportLocation = dir
			run.AppendConsoleOut("scenario started")
			require.NoError(t, run.Complete(tt.state, tt.errorDesc, tt.failure))

			b := NewBuilder(Options{Path: filepath.Join(dir, "j.xml")})
			require.NoError(t, b.Add(run))
			require.NoError(t, b.Emit())

			doc := readDoc(t, b.Path())
			assert.Equal(t, 1, doc.Tests)
			assert.Equal(t, tt.errors, doc.Errors)
			assert.Equal(t, tt.failures, doc.Failures)

			require.Len(t, doc.Suites, 1)
			require.Len(t, doc.Suites[0].TestCases, 1)
			tc := doc.Suites[0].TestCases[0]
			assert.Equal(t, "/tests/lr/Nightly", tc.Name)
			assert.Equal(t, tt.status, tc.Status)
			assert.Contains(t, tc.SystemOut, "scenario started")
			if tt.errorDesc != "" {
				require.Len(t, tc.Errors, 1)
				assert.Equal(t, tt.errorDesc, tc.Errors[0].Message)
			}
			if tt.failure != "" {
				require.Len(t, tc.Failures, 1)
				assert.Equal(t, tt.failure, tc.Failures[0].Message)
			}
		})
	}
}

func TestBuilderRejectsInvalidRuns(t *testing.T) {
	b := NewBuilder(Options{Path: filepath.Join(t.TempDir(), "j.xml")})

	running := outcome.NewRunOutcome("/t", outcome.TypeAPI)
	assert.ErrorIs(t, b.Add(running), outcome.ErrNotTerminal)

	perfRunning := outcome.NewRunOutcome("/lr", outcome.TypePerformance)
	assert.ErrorIs(t, b.Add(perfRunning), outcome.ErrNotTerminal)

	done := finishedRun(t, "/t", outcome.TypeAPI, outcome.StatePassed, 0)
	require.NoError(t, b.Add(done))
	assert.ErrorIs(t, b.Add(done), outcome.ErrAlreadyFolded)

	perf := finishedRun(t, "/lr", outcome.TypePerformance, outcome.StatePassed, 0)
	perf.ReportLocation = t.TempDir()
	require.NoError(t, b.Add(perf))
	assert.ErrorIs(t, b.Add(perf), outcome.ErrAlreadyFolded)
}

func TestBuilderIncrementalEmission(t *testing.T) {
	out := filepath.Join(t.TempDir(), "reports", "junit.xml")
	b := NewBuilder(Options{Path: out})

	var runs []*outcome.RunOutcome
	for _, name := range []string{"/t/a", "/t/b", "/t/c", "/t/d", "/t/e"} {
		runs = append(runs, finishedRun(t, name, outcome.TypeFunctional, outcome.StatePassed, time.Second))
	}

	for _, r := range runs[:2] {
		require.NoError(t, b.Add(r))
		require.NoError(t, b.Emit())
	}
	partial := readDoc(t, out)
	assert.Equal(t, 2, partial.Tests)

	for _, r := range runs[2:] {
		require.NoError(t, b.Add(r))
		require.NoError(t, b.Emit())
	}
	final := readDoc(t, out)
	assert.Equal(t, 5, final.Tests)

	names := map[string]bool{}
	for _, tc := range final.Suites[0].TestCases {
		names[tc.Name] = true
	}
	for _, tc := range partial.Suites[0].TestCases {
		assert.True(t, names[tc.Name], "final report lost %s", tc.Name)
	}

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(out), ".junit-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestBuilderEmitFailureKeepsState(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	b := NewBuilder(Options{Path: filepath.Join(blocker, "junit.xml")})
	require.NoError(t, b.Add(finishedRun(t, "/t/a", outcome.TypeAPI, outcome.StatePassed, 0)))

	err := b.Emit()
	require.Error(t, err)
	assert.Equal(t, 1, b.Document().Tests)

	b.opts.Path = filepath.Join(dir, "junit.xml")
	require.NoError(t, b.Emit())
	assert.Equal(t, 1, readDoc(t, b.Path()).Tests)
}

func TestBuilderConcurrentAdd(t *testing.T) {
	b := NewBuilder(Options{Path: filepath.Join(t.TempDir(), "j.xml")})

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run := outcome.NewRunOutcome("/t/x", outcome.TypeAPI)
			_ = run.Complete(outcome.StatePassed, "", "")
			assert.NoError(t, b.Add(run))
			_ = b.Document()
		}()
	}
	wg.Wait()

	assert.Equal(t, 25, b.Document().Tests)
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, "0.000", seconds(0))
	assert.Equal(t, "1.234", seconds(1234*time.Millisecond))
	assert.Equal(t, "61.000", seconds(time.Minute+time.Second))
}
