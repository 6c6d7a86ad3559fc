package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zinc-sig/ftlaunch/internal/outcome"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runResultsXML(status string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<Results version="1.0">
  <ReportNode type="testrun">
    <Data>
      <Name>CheckoutFlow</Name>
      <Result>` + status + `</Result>
    </Data>
  </ReportNode>
</Results>`
}

func resultsXML(status string) string {
	return `<?xml version="1.0"?>
<Report ver="2.0">
  <Doc rID="T1" type="Test">
    <NodeArgs eType="StartTest" status="` + status + `">
      <Disp>Test LoginTest Summary</Disp>
    </NodeArgs>
  </Doc>
</Report>`
}

func TestResolveFunctionalRunResults(t *testing.T) {
	tests := []struct {
		status string
		want   outcome.TestState
	}{
		{"Passed", outcome.StatePassed},
		{"Done", outcome.StatePassed},
		{"Warning", outcome.StateWarning},
		{"Failed", outcome.StateFailed},
		{"Stopped", outcome.StateFailed},
		{"", outcome.StateFailed},
		{"passed", outcome.StateFailed},
	}

	for _, tt := range tests {
		t.Run("status "+tt.status, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, RunResultsXML, runResultsXML(tt.status))

			res := Resolve(dir, "CheckoutFlow")
			assert.Equal(t, tt.want, res.State)
			assert.Equal(t, RunResultsXML, res.Format)
			assert.False(t, res.Passthrough)
		})
	}
}

func TestResolveFunctionalResults(t *testing.T) {
	tests := []struct {
		status string
		want   outcome.TestState
	}{
		{"Done", outcome.StatePassed},
		{"Passed", outcome.StatePassed},
		{"Warning", outcome.StateWarning},
		{"Failed", outcome.StateFailed},
	}

	for _, tt := range tests {
		t.Run("status "+tt.status, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, ResultsXML, resultsXML(tt.status))

			res := Resolve(dir, "LoginTest")
			assert.Equal(t, tt.want, res.State)
			assert.Equal(t, ResultsXML, res.Format)
		})
	}
}

func TestResolveResultsXMLTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ResultsXML, resultsXML("Failed"))
	writeFile(t, dir, RunResultsXML, runResultsXML("Passed"))
	writeFile(t, dir, "sub/"+SLAXML, `<SLA><SLA_GOAL>Passed</SLA_GOAL></SLA>`)

	res := Resolve(dir, "t")
	assert.Equal(t, ResultsXML, res.Format)
	assert.Equal(t, outcome.StateFailed, res.State)
}

func TestResolveFunctionalFailClosed(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantDesc string
	}{
		{
			name:     "run results without Data node",
			file:     RunResultsXML,
			content:  `<Results><ReportNode/></Results>`,
			wantDesc: "/Results/ReportNode/Data",
		},
		{
			name:     "run results without Result child",
			file:     RunResultsXML,
			content:  `<Results><ReportNode><Data><Name>x</Name></Data></ReportNode></Results>`,
			wantDesc: "Result",
		},
		{
			name:     "results without NodeArgs",
			file:     ResultsXML,
			content:  `<Report><Doc/></Report>`,
			wantDesc: "//Report/Doc/NodeArgs",
		},
		{
			name:     "results NodeArgs without status",
			file:     ResultsXML,
			content:  `<Report><Doc><NodeArgs eType="StartTest"/></Doc></Report>`,
			wantDesc: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)

			res := Resolve(dir, "t")
			assert.Equal(t, outcome.StateFailed, res.State)
			assert.Contains(t, res.FailureDesc, tt.wantDesc)
		})
	}
}

func TestResolveMalformedXMLIsUnknown(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, RunResultsXML, `<Results><ReportNode><Data>`)

	res := Resolve(dir, "t")
	assert.Equal(t, outcome.StateUnknown, res.State)
	assert.NotEmpty(t, res.ErrorDesc)
}

func TestResolveMissingDirectory(t *testing.T) {
	res := Resolve(filepath.Join(t.TempDir(), "missing"), "t")
	assert.Equal(t, outcome.StateError, res.State)
	assert.Contains(t, res.ErrorDesc, "does not exist")
}

func TestResolveNoResultFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "nothing here")

	res := Resolve(dir, "NightlyRegression")
	assert.Equal(t, outcome.StateError, res.State)
	assert.Equal(t, "no results file found for NightlyRegression", res.ErrorDesc)
}

func TestResolveParallelPassthrough(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ParallelResultsHTML, "<html></html>")

	res := Resolve(dir, "t")
	assert.True(t, res.Passthrough)

	run := outcome.NewRunOutcome("/tests/p", outcome.TypeParallel)
	run.ReportLocation = dir
	require.NoError(t, run.Complete(outcome.StateWarning, "", ""))

	res, err := ResolveRun(run)
	require.NoError(t, err)
	assert.True(t, res.Passthrough)
	assert.Equal(t, outcome.StateWarning, run.TestState)
}

func TestResolveRunCompletes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, RunResultsXML, runResultsXML("Failed"))

	run := outcome.NewRunOutcome("/tests/Checkout", outcome.TypeFunctional)
	run.ReportLocation = dir

	res, err := ResolveRun(run)
	require.NoError(t, err)
	assert.Equal(t, outcome.StateFailed, res.State)
	assert.Equal(t, outcome.StateFailed, run.TestState)
	assert.Equal(t, "Test failed", run.FailureDesc)

	_, err = ResolveRun(run)
	assert.ErrorIs(t, err, outcome.ErrAlreadyTerminal)
}

const slaOneFailed = `<?xml version="1.0"?>
<Runs>
  <SLA_GOAL TransactionName="login" Percentile="90" FullName="Transaction Response Time (Percentile)" GoalValue="3" ActualValue="2.1" Measurement="PercentileTRT">Passed</SLA_GOAL>
  <SLA_GOAL TransactionName="search" Percentile="90" FullName="Transaction Response Time (Percentile) search" GoalValue="3" ActualValue="7.5" Measurement="PercentileTRT">Failed</SLA_GOAL>
</Runs>`

func TestResolvePerformance(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "LRR/Reports/"+SLAXML, slaOneFailed)

	res := Resolve(dir, "load")
	assert.Equal(t, SLAXML, res.Format)
	assert.Equal(t, outcome.StateFailed, res.State)
	assert.Contains(t, res.FailureDesc, "Transaction Response Time (Percentile) search")
	assert.Contains(t, res.FailureDesc, `"3"`)
	assert.Contains(t, res.FailureDesc, `"7.5"`)
}

func TestResolvePerformanceAllPassed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SLAXML, strings.ReplaceAll(slaOneFailed, ">Failed<", ">Passed<"))

	res := Resolve(dir, "load")
	assert.Equal(t, outcome.StatePassed, res.State)
	assert.Empty(t, res.FailureDesc)
}

func parseNode(t *testing.T, s string) *xmlquery.Node {
	t.Helper()
	doc, err := xmlquery.Parse(strings.NewReader(s))
	require.NoError(t, err)
	return documentElement(doc)
}

func TestEvaluateSLA(t *testing.T) {
	tests := []struct {
		name     string
		xml      string
		want     outcome.TestState
		wantDesc string
	}{
		{
			name: "single passing leaf",
			xml:  `<Goal FullName="g">Passed</Goal>`,
			want: outcome.StatePassed,
		},
		{
			name:     "failing leaf is case-insensitive",
			xml:      `<Goal FullName="g" GoalValue="1" ActualValue="2">FAILED</Goal>`,
			want:     outcome.StateFailed,
			wantDesc: `SLA rule "g" failed: goal value "1", actual value "2"`,
		},
		{
			name: "failing leaf without attributes has no description",
			xml:  `<Goal>failed</Goal>`,
			want: outcome.StateFailed,
		},
		{
			name: "empty element passes",
			xml:  `<Goal></Goal>`,
			want: outcome.StatePassed,
		},
		{
			name:     "deep failure propagates its own description",
			xml:      `<Root><A><B FullName="inner" GoalValue="5" ActualValue="9">Failed</B></A><C>Passed</C></Root>`,
			want:     outcome.StateFailed,
			wantDesc: "inner",
		},
		{
			name:     "interior node describes a silent failure",
			xml:      `<Root><Group FullName="group" GoalValue="1" ActualValue="3"><Leaf>failed</Leaf></Group></Root>`,
			want:     outcome.StateFailed,
			wantDesc: "group",
		},
		{
			name: "all leaves pass",
			xml:  `<Root><A><B>Passed</B></A><C>NoData</C></Root>`,
			want: outcome.StatePassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, desc := EvaluateSLA(parseNode(t, tt.xml))
			assert.Equal(t, tt.want, state)
			if tt.wantDesc == "" {
				assert.Empty(t, desc)
			} else {
				assert.Contains(t, desc, tt.wantDesc)
			}
		})
	}

	state, _ := EvaluateSLA(nil)
	assert.Equal(t, outcome.StateFailed, state)
}

func TestLoadSLAGoalsFromRunReport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, RunReportXML, `<?xml version="1.0"?>
<Report>
  <General><VUsers Count="25"/></General>
  <SLA>
    <SLA_GOAL TransactionName="login" Percentile="90" FullName="TRT login" GoalValue="3" ActualValue="2" Measurement="m">Passed</SLA_GOAL>
    <SLA_GOAL TransactionName="buy" Percentile="95" FullName="TRT buy" GoalValue="3" ActualValue="8" Measurement="m">Failed</SLA_GOAL>
  </SLA>
</Report>`)
	writeFile(t, dir, SLAXML, `<SLA><SLA_GOAL TransactionName="ignored">Failed</SLA_GOAL></SLA>`)

	info, goals, err := LoadSLAGoals(dir)
	require.NoError(t, err)
	assert.Equal(t, 25, info.VUsersCount)
	require.Len(t, goals, 2)
	assert.Equal(t, "login", goals[0].TransactionName)
	assert.Equal(t, "90", goals[0].Percentile)
	assert.Equal(t, "Passed", goals[0].Status)
	assert.Equal(t, "TRT buy", goals[1].FullName)
	assert.Equal(t, "8", goals[1].ActualValue)
	assert.Equal(t, "Failed", goals[1].Status)
}

func TestLoadSLAGoalsFromSLAFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SLAXML, slaOneFailed)

	info, goals, err := LoadSLAGoals(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, info.VUsersCount)
	require.Len(t, goals, 2)
	assert.Equal(t, "search", goals[1].TransactionName)
}

func TestLoadSLAGoalsNoReport(t *testing.T) {
	info, goals, err := LoadSLAGoals(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, GeneralInfo{}, info)
	assert.Empty(t, goals)
}

func TestHasFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "RUN_RESULTS.HTML", "")
	assert.True(t, HasFile(dir, RunResultsHTML))
	assert.False(t, HasFile(dir, ResultsXML))
}
