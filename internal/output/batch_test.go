package output

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zinc-sig/ftlaunch/internal/outcome"
	"github.com/zinc-sig/ftlaunch/internal/report"
)

func TestNewBatchSummary(t *testing.T) {
	results := []*Result{
		{State: "Passed"},
		{State: "Warning"},
		{State: "Failed"},
		{State: "Error"},
	}

	s := NewBatchSummary("id-1", "nightly.yaml", results)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, "nightly.yaml", s.Job)
}

func TestFromResolution(t *testing.T) {
	r := FromResolution("/r/Res1", report.Resolution{Passthrough: true, Format: report.ParallelResultsHTML})
	assert.Equal(t, "Passed", r.State)
	assert.Equal(t, "/r/Res1", r.Report)

	r = FromResolution("/r/1", report.Resolution{State: outcome.StateError, ErrorDesc: "no results file found for x"})
	assert.Equal(t, "Error", r.State)
	assert.Equal(t, "no results file found for x", r.ErrorDesc)
	assert.Empty(t, r.Format)
}
