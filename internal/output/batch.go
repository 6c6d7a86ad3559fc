package output

import (
	"github.com/zinc-sig/ftlaunch/internal/report"
)

// BatchSummary is the JSON summary of a batch job.
type BatchSummary struct {
	RunID   string    `json:"run_id"`
	Job     string    `json:"job"`
	Total   int       `json:"total"`
	Passed  int       `json:"passed"`
	Failed  int       `json:"failed"`
	Results []*Result `json:"results"`
	Errors  []string  `json:"errors,omitempty"`
	Context any       `json:"context,omitempty"`

	JUnitPath   string   `json:"junit,omitempty"`
	JUnitError  string   `json:"junit_error,omitempty"`
	Uploaded    []string `json:"uploaded,omitempty"`
	UploadError string   `json:"upload_error,omitempty"`

	WebhookSent  bool   `json:"webhook_sent,omitempty"`
	WebhookError string `json:"webhook_error,omitempty"`
}

// NewBatchSummary counts results; Passed includes warnings.
func NewBatchSummary(runID, job string, results []*Result) *BatchSummary {
	s := &BatchSummary{RunID: runID, Job: job, Total: len(results), Results: results}
	for _, r := range results {
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// Resolution is the JSON form of a report directory classification.
type Resolution struct {
	Report      string `json:"report"`
	State       string `json:"state"`
	Format      string `json:"format,omitempty"`
	ErrorDesc   string `json:"error,omitempty"`
	FailureDesc string `json:"failure,omitempty"`
}

// FromResolution renders r for dir. A parallel summary has no state of its
// own and is reported as Passed.
func FromResolution(dir string, r report.Resolution) *Resolution {
	state := r.State.String()
	if r.Passthrough {
		state = "Passed"
	}
	return &Resolution{
		Report:      dir,
		State:       state,
		Format:      r.Format,
		ErrorDesc:   r.ErrorDesc,
		FailureDesc: r.FailureDesc,
	}
}
