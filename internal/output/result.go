package output

import (
	"time"

	"github.com/zinc-sig/ftlaunch/internal/outcome"
)

// Result is the JSON summary of one test invocation.
type Result struct {
	RunID         string `json:"run_id,omitempty"`
	Test          string `json:"test"`
	Name          string `json:"name"`
	Group         string `json:"group,omitempty"`
	Type          string `json:"type"`
	State         string `json:"state"`
	Report        string `json:"report,omitempty"`
	ErrorDesc     string `json:"error,omitempty"`
	FailureDesc   string `json:"failure,omitempty"`
	Command       string `json:"command,omitempty"`
	ExitCode      int    `json:"exit_code"`
	ExecutionTime int64  `json:"execution_time"`      // in milliseconds
	Timeout       *int64 `json:"timeout,omitempty"`   // in milliseconds
	StartTime     string `json:"start_time,omitempty"` // RFC 3339
	Context       any    `json:"context,omitempty"`

	JUnitPath   string   `json:"junit,omitempty"`
	JUnitError  string   `json:"junit_error,omitempty"`
	Uploaded    []string `json:"uploaded,omitempty"`
	UploadError string   `json:"upload_error,omitempty"`

	// Webhook status (only in local output, not sent to webhook)
	WebhookSent  bool   `json:"webhook_sent,omitempty"`
	WebhookError string `json:"webhook_error,omitempty"`
}

// FromRun copies the canonical fields of a finished run.
func FromRun(run *outcome.RunOutcome) *Result {
	r := &Result{
		Test:          run.TestPath,
		Name:          run.TestName,
		Group:         run.TestGroup,
		Type:          string(run.TestType),
		State:         run.TestState.String(),
		Report:        run.ReportLocation,
		ErrorDesc:     run.ErrorDesc,
		FailureDesc:   run.FailureDesc,
		ExitCode:      run.ExitCode,
		ExecutionTime: run.Duration.Milliseconds(),
	}
	if !run.StartTime.IsZero() {
		r.StartTime = run.StartTime.Format(time.RFC3339)
	}
	return r
}

// Passed reports whether the run counts as successful.
func (r *Result) Passed() bool {
	return r.State == outcome.StatePassed.String() || r.State == outcome.StateWarning.String()
}
