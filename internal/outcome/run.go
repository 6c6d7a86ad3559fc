package outcome

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotTerminal is returned when a run that has not reached a final state is folded into a suite.
	ErrNotTerminal = errors.New("run outcome is not in a terminal state")
	// ErrAlreadyFolded is returned when the same run is folded into a suite twice.
	ErrAlreadyFolded = errors.New("run outcome already folded into suite")
	// ErrAlreadyTerminal is returned when a terminal run is completed a second time.
	ErrAlreadyTerminal = errors.New("run outcome already has a terminal state")
)

// RunOutcome is the result of a single test invocation.
type RunOutcome struct {
	TestPath       string
	TestName       string
	TestGroup      string
	ReportLocation string
	TestType       TestType
	TestState      TestState
	ErrorDesc      string
	FailureDesc    string
	ExitCode       int
	StartTime      time.Time
	Duration       time.Duration

	mu         sync.Mutex
	consoleOut strings.Builder
	consoleErr strings.Builder
}

// NewRunOutcome creates a run in the Running state, stamped with the current time.
func NewRunOutcome(testPath string, testType TestType) *RunOutcome {
	return &RunOutcome{
		TestPath:  testPath,
		TestName:  filepath.Base(filepath.Clean(testPath)),
		TestType:  testType,
		TestState: StateRunning,
		StartTime: time.Now(),
	}
}

// SetGroup stores the group tag with surrounding separators trimmed.
func (r *RunOutcome) SetGroup(group string) {
	r.TestGroup = strings.Trim(group, `\/`)
}

// Complete moves the run into its terminal state and records the duration since StartTime.
func (r *RunOutcome) Complete(state TestState, errorDesc, failureDesc string) error {
	if r.TestState.IsTerminal() {
		return ErrAlreadyTerminal
	}
	r.TestState = state
	r.ErrorDesc = errorDesc
	r.FailureDesc = failureDesc
	if state == StateFailed && failureDesc == "" {
		r.FailureDesc = "Test failed"
	}
	if !r.StartTime.IsZero() {
		r.Duration = time.Since(r.StartTime)
	}
	return nil
}

// AppendConsoleOut appends one captured stdout line.
func (r *RunOutcome) AppendConsoleOut(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consoleOut.WriteString(line)
	r.consoleOut.WriteByte('\n')
}

// AppendConsoleErr appends one captured stderr line.
func (r *RunOutcome) AppendConsoleErr(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consoleErr.WriteString(line)
	r.consoleErr.WriteByte('\n')
}

// ConsoleOut returns the captured stdout.
func (r *RunOutcome) ConsoleOut() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.consoleOut.String()
}

// ConsoleErr returns the captured stderr.
func (r *RunOutcome) ConsoleErr() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.consoleErr.String()
}
