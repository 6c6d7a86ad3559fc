package outcome

import (
	"sync"
	"time"
)

// SuiteOutcome is an ordered collection of runs with counters maintained on every fold.
type SuiteOutcome struct {
	Name string

	mu           sync.Mutex
	runs         []*RunOutcome
	seen         map[*RunOutcome]struct{}
	total        int
	failures     int
	errors       int
	skipped      int
	totalRuntime time.Duration
}

// SuiteCounters is a consistent snapshot of a suite's aggregate counters.
type SuiteCounters struct {
	Total        int
	Failures     int
	Errors       int
	Skipped      int
	TotalRuntime time.Duration
}

// NewSuiteOutcome creates an empty suite.
func NewSuiteOutcome(name string) *SuiteOutcome {
	return &SuiteOutcome{
		Name: name,
		seen: make(map[*RunOutcome]struct{}),
	}
}

// Add folds a terminal run into the suite.
func (s *SuiteOutcome) Add(run *RunOutcome) error {
	if !run.TestState.IsTerminal() {
		return ErrNotTerminal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[run]; ok {
		return ErrAlreadyFolded
	}
	s.seen[run] = struct{}{}
	s.runs = append(s.runs, run)

	s.total++
	switch run.TestState {
	case StateFailed:
		s.failures++
	case StateError, StateUnknown:
		s.errors++
	case StateNoRun:
		s.skipped++
	}
	s.totalRuntime += run.Duration
	return nil
}

// Runs returns the folded runs in insertion order.
func (s *SuiteOutcome) Runs() []*RunOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*RunOutcome, len(s.runs))
	copy(out, s.runs)
	return out
}

// Counters returns the current aggregate counters.
func (s *SuiteOutcome) Counters() SuiteCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SuiteCounters{
		Total:        s.total,
		Failures:     s.failures,
		Errors:       s.errors,
		Skipped:      s.skipped,
		TotalRuntime: s.totalRuntime,
	}
}

// Len returns the number of folded runs.
func (s *SuiteOutcome) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}
