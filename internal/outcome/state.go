// Package outcome holds the canonical result model shared by every tool runner.
package outcome

import "strings"

// TestState is the canonical state of a single test invocation.
type TestState int

const (
	StateWaiting TestState = iota
	StateRunning
	StateNoRun
	StatePassed
	StateFailed
	StateError
	StateWarning
	StateUnknown
)

// String returns the state name as it appears in reports and logs.
func (s TestState) String() string {
	switch s {
	case StateWaiting:
		return "Waiting"
	case StateRunning:
		return "Running"
	case StateNoRun:
		return "NoRun"
	case StatePassed:
		return "Passed"
	case StateFailed:
		return "Failed"
	case StateError:
		return "Error"
	case StateWarning:
		return "Warning"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether the state is final and may be folded into a suite.
func (s TestState) IsTerminal() bool {
	switch s {
	case StatePassed, StateFailed, StateError, StateWarning, StateNoRun, StateUnknown:
		return true
	default:
		return false
	}
}

// IsSuccessful reports whether the state counts as a successful run.
func (s TestState) IsSuccessful() bool {
	return s == StatePassed || s == StateWarning
}

// MarshalText implements encoding.TextMarshaler.
func (s TestState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TestType tags the tool family that produced a run.
type TestType string

const (
	TypeFunctional  TestType = "functional"
	TypeAPI         TestType = "api"
	TypePerformance TestType = "performance"
	TypeParallel    TestType = "parallel"
)

// ParseTestType maps a user supplied tag onto a TestType.
func ParseTestType(tag string) (TestType, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "functional", "gui", "qtp", "uft":
		return TypeFunctional, true
	case "api", "st", "service-test":
		return TypeAPI, true
	case "performance", "lr", "loadrunner":
		return TypePerformance, true
	case "parallel", "parallelrunner":
		return TypeParallel, true
	default:
		return "", false
	}
}
