package runner

import "github.com/zinc-sig/ftlaunch/internal/outcome"

// ParallelExitCode is an exit code of the parallel runner tool.
type ParallelExitCode int

const (
	ParallelNotStarted ParallelExitCode = 1000
	ParallelPass       ParallelExitCode = 1004
	ParallelWarning    ParallelExitCode = 1005
	ParallelFail       ParallelExitCode = 1006
	ParallelCanceled   ParallelExitCode = 1007
	ParallelError      ParallelExitCode = 1008
)

// MapParallelExit converts a parallel runner exit code into a test state and,
// for non-passing codes, a description. errorReason is reported for
// ParallelError.
func MapParallelExit(code int, errorReason string) (outcome.TestState, string) {
	switch ParallelExitCode(code) {
	case ParallelPass:
		return outcome.StatePassed, ""
	case ParallelWarning:
		return outcome.StateWarning, ""
	case ParallelFail:
		return outcome.StateFailed, "ParallelRunner test has FAILED!"
	case ParallelCanceled:
		return outcome.StateError, "ParallelRunner was stopped since job has timed out!"
	case ParallelError:
		return outcome.StateError, errorReason
	case ParallelNotStarted:
		return outcome.StateError, "Failed to start ParallelRunner!"
	default:
		return outcome.StateError, errorReason
	}
}
