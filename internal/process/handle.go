// Package process gives the execution loop one control surface over child
// processes, whether they were spawned directly or through an elevation broker.
package process

import (
	"errors"
	"os/exec"
	"time"
)

// ErrNotStarted is returned by operations that need a running process.
var ErrNotStarted = errors.New("process not started")

// Handle is the uniform control surface over one child process.
type Handle interface {
	// ExitCode returns the exit code, or -1 while the process is running or
	// when it was terminated by a signal.
	ExitCode() int
	HasExited() bool
	Start() error
	// WaitForExit blocks for at most timeout and reports whether the process exited.
	WaitForExit(timeout time.Duration) bool
	Kill() error
	// Close releases the handle. It does not stop the process.
	Close() error
}

// LineSink receives a process's output one line at a time.
type LineSink interface {
	OutLine(line string)
	ErrLine(line string)
}

// NewAdapter returns the Handle matching the variant of p, or false when the
// variant is not recognised. Direct processes are *exec.Cmd, elevated ones
// are *ElevatedProcess.
func NewAdapter(p any, sink LineSink) (Handle, bool) {
	switch v := p.(type) {
	case *exec.Cmd:
		if v == nil {
			return nil, false
		}
		return NewDirectAdapter(v, sink), true
	case *ElevatedProcess:
		if v == nil || v.Broker == nil {
			return nil, false
		}
		return NewElevatedAdapter(v), true
	default:
		return nil, false
	}
}
