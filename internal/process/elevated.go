package process

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ProcessID identifies a process owned by a Broker.
type ProcessID int

// Broker creates and controls processes in another session or privilege
// context on the caller's behalf.
type Broker interface {
	Start(spec Spec) (ProcessID, error)
	// Wait blocks for at most timeout. It reports whether the process exited
	// and, if so, its exit code.
	Wait(id ProcessID, timeout time.Duration) (exited bool, exitCode int, err error)
	Terminate(id ProcessID) error
	Release(id ProcessID) error
}

// Spec describes the process a Broker should create.
type Spec struct {
	Path string
	Args []string
	Dir  string
	Env  []string
	// Sink, when set, receives the process output in place of the broker's own.
	Sink LineSink
}

// ElevatedProcess is a process that must be created through a Broker.
type ElevatedProcess struct {
	Broker Broker
	Spec   Spec
}

// ElevatedAdapter exposes a brokered process through Handle. Calls are
// serialised because brokers are not required to be reentrant.
type ElevatedAdapter struct {
	proc *ElevatedProcess

	mu       sync.Mutex
	id       ProcessID
	started  bool
	exited   bool
	released bool
	exitCode int
}

func NewElevatedAdapter(p *ElevatedProcess) *ElevatedAdapter {
	return &ElevatedAdapter{proc: p, exitCode: -1}
}

func (a *ElevatedAdapter) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return errors.New("process already started")
	}
	id, err := a.proc.Broker.Start(a.proc.Spec)
	if err != nil {
		return fmt.Errorf("failed to start elevated %s: %w", a.proc.Spec.Path, err)
	}
	a.id = id
	a.started = true
	return nil
}

func (a *ElevatedAdapter) ExitCode() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exitCode
}

func (a *ElevatedAdapter) HasExited() bool {
	return a.WaitForExit(0)
}

func (a *ElevatedAdapter) WaitForExit(timeout time.Duration) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started {
		return false
	}
	if a.exited {
		return true
	}
	exited, code, err := a.proc.Broker.Wait(a.id, timeout)
	if err != nil {
		return false
	}
	if exited {
		a.exited = true
		a.exitCode = code
	}
	return exited
}

func (a *ElevatedAdapter) Kill() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started {
		return ErrNotStarted
	}
	if a.exited {
		return nil
	}
	if err := a.proc.Broker.Terminate(a.id); err != nil {
		return fmt.Errorf("failed to terminate elevated process %d: %w", a.id, err)
	}
	return nil
}

func (a *ElevatedAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started || a.released {
		return nil
	}
	a.released = true
	if err := a.proc.Broker.Release(a.id); err != nil {
		return fmt.Errorf("failed to release elevated process %d: %w", a.id, err)
	}
	return nil
}
