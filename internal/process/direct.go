package process

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const defaultWaitDelay = 2 * time.Second

// DirectAdapter controls a process started in the caller's own session.
type DirectAdapter struct {
	cmd  *exec.Cmd
	sink LineSink

	mu       sync.Mutex
	started  bool
	closed   bool
	exitCode int
	done     chan struct{}
	out, err *lineWriter
}

// NewDirectAdapter wraps cmd. When sink is non-nil and cmd has no stdout or
// stderr configured, output is split into lines and forwarded to sink.
func NewDirectAdapter(cmd *exec.Cmd, sink LineSink) *DirectAdapter {
	return &DirectAdapter{
		cmd:      cmd,
		sink:     sink,
		exitCode: -1,
		done:     make(chan struct{}),
	}
}

func (a *DirectAdapter) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return errors.New("process handle closed")
	}
	if a.started {
		return errors.New("process already started")
	}
	if a.sink != nil {
		if a.cmd.Stdout == nil {
			a.out = newLineWriter(a.sink.OutLine)
			a.cmd.Stdout = a.out
		}
		if a.cmd.Stderr == nil {
			a.err = newLineWriter(a.sink.ErrLine)
			a.cmd.Stderr = a.err
		}
	}
	if a.cmd.WaitDelay == 0 {
		a.cmd.WaitDelay = defaultWaitDelay
	}

	if err := a.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", a.cmd.Path, err)
	}
	a.started = true

	go a.wait()
	return nil
}

func (a *DirectAdapter) wait() {
	_ = a.cmd.Wait()

	a.out.flush()
	a.err.flush()

	code := -1
	if a.cmd.ProcessState != nil {
		code = a.cmd.ProcessState.ExitCode()
	}

	a.mu.Lock()
	a.exitCode = code
	a.mu.Unlock()
	close(a.done)
}

func (a *DirectAdapter) ExitCode() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exitCode
}

func (a *DirectAdapter) HasExited() bool {
	if !a.isStarted() {
		return false
	}
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

func (a *DirectAdapter) WaitForExit(timeout time.Duration) bool {
	if !a.isStarted() {
		return false
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-a.done:
		return true
	case <-timer.C:
		return false
	}
}

func (a *DirectAdapter) Kill() error {
	if !a.isStarted() {
		return ErrNotStarted
	}
	if a.HasExited() {
		return nil
	}
	if err := a.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill process %d: %w", a.cmd.Process.Pid, err)
	}
	return nil
}

func (a *DirectAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

func (a *DirectAdapter) isStarted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.started
}

// lineWriter splits written bytes into lines and hands each complete line to emit.
type lineWriter struct {
	mu   sync.Mutex
	buf  []byte
	emit func(string)
}

func newLineWriter(emit func(string)) *lineWriter {
	return &lineWriter{emit: emit}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSuffix(string(w.buf[:i]), "\r")
		w.buf = w.buf[i+1:]
		w.emit(line)
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.emit(strings.TrimSuffix(string(w.buf), "\r"))
		w.buf = nil
	}
}

