package runner

import (
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zinc-sig/ftlaunch/internal/process"
)

type captureSink struct {
	mu  sync.Mutex
	out []string
	err []string
}

func (s *captureSink) OutLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = append(s.out, line)
}

func (s *captureSink) ErrLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = append(s.err, line)
}

func (s *captureSink) lines() ([]string, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.out...), append([]string(nil), s.err...)
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecute(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name          string
		config        *Config
		wantExitCode  int
		wantStatus    Status
		wantError     bool
		errorContains string
		wantOut       []string
		wantErr       []string
	}{
		{
			name:         "successful echo command",
			config:       &Config{Command: "echo", Args: []string{"hello world"}},
			wantExitCode: 0,
			wantStatus:   StatusSuccess,
			wantOut:      []string{"hello world"},
		},
		{
			name:         "command with non-zero exit code",
			config:       &Config{Command: "sh", Args: []string{"-c", "exit 42"}},
			wantExitCode: 42,
			wantStatus:   StatusFailed,
		},
		{
			name:         "command writes to stderr",
			config:       &Config{Command: "sh", Args: []string{"-c", "echo 'error message' >&2"}},
			wantExitCode: 0,
			wantStatus:   StatusSuccess,
			wantErr:      []string{"error message"},
		},
		{
			name:         "interleaved streams are split per line",
			config:       &Config{Command: "sh", Args: []string{"-c", "echo one; echo two >&2; printf 'three'"}},
			wantExitCode: 0,
			wantStatus:   StatusSuccess,
			wantOut:      []string{"one", "three"},
			wantErr:      []string{"two"},
		},
		{
			name:         "command with multiple arguments",
			config:       &Config{Command: "sh", Args: []string{"-c", "echo $1 $2 $3", "sh", "arg1", "arg2", "arg3"}},
			wantExitCode: 0,
			wantStatus:   StatusSuccess,
			wantOut:      []string{"arg1 arg2 arg3"},
		},
		{
			name:         "working directory is honoured",
			config:       &Config{Command: "pwd", Dir: "/"},
			wantExitCode: 0,
			wantStatus:   StatusSuccess,
			wantOut:      []string{"/"},
		},
		{
			name:          "non-existent command",
			config:        &Config{Command: "nonexistentcommand12345"},
			wantError:     true,
			errorContains: "failed to start command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &captureSink{}
			tt.config.Sink = sink
			tt.config.PollInterval = 20 * time.Millisecond

			result, err := Execute(tt.config)

			if tt.wantError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("error = %v, want containing %q", err, tt.errorContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.ExitCode != tt.wantExitCode {
				t.Errorf("exit code = %d, want %d", result.ExitCode, tt.wantExitCode)
			}
			if result.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", result.Status, tt.wantStatus)
			}
			if result.ExecutionTime < 0 {
				t.Errorf("execution time = %d, want >= 0", result.ExecutionTime)
			}

			out, errLines := sink.lines()
			if tt.wantOut != nil && strings.Join(out, "|") != strings.Join(tt.wantOut, "|") {
				t.Errorf("stdout lines = %q, want %q", out, tt.wantOut)
			}
			if tt.wantErr != nil && strings.Join(errLines, "|") != strings.Join(tt.wantErr, "|") {
				t.Errorf("stderr lines = %q, want %q", errLines, tt.wantErr)
			}
		})
	}
}

func TestExecuteUnsupportedProcess(t *testing.T) {
	result, err := Execute(&Config{Process: "not a process"})
	if !errors.Is(err, ErrUnsupportedProcess) {
		t.Fatalf("error = %v, want ErrUnsupportedProcess", err)
	}
	if result != nil {
		t.Errorf("result = %+v, want nil", result)
	}
}

func TestFullCommand(t *testing.T) {
	tests := []struct {
		config *Config
		want   string
	}{
		{&Config{Command: "echo"}, "echo"},
		{&Config{Command: "echo", Args: []string{"a", "b"}}, "echo a b"},
	}
	for _, tt := range tests {
		if got := tt.config.FullCommand(); got != tt.want {
			t.Errorf("FullCommand() = %q, want %q", got, tt.want)
		}
	}
}

// scriptedBroker exits after a fixed number of Wait calls unless terminated.
type scriptedBroker struct {
	mu         sync.Mutex
	exitAfter  int
	exitCode   int
	waits      int
	terminated bool
	released   bool
	startErr   error
}

func (b *scriptedBroker) Start(process.Spec) (process.ProcessID, error) {
	if b.startErr != nil {
		return 0, b.startErr
	}
	return 7, nil
}

func (b *scriptedBroker) Wait(_ process.ProcessID, _ time.Duration) (bool, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.waits++
	if b.terminated {
		return true, -1, nil
	}
	if b.exitAfter > 0 && b.waits >= b.exitAfter {
		return true, b.exitCode, nil
	}
	return false, 0, nil
}

func (b *scriptedBroker) Terminate(process.ProcessID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.terminated = true
	return nil
}

func (b *scriptedBroker) Release(process.ProcessID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
	return nil
}

func TestExecuteThroughBroker(t *testing.T) {
	broker := &scriptedBroker{exitAfter: 3, exitCode: 1004}

	result, err := Execute(&Config{Command: "ParallelRunner.exe", Broker: broker, PollInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 1004 {
		t.Errorf("exit code = %d, want 1004", result.ExitCode)
	}
	if result.Status != StatusFailed {
		t.Errorf("status = %s, want %s", result.Status, StatusFailed)
	}
	if !broker.released {
		t.Error("expected broker handle to be released")
	}
}

func TestExecuteBrokerStartFailure(t *testing.T) {
	broker := &scriptedBroker{startErr: errors.New("access denied")}

	_, err := Execute(&Config{Command: "tool", Broker: broker})
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Fatalf("error = %v, want wrapped access denied", err)
	}
}
