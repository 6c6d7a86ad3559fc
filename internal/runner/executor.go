package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zinc-sig/ftlaunch/internal/logging"
	"github.com/zinc-sig/ftlaunch/internal/process"
)

// DefaultPollInterval is how often the loop re-checks exit and cancellation.
const DefaultPollInterval = 500 * time.Millisecond

// ErrUnsupportedProcess is returned when no adapter exists for Config.Process.
var ErrUnsupportedProcess = errors.New("could not create process adapter")

type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

type Config struct {
	Command string
	Args    []string
	Dir     string
	Env     []string

	// Broker, when set, starts the command through an elevation broker.
	Broker process.Broker
	// Process, when set, is used instead of building one from Command.
	Process any

	Sink         process.LineSink
	PollInterval time.Duration
	// Canceled is polled while the process runs; once it reports true the
	// process is killed.
	Canceled func() bool
	Logger   *zap.Logger
}

type Result struct {
	Command       string
	Status        Status
	ExitCode      int
	ExecutionTime int64 // milliseconds
}

// FullCommand returns the command line as a single string.
func (c *Config) FullCommand() string {
	if len(c.Args) == 0 {
		return c.Command
	}
	return c.Command + " " + strings.Join(c.Args, " ")
}

func (c *Config) buildProcess() any {
	if c.Process != nil {
		return c.Process
	}
	if c.Broker != nil {
		return &process.ElevatedProcess{
			Broker: c.Broker,
			Spec:   process.Spec{Path: c.Command, Args: c.Args, Dir: c.Dir, Env: c.Env, Sink: c.Sink},
		}
	}
	cmd := exec.Command(c.Command, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = c.Env
	}
	return cmd
}

// Execute runs one invocation to completion or cancellation. It starts the
// process, then waits in PollInterval slices, checking Canceled between them.
// A Go error is returned only when the process could not be adapted or started.
func Execute(config *Config) (*Result, error) {
	logger := logging.OrNop(config.Logger)
	poll := config.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	canceled := config.Canceled
	if canceled == nil {
		canceled = func() bool { return false }
	}

	handle, ok := process.NewAdapter(config.buildProcess(), config.Sink)
	if !ok {
		return nil, ErrUnsupportedProcess
	}
	defer func() {
		if err := handle.Close(); err != nil {
			logger.Warn("failed to close process handle", zap.Error(err))
		}
	}()

	result := &Result{Command: config.FullCommand(), ExitCode: -1}

	startTime := time.Now()
	if err := handle.Start(); err != nil {
		return nil, fmt.Errorf("failed to start command: %w", err)
	}
	logger.Debug("process started", zap.String("command", result.Command))

	for !handle.WaitForExit(poll) {
		if !canceled() {
			continue
		}
		logger.Info("cancellation requested, killing process", zap.String("command", result.Command))
		if err := handle.Kill(); err != nil {
			logger.Warn("failed to kill process", zap.Error(err))
		}
		handle.WaitForExit(poll)
		result.Status = StatusCanceled
		result.ExecutionTime = time.Since(startTime).Milliseconds()
		return result, nil
	}

	result.ExecutionTime = time.Since(startTime).Milliseconds()
	result.ExitCode = handle.ExitCode()
	if result.ExitCode == 0 {
		result.Status = StatusSuccess
	} else {
		result.Status = StatusFailed
	}
	return result, nil
}

// CanceledBy returns a predicate reporting whether ctx is done.
func CanceledBy(ctx context.Context) func() bool {
	return func() bool {
		return ctx.Err() != nil
	}
}
