// Package console provides the per-job output sink and error summary that
// every runner writes through.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/acarl005/stripansi"
	"go.uber.org/zap"

	"github.com/zinc-sig/ftlaunch/internal/logging"
	"github.com/zinc-sig/ftlaunch/internal/outcome"
)

// Writer serialises tool output onto the job's stdout/stderr and keeps the
// list of failures reported at the end of the job. It is safe for concurrent use.
type Writer struct {
	out    io.Writer
	err    io.Writer
	logger *zap.Logger

	mu      sync.Mutex
	summary []string
}

// NewWriter creates a Writer. A nil logger is replaced with a no-op logger.
func NewWriter(out, errOut io.Writer, logger *zap.Logger) *Writer {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return &Writer{out: out, err: errOut, logger: logging.OrNop(logger)}
}

// WriteLine writes one line to the output stream.
func (w *Writer) WriteLine(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := fmt.Fprintln(w.out, line); err != nil {
		w.logger.Debug("console write failed", zap.Error(err))
	}
}

// WriteErrLine writes one line to the error stream and records it in the error summary.
func (w *Writer) WriteErrLine(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := fmt.Fprintln(w.err, line); err != nil {
		w.logger.Debug("console write failed", zap.Error(err))
	}
	w.summary = append(w.summary, line)
}

// WriteRawErrLine writes one line to the error stream without touching the summary.
func (w *Writer) WriteRawErrLine(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := fmt.Fprintln(w.err, line); err != nil {
		w.logger.Debug("console write failed", zap.Error(err))
	}
}

// AddErrorSummary records a failure for the end-of-job report.
func (w *Writer) AddErrorSummary(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.summary = append(w.summary, line)
}

// ErrorSummary returns a copy of the recorded failures in the order they were added.
func (w *Writer) ErrorSummary() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.summary))
	copy(out, w.summary)
	return out
}

// ForRun returns a line sink bound to one run.
func (w *Writer) ForRun(run *outcome.RunOutcome) *RunConsole {
	return &RunConsole{w: w, run: run}
}

// RunConsole forwards a single run's process output to the job console and
// captures it on the run.
type RunConsole struct {
	w   *Writer
	run *outcome.RunOutcome
}

// OutLine handles one stdout line of the running tool.
func (c *RunConsole) OutLine(line string) {
	c.w.WriteLine(line)
	if c.run != nil {
		c.run.AppendConsoleOut(stripansi.Strip(line))
	}
}

// ErrLine handles one stderr line of the running tool.
func (c *RunConsole) ErrLine(line string) {
	c.w.WriteRawErrLine(line)
	clean := stripansi.Strip(line)
	if c.run != nil {
		c.run.AppendConsoleErr(clean)
	}
	c.w.AddErrorSummary(clean)
}
