// Package reconcile flattens report directories that a tool wrote one level
// deeper than expected (<dir>/Report/<files> becomes <dir>/<files>).
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zinc-sig/ftlaunch/internal/logging"
	"github.com/zinc-sig/ftlaunch/internal/retry"
)

// NestedDirName is the subdirectory some tools write their report into.
const NestedDirName = "Report"

const (
	DefaultAttempts = 10
	DefaultDelay    = 500 * time.Millisecond
)

// ErrNothingToReconcile is returned when the directory has no nested report.
var ErrNothingToReconcile = errors.New("no nested report directory")

// FS is the subset of filesystem operations reconciliation performs.
type FS interface {
	Rename(oldpath, newpath string) error
	RemoveAll(path string) error
	Stat(name string) (os.FileInfo, error)
}

type osFS struct{}

func (osFS) Rename(oldpath, newpath string) error  { return os.Rename(oldpath, newpath) }
func (osFS) RemoveAll(path string) error           { return os.RemoveAll(path) }
func (osFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

// Reconciler moves nested report directories into place.
type Reconciler struct {
	FS      FS
	Policy  *retry.Policy
	Logger  *zap.Logger
	TempDir func(parent string) string
}

// New creates a Reconciler on the real filesystem with the default retry policy.
func New(logger *zap.Logger) *Reconciler {
	return &Reconciler{
		FS:     osFS{},
		Policy: retry.Fixed(DefaultAttempts, DefaultDelay),
		Logger: logging.OrNop(logger),
	}
}

// Reconcile moves <dir>/Report up into <dir>. The three steps (move dir aside,
// move the nested report into dir, delete the emptied temporary directory) are
// retried as one unit, resuming after the last step that succeeded. When every
// attempt fails the nested layout is restored, a warning is logged and an error
// is returned; callers keep dir as the report location either way.
func (r *Reconciler) Reconcile(ctx context.Context, dir string) error {
	fsys := r.FS
	if fsys == nil {
		fsys = osFS{}
	}
	logger := logging.OrNop(r.Logger)
	policy := r.Policy
	if policy == nil {
		policy = retry.Fixed(DefaultAttempts, DefaultDelay)
	}

	dir = filepath.Clean(dir)
	if info, err := fsys.Stat(filepath.Join(dir, NestedDirName)); err != nil || !info.IsDir() {
		return ErrNothingToReconcile
	}

	tmp := r.tempDir(filepath.Dir(dir))
	step := 0

	err := retry.Do(ctx, policy, func(attempt int) error {
		if step == 0 {
			if err := fsys.Rename(dir, tmp); err != nil {
				return fmt.Errorf("failed to move %s aside: %w", dir, err)
			}
			step = 1
		}
		if step == 1 {
			if err := fsys.Rename(filepath.Join(tmp, NestedDirName), dir); err != nil {
				return fmt.Errorf("failed to move nested report into %s: %w", dir, err)
			}
			step = 2
		}
		if err := fsys.RemoveAll(tmp); err != nil {
			return fmt.Errorf("failed to remove %s: %w", tmp, err)
		}
		step = 3
		return nil
	})
	if err == nil {
		logger.Debug("report folder reconciled", zap.String("dir", dir))
		return nil
	}

	switch step {
	case 1:
		if rbErr := fsys.Rename(tmp, dir); rbErr != nil {
			logger.Error("failed to restore report folder",
				zap.String("dir", dir), zap.String("temp", tmp), zap.Error(rbErr))
			err = errors.Join(err, rbErr)
		}
	case 2:
		// The report is already flattened; only the empty temporary directory is left over.
		logger.Warn("temporary report folder left behind", zap.String("temp", tmp), zap.Error(err))
		return nil
	}

	logger.Warn("failed to change the report folder structure", zap.String("dir", dir), zap.Error(err))
	return err
}

func (r *Reconciler) tempDir(parent string) string {
	if r.TempDir != nil {
		return r.TempDir(parent)
	}
	return filepath.Join(parent, "tmp_"+uuid.NewString())
}
