// Package singleton detects whether a single-instance tool is already running.
package singleton

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Probe checks a lock file that the interactive tool holds while it runs.
type Probe struct {
	Path string
}

func NewProbe(path string) *Probe {
	return &Probe{Path: path}
}

// Running reports whether another process holds the lock. The lock is taken
// and released immediately; it never guards the caller's own work.
func (p *Probe) Running() (bool, error) {
	lock := flock.New(p.Path)
	locked, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to probe lock %s: %w", p.Path, err)
	}
	if !locked {
		return true, nil
	}
	if err := lock.Unlock(); err != nil {
		return false, fmt.Errorf("failed to release lock %s: %w", p.Path, err)
	}
	return false, nil
}
