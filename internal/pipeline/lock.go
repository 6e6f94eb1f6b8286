package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrBusy means another collect run holds the lock.
var ErrBusy = errors.New("another collect run is in progress")

// RunLock serializes collect runs across processes with an exclusive file lock.
type RunLock struct {
	lock *flock.Flock
}

// NewRunLock returns a lock backed by the file at path.
func NewRunLock(path string) *RunLock {
	return &RunLock{lock: flock.New(path)}
}

// TryLock acquires the lock without blocking. It returns ErrBusy when the
// lock is held elsewhere.
func (l *RunLock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.lock.Path()), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.lock.Path(), err)
	}
	if !ok {
		return ErrBusy
	}
	return nil
}

// Unlock releases the lock.
func (l *RunLock) Unlock() error {
	return l.lock.Unlock()
}
