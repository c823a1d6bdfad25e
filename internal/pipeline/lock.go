package pipeline

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"

	"mcat/internal/fileutil"
)

// ErrLocked reports outputs that another process is currently writing.
var ErrLocked = errors.New("output is locked by another mcat process")

// outputLock is an advisory lock on "<base>.lock".
type outputLock struct {
	path string
	lock *flock.Flock
}

func acquireLock(base string) (*outputLock, error) {
	path := replaceExt(base, ".lock")
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &outputLock{path: path, lock: lock}, nil
}

func (l *outputLock) release() error {
	if l == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	if err := fileutil.RemoveIfExists(l.path); err != nil {
		return fmt.Errorf("remove lock %s: %w", l.path, err)
	}
	return nil
}
