package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	indexLockRetries    = 5
	indexLockRetryDelay = 20 * time.Millisecond
)

// indexLock is the advisory lock guarding the staging area during a
// read-modify-write cycle. It is a plain lock file created exclusively;
// holding it does not block readers, only other mutators.
type indexLock struct {
	path string
	f    *os.File
}

// lockIndex acquires .bkk/index.lock, retrying a bounded number of times
// before surfacing ErrIndexLocked. It never blocks indefinitely.
func (r *Repo) lockIndex() (*indexLock, error) {
	lockPath := filepath.Join(r.BkkDir, "index.lock")
	for attempt := 0; ; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return &indexLock{path: lockPath, f: f}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("lock index: %w", err)
		}
		if attempt >= indexLockRetries {
			return nil, fmt.Errorf("lock index: %s exists: %w", lockPath, ErrIndexLocked)
		}
		time.Sleep(indexLockRetryDelay)
	}
}

// release drops the lock. Safe to call more than once.
func (l *indexLock) release() {
	if l == nil || l.f == nil {
		return
	}
	_ = l.f.Close()
	_ = os.Remove(l.path)
	l.f = nil
}
