package docstore

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/Sh1ra083/codex/internal/errors"
)

// DefaultLockTimeout bounds how long a store waits to acquire a document lock
// before surfacing ErrBusy.
const DefaultLockTimeout = 5 * time.Second

// lockRetryInterval is the pause between non-blocking acquisition attempts.
const lockRetryInterval = 10 * time.Millisecond

// FileLock provides cross-process mutual exclusion using flock(2), scoped to
// a single document. The lock file lives next to the document it guards
// (document path + ".lock").
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a FileLock guarding the document at docPath.
// Call Lock/Unlock to acquire and release.
func NewFileLock(docPath string) *FileLock {
	return &FileLock{path: docPath + ".lock"}
}

// Lock acquires the exclusive lock, retrying until timeout elapses.
// A non-positive timeout falls back to DefaultLockTimeout. Returns an error
// wrapping errors.ErrBusy if the lock is still held when the deadline passes.
func (fl *FileLock) Lock(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}

	deadline := time.Now().Add(timeout)
	for {
		acquired, err := fl.TryLock()
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.NewStoreError("lock", fl.path, errors.ErrBusy, nil)
		}
		time.Sleep(lockRetryInterval)
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false if it is held elsewhere.
func (fl *FileLock) TryLock() (bool, error) {
	f, err := os.OpenFile(fl.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return false, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		if err == syscall.EWOULDBLOCK {
			return false, nil
		}
		return false, fmt.Errorf("flock: %w", err)
	}

	fl.file = f
	return true, nil
}

// Unlock releases the lock and closes the lock file. Calling Unlock without
// a held lock is a no-op.
func (fl *FileLock) Unlock() error {
	if fl.file == nil {
		return nil
	}

	if err := syscall.Flock(int(fl.file.Fd()), syscall.LOCK_UN); err != nil {
		_ = fl.file.Close()
		fl.file = nil
		return fmt.Errorf("funlock: %w", err)
	}

	err := fl.file.Close()
	fl.file = nil
	return err
}
