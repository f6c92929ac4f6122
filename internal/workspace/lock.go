package workspace

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

var (
	// ErrLockTimeout indicates the lock acquisition timed out
	ErrLockTimeout = errors.New("lock acquisition timed out")
)

// lockRetryDelay is the polling interval while waiting for a held lock.
const lockRetryDelay = 50 * time.Millisecond

// FileLock provides an exclusive inter-process lock using flock(2).
// The lock is automatically released when the process exits or crashes.
type FileLock struct {
	path  string
	flock *flock.Flock
}

// NewFileLock creates a new file lock at the given path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		path:  path,
		flock: flock.New(path),
	}
}

// NewOutputLock creates the lock guarding an output root. The lock file
// lives in the system temp directory so it never shows up in the output.
func NewOutputLock(outRoot string) (*FileLock, error) {
	abs, err := filepath.Abs(outRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output root: %w", err)
	}
	sum := sha256.Sum256([]byte(abs))
	name := "rift-" + hex.EncodeToString(sum[:8]) + ".lock"
	return NewFileLock(filepath.Join(os.TempDir(), name)), nil
}

// TryLock attempts to acquire the exclusive lock without blocking.
// Returns true if the lock was acquired, false if it is held elsewhere.
func (l *FileLock) TryLock() (bool, error) {
	if err := l.ensureDir(); err != nil {
		return false, err
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", l.path, err)
	}
	return acquired, nil
}

// Lock acquires the exclusive lock, blocking until it's available, the
// timeout expires or the context is canceled.
// Returns ErrLockTimeout if the timeout expires first.
func (l *FileLock) Lock(ctx context.Context, timeout time.Duration) error {
	if acquired, err := l.TryLock(); err != nil || acquired {
		return err
	}

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	acquired, err := l.flock.TryLockContext(lockCtx, lockRetryDelay)
	if acquired {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %s", ErrLockTimeout, timeout, l.path)
	}
	return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
}

// Unlock releases the lock.
// It is safe to call Unlock on an unlocked FileLock (no-op).
func (l *FileLock) Unlock() error {
	if !l.IsLocked() {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

// IsLocked returns true if the lock is currently held by this instance.
func (l *FileLock) IsLocked() bool {
	return l.flock.Locked()
}

// Path returns the path to the lock file.
func (l *FileLock) Path() string {
	return l.path
}

func (l *FileLock) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	return nil
}
