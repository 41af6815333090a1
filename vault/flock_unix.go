//go:build unix

package vault

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// acquireLock blocks until it holds the exclusive data directory lock at path.
func acquireLock(path string) (*os.File, error) {
	return lockFile(path, syscall.LOCK_EX)
}

// tryLock takes the lock without waiting. It returns ErrLocked if another
// process holds it.
func tryLock(path string) (*os.File, error) {
	f, err := lockFile(path, syscall.LOCK_EX|syscall.LOCK_NB)
	if errors.Is(err, syscall.EWOULDBLOCK) {
		return nil, fmt.Errorf("%w: %w", ErrLocked, err)
	}
	return f, err
}

func lockFile(path string, how int) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}
	return f, nil
}

// releaseLock unlocks and closes f.
func releaseLock(f *os.File) {
	if f == nil {
		return
	}
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	_ = f.Close()
}
