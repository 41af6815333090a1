//go:build windows

package vault

import (
	"fmt"
	"os"
)

// Windows has no syscall.Flock. The lock file is opened but not locked, so
// chain updates from concurrent processes are not serialized.

func acquireLock(path string) (*os.File, error) {
	return openLockFile(path)
}

func tryLock(path string) (*os.File, error) {
	return openLockFile(path)
}

func openLockFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	return f, nil
}

func releaseLock(f *os.File) {
	if f == nil {
		return
	}
	_ = f.Close()
}
