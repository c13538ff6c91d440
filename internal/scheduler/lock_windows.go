//go:build windows

package scheduler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// FileLock is an exclusive-create lock file. Creation fails while another
// process owns it.
type FileLock struct {
	path   string
	locked bool
}

// NewFileLock returns an unlocked lock on path.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// TryLock reports false without error when another process holds the lock.
func (l *FileLock) TryLock() (bool, error) {
	if l.locked {
		return true, nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return false, err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create lock %s: %w", l.path, err)
	}
	_, _ = f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	if err := f.Close(); err != nil {
		_ = os.Remove(l.path)
		return false, err
	}
	l.locked = true
	return true, nil
}

// Unlock removes the lock file when held.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
