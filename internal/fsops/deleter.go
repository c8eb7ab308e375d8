// Package fsops abstracts the destructive filesystem operations used by a sweep.
package fsops

import (
	"errors"
	"io/fs"
	"syscall"
)

// Deleter abstracts filesystem delete operations.
// Tests substitute FakeDeleter to prove that dry runs never delete.
type Deleter interface {
	RemoveAll(path string) error
}

// IsPermission reports whether err is a permission or ownership failure.
// Such failures are recoverable: the sweep logs them and moves on.
func IsPermission(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, syscall.EACCES) ||
		errors.Is(err, syscall.EPERM)
}
