package fs

import (
	"errors"
	"fmt"
	"syscall"
)

// Errno is the internal error domain: the host's errno space viewed as a
// closed enumeration. Every failing underlying call is captured as an
// Errno and travels unchanged to the boundary, where the bridge turns it
// back into the native code. Nothing is remapped along the way.
type Errno syscall.Errno

// Common filesystem errors. Comparisons should go through errors.Is so
// that FSError wrapping stays transparent.
var (
	ErrNotExist     = Errno(syscall.ENOENT)
	ErrExist        = Errno(syscall.EEXIST)
	ErrPermission   = Errno(syscall.EACCES)
	ErrIO           = Errno(syscall.EIO)
	ErrIsDir        = Errno(syscall.EISDIR)
	ErrNotDir       = Errno(syscall.ENOTDIR)
	ErrNotEmpty     = Errno(syscall.ENOTEMPTY)
	ErrInvalid      = Errno(syscall.EINVAL)
	ErrBadHandle    = Errno(syscall.EBADF)
	ErrNoSpace      = Errno(syscall.ENOSPC)
	ErrNameTooLong  = Errno(syscall.ENAMETOOLONG)
	ErrNotSupported = Errno(syscall.ENOTSUP)
)

// Error implements the error interface.
func (e Errno) Error() string {
	return syscall.Errno(e).Error()
}

// Errno returns the host's native error code.
func (e Errno) Errno() syscall.Errno {
	return syscall.Errno(e)
}

// FromErrno captures the errno behind an underlying call's error. Errors
// without a recognizable code degrade to EIO; nil stays nil.
func FromErrno(err error) error {
	if err == nil {
		return nil
	}
	var code syscall.Errno
	if errors.As(err, &code) {
		return Errno(code)
	}
	var already Errno
	if errors.As(err, &already) {
		return already
	}
	return ErrIO
}

// AsErrno extracts the native code from an error produced by this
// package. The second return is false when the error did not originate
// here.
func AsErrno(err error) (syscall.Errno, bool) {
	var e Errno
	if errors.As(err, &e) {
		return syscall.Errno(e), true
	}
	return 0, false
}

// FSError represents a filesystem error with additional context.
type FSError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FSError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FSError) Unwrap() error {
	return e.Err
}

// NewError creates a new FSError.
func NewError(op, path string, err error) error {
	return &FSError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}
