package fuse

import (
	vfs "github.com/example/epochfs/pkg/fs"
)

// errnoErr unwraps the dispatcher's error domain back into the native
// syscall code the kernel expects. Errors that carry no code pass
// through for the serve loop's default handling.
func errnoErr(err error) error {
	if err == nil {
		return nil
	}
	if code, ok := vfs.AsErrno(err); ok {
		return code
	}
	return err
}
