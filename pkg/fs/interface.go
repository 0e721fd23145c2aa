package fs

import (
	"context"
	"time"
)

// FileSystem is the operation surface the FUSE bridge dispatches into:
// one method per filesystem primitive, each a direct passthrough to the
// backing tree. Path arguments are virtual paths ("/" is the mount
// root). Methods taking a HandleID are only ever called between the
// open-class call that produced the handle and the release-class call
// that destroys it; implementations trust that ordering.
type FileSystem interface {
	// StatFS retrieves statistics of the filesystem backing a path.
	StatFS(ctx context.Context, path string) (FSStat, error)

	// GetAttr retrieves attributes for the file at the specified path,
	// without following a final symlink. Timestamps are returned in
	// virtual-epoch terms.
	GetAttr(ctx context.Context, path string) (FileInfo, error)

	// FGetAttr retrieves attributes through an open handle. Timestamps
	// are returned in virtual-epoch terms.
	FGetAttr(ctx context.Context, h HandleID) (FileInfo, error)

	// Access checks real-credential accessibility for the given mask.
	Access(ctx context.Context, path string, mask uint32) error

	// OpenDir opens a directory stream and returns its handle.
	OpenDir(ctx context.Context, path string) (HandleID, error)

	// ReadDir enumerates entries of an open directory stream from its
	// current position, passing each to fill until fill returns false or
	// the stream is exhausted. There is no independent pagination.
	ReadDir(ctx context.Context, h HandleID, fill func(DirEntry) bool) error

	// ReleaseDir closes a directory stream. The handle must not be used
	// afterwards.
	ReleaseDir(ctx context.Context, h HandleID) error

	// Readlink reads the target of a symbolic link.
	Readlink(ctx context.Context, path string) (string, error)

	// Mknod creates a filesystem node with the given mode and device.
	Mknod(ctx context.Context, path string, mode uint32, dev uint64) error

	// Mkdir creates a directory.
	Mkdir(ctx context.Context, path string, mode uint32) error

	// Symlink creates a symbolic link at link pointing to target.
	Symlink(ctx context.Context, target, link string) error

	// Unlink removes a file.
	Unlink(ctx context.Context, path string) error

	// Rmdir removes an empty directory.
	Rmdir(ctx context.Context, path string) error

	// Rename moves oldpath to newpath.
	Rename(ctx context.Context, oldpath, newpath string) error

	// Link creates a hard link at newpath referring to oldpath.
	Link(ctx context.Context, oldpath, newpath string) error

	// Chmod changes the permission bits of a file.
	Chmod(ctx context.Context, path string, mode uint32) error

	// Chown changes the owner and group of a file.
	Chown(ctx context.Context, path string, uid, gid uint32) error

	// Truncate sets the size of the file at path.
	Truncate(ctx context.Context, path string, size int64) error

	// FTruncate sets the size of an open file.
	FTruncate(ctx context.Context, h HandleID, size int64) error

	// UTime sets access and modify times. The supplied values are in
	// virtual-epoch terms and are converted before touching storage.
	// Granularity is one second.
	UTime(ctx context.Context, path string, atime, mtime time.Time) error

	// SetXAttr sets an extended attribute without following symlinks.
	SetXAttr(ctx context.Context, path, name string, value []byte, flags int) error

	// GetXAttr retrieves an extended attribute value.
	GetXAttr(ctx context.Context, path, name string) ([]byte, error)

	// ListXAttr lists extended attribute names.
	ListXAttr(ctx context.Context, path string) ([]string, error)

	// RemoveXAttr removes an extended attribute.
	RemoveXAttr(ctx context.Context, path, name string) error

	// Open opens an existing file with the given flags and returns its
	// handle.
	Open(ctx context.Context, path string, flags int) (HandleID, error)

	// Create creates a file with the given flags and mode and returns
	// the handle of the open file.
	Create(ctx context.Context, path string, flags int, mode uint32) (HandleID, error)

	// Flush is called on close of a file descriptor duplicate; data is
	// pushed to stable storage.
	Flush(ctx context.Context, h HandleID) error

	// Fsync commits file state to storage; with datasync set, metadata
	// not needed to read the data back may be skipped.
	Fsync(ctx context.Context, h HandleID, datasync bool) error

	// Read reads up to len(buf) bytes at the given offset, returning the
	// byte count. A short count at end of file is not an error.
	Read(ctx context.Context, h HandleID, buf []byte, offset int64) (int, error)

	// Write writes data at the given offset, returning the byte count.
	Write(ctx context.Context, h HandleID, data []byte, offset int64) (int, error)

	// Flock applies or removes an advisory open-file lock (LOCK_SH,
	// LOCK_EX, LOCK_UN, optionally LOCK_NB).
	Flock(ctx context.Context, h HandleID, op int) error

	// Fallocate manipulates file space directly (mode as in
	// fallocate(2)).
	Fallocate(ctx context.Context, h HandleID, mode uint32, offset, length int64) error

	// Lock performs a POSIX record-lock command (F_GETLK, F_SETLK,
	// F_SETLKW) on an open file. The FileLock is updated in place for
	// queries.
	Lock(ctx context.Context, h HandleID, cmd int, lk *FileLock) error

	// Release closes an open file. The handle must not be used
	// afterwards.
	Release(ctx context.Context, h HandleID) error
}
