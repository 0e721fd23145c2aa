package fuse

import (
	"context"
	"io"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/example/epochfs/internal/logger"
	vfs "github.com/example/epochfs/pkg/fs"
)

// offsetMax marks a kernel lock range that extends to end of file.
const offsetMax = 0x7fffffffffffffff

// FileHandle is an open file. It holds the dispatcher handle id and the
// node it was opened through, so release can drop the node's tracking
// entry.
type FileHandle struct {
	fs   vfs.FileSystem
	node *Node
	id   vfs.HandleID
	path string
}

// Read reads up to req.Size bytes at req.Offset. A short read at end of
// file is returned as-is.
func (fh *FileHandle) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	buf := make([]byte, req.Size)
	n, err := fh.fs.Read(ctx, fh.id, buf, req.Offset)
	if err != nil {
		return errnoErr(err)
	}
	resp.Data = buf[:n]
	return nil
}

// Write writes req.Data at req.Offset.
func (fh *FileHandle) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	n, err := fh.fs.Write(ctx, fh.id, req.Data, req.Offset)
	if err != nil {
		return errnoErr(err)
	}
	resp.Size = n
	return nil
}

// Flush pushes written data to stable storage on each descriptor close.
func (fh *FileHandle) Flush(ctx context.Context, req *fuse.FlushRequest) error {
	return errnoErr(fh.fs.Flush(ctx, fh.id))
}

// Release closes the file and forgets the handle.
func (fh *FileHandle) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	logger.Debug("release %s handle=%d", fh.path, fh.id)
	fh.node.untrack(fh.id)
	return errnoErr(fh.fs.Release(ctx, fh.id))
}

// Lock acquires a lock without blocking. Flock-style requests go to the
// open-file lock; everything else is a POSIX record lock.
func (fh *FileHandle) Lock(ctx context.Context, req *fuse.LockRequest) error {
	if req.LockFlags&fuse.LockFlock != 0 {
		return errnoErr(fh.fs.Flock(ctx, fh.id, flockOp(req.Lock.Type)|syscall.LOCK_NB))
	}
	lk := toFileLock(&req.Lock)
	return errnoErr(fh.fs.Lock(ctx, fh.id, syscall.F_SETLK, lk))
}

// LockWait acquires a lock, blocking until it can be granted.
func (fh *FileHandle) LockWait(ctx context.Context, req *fuse.LockWaitRequest) error {
	if req.LockFlags&fuse.LockFlock != 0 {
		return errnoErr(fh.fs.Flock(ctx, fh.id, flockOp(req.Lock.Type)))
	}
	lk := toFileLock(&req.Lock)
	return errnoErr(fh.fs.Lock(ctx, fh.id, syscall.F_SETLKW, lk))
}

// Unlock releases a held lock.
func (fh *FileHandle) Unlock(ctx context.Context, req *fuse.UnlockRequest) error {
	if req.LockFlags&fuse.LockFlock != 0 {
		return errnoErr(fh.fs.Flock(ctx, fh.id, syscall.LOCK_UN))
	}
	lk := toFileLock(&req.Lock)
	lk.Type = vfs.LockUnlock
	return errnoErr(fh.fs.Lock(ctx, fh.id, syscall.F_SETLK, lk))
}

// QueryLock reports the first lock that would block the given range.
func (fh *FileHandle) QueryLock(ctx context.Context, req *fuse.QueryLockRequest, resp *fuse.QueryLockResponse) error {
	lk := toFileLock(&req.Lock)
	if err := fh.fs.Lock(ctx, fh.id, syscall.F_GETLK, lk); err != nil {
		return errnoErr(err)
	}
	fromFileLock(lk, &resp.Lock)
	return nil
}

// flockOp maps a kernel lock type to a flock(2) operation.
func flockOp(t fuse.LockType) int {
	switch t {
	case fuse.LockRead:
		return syscall.LOCK_SH
	case fuse.LockWrite:
		return syscall.LOCK_EX
	default:
		return syscall.LOCK_UN
	}
}

// toFileLock converts the kernel's inclusive [start, end] range to the
// start+len form fcntl uses. An end at offsetMax means "to EOF", which
// fcntl spells as length zero.
func toFileLock(l *fuse.FileLock) *vfs.FileLock {
	lk := &vfs.FileLock{
		Type:   int16(l.Type),
		Whence: io.SeekStart,
		Start:  int64(l.Start),
		PID:    int32(l.PID),
	}
	if l.End < offsetMax {
		lk.Len = int64(l.End-l.Start) + 1
	}
	return lk
}

// fromFileLock is the inverse conversion, for lock queries.
func fromFileLock(lk *vfs.FileLock, l *fuse.FileLock) {
	l.Type = fuse.LockType(lk.Type)
	l.Start = uint64(lk.Start)
	if lk.Len == 0 {
		l.End = offsetMax
	} else {
		l.End = uint64(lk.Start + lk.Len - 1)
	}
	l.PID = int32(lk.PID)
}

// DirHandle is an open directory stream.
type DirHandle struct {
	fs   vfs.FileSystem
	id   vfs.HandleID
	path string
}

// ReadDirAll drains the directory stream.
func (dh *DirHandle) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	var entries []fuse.Dirent
	err := dh.fs.ReadDir(ctx, dh.id, func(e vfs.DirEntry) bool {
		entries = append(entries, fuse.Dirent{
			Name: e.Name,
			Type: direntType(e.Type),
		})
		return true
	})
	if err != nil {
		return nil, errnoErr(err)
	}
	return entries, nil
}

// Release closes the directory stream.
func (dh *DirHandle) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	return errnoErr(dh.fs.ReleaseDir(ctx, dh.id))
}

// direntType maps dispatcher entry types to kernel dirent types.
func direntType(t vfs.FileType) fuse.DirentType {
	switch t {
	case vfs.FileTypeRegular:
		return fuse.DT_File
	case vfs.FileTypeDirectory:
		return fuse.DT_Dir
	case vfs.FileTypeSymlink:
		return fuse.DT_Link
	case vfs.FileTypeBlock:
		return fuse.DT_Block
	case vfs.FileTypeChar:
		return fuse.DT_Char
	case vfs.FileTypeFIFO:
		return fuse.DT_FIFO
	case vfs.FileTypeSocket:
		return fuse.DT_Socket
	default:
		return fuse.DT_Unknown
	}
}

var (
	_ fusefs.Handle             = (*FileHandle)(nil)
	_ fusefs.HandleReader       = (*FileHandle)(nil)
	_ fusefs.HandleWriter       = (*FileHandle)(nil)
	_ fusefs.HandleFlusher      = (*FileHandle)(nil)
	_ fusefs.HandleReleaser     = (*FileHandle)(nil)
	_ fusefs.HandleLocker       = (*FileHandle)(nil)
	_ fusefs.HandleReadDirAller = (*DirHandle)(nil)
	_ fusefs.HandleReleaser     = (*DirHandle)(nil)
)
