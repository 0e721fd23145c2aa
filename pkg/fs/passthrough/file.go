package passthrough

import (
	"context"
	"os"

	"golang.org/x/sys/unix"

	"github.com/example/epochfs/pkg/fs"
)

// Open opens an existing file with the caller's flags, verbatim, and
// registers the descriptor under a fresh handle.
func (p *FileSystem) Open(ctx context.Context, path string, flags int) (fs.HandleID, error) {
	f, err := os.OpenFile(p.resolve(path), flags, 0)
	if err != nil {
		return 0, fs.NewError("Open", path, fs.FromErrno(err))
	}
	return p.handles.Add(f), nil
}

// Create creates a file with the caller's flags and mode and returns the
// handle of the open file.
func (p *FileSystem) Create(ctx context.Context, path string, flags int, mode uint32) (fs.HandleID, error) {
	f, err := os.OpenFile(p.resolve(path), flags|os.O_CREATE, os.FileMode(mode))
	if err != nil {
		return 0, fs.NewError("Create", path, fs.FromErrno(err))
	}
	return p.handles.Add(f), nil
}

// Read reads up to len(buf) bytes at offset. Positional: the handle's
// own file offset is untouched.
func (p *FileSystem) Read(ctx context.Context, h fs.HandleID, buf []byte, offset int64) (int, error) {
	f, err := p.file(h)
	if err != nil {
		return 0, fs.NewError("Read", "", err)
	}

	n, err := unix.Pread(int(f.Fd()), buf, offset)
	if err != nil {
		return 0, fs.NewError("Read", f.Name(), fs.FromErrno(err))
	}
	return n, nil
}

// Write writes data at offset. Positional, like Read.
func (p *FileSystem) Write(ctx context.Context, h fs.HandleID, data []byte, offset int64) (int, error) {
	f, err := p.file(h)
	if err != nil {
		return 0, fs.NewError("Write", "", err)
	}

	n, err := unix.Pwrite(int(f.Fd()), data, offset)
	if err != nil {
		return 0, fs.NewError("Write", f.Name(), fs.FromErrno(err))
	}
	return n, nil
}

// FGetAttr retrieves attributes through an open handle, timestamps in
// virtual-epoch terms.
func (p *FileSystem) FGetAttr(ctx context.Context, h fs.HandleID) (fs.FileInfo, error) {
	f, err := p.file(h)
	if err != nil {
		return fs.FileInfo{}, fs.NewError("FGetAttr", "", err)
	}

	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return fs.FileInfo{}, fs.NewError("FGetAttr", f.Name(), fs.FromErrno(err))
	}
	return p.convertStat(&st), nil
}

// FTruncate sets the size of an open file.
func (p *FileSystem) FTruncate(ctx context.Context, h fs.HandleID, size int64) error {
	f, err := p.file(h)
	if err != nil {
		return fs.NewError("FTruncate", "", err)
	}

	if err := unix.Ftruncate(int(f.Fd()), size); err != nil {
		return fs.NewError("FTruncate", f.Name(), fs.FromErrno(err))
	}
	return nil
}

// Flush pushes buffered data and metadata to storage. The reference
// implementation issues fdatasync followed by fsync; kept as-is.
func (p *FileSystem) Flush(ctx context.Context, h fs.HandleID) error {
	f, err := p.file(h)
	if err != nil {
		return fs.NewError("Flush", "", err)
	}

	fd := int(f.Fd())
	if err := unix.Fdatasync(fd); err != nil {
		return fs.NewError("Flush", f.Name(), fs.FromErrno(err))
	}
	if err := unix.Fsync(fd); err != nil {
		return fs.NewError("Flush", f.Name(), fs.FromErrno(err))
	}
	return nil
}

// Fsync commits file state to storage; with datasync set, only the data
// and the metadata needed to read it back.
func (p *FileSystem) Fsync(ctx context.Context, h fs.HandleID, datasync bool) error {
	f, err := p.file(h)
	if err != nil {
		return fs.NewError("Fsync", "", err)
	}

	fd := int(f.Fd())
	if datasync {
		err = unix.Fdatasync(fd)
	} else {
		err = unix.Fsync(fd)
	}
	if err != nil {
		return fs.NewError("Fsync", f.Name(), fs.FromErrno(err))
	}
	return nil
}

// Flock applies or removes an advisory open-file lock.
func (p *FileSystem) Flock(ctx context.Context, h fs.HandleID, op int) error {
	f, err := p.file(h)
	if err != nil {
		return fs.NewError("Flock", "", err)
	}

	if err := unix.Flock(int(f.Fd()), op); err != nil {
		return fs.NewError("Flock", f.Name(), fs.FromErrno(err))
	}
	return nil
}

// Fallocate manipulates file space directly.
func (p *FileSystem) Fallocate(ctx context.Context, h fs.HandleID, mode uint32, offset, length int64) error {
	f, err := p.file(h)
	if err != nil {
		return fs.NewError("Fallocate", "", err)
	}

	if err := unix.Fallocate(int(f.Fd()), mode, offset, length); err != nil {
		return fs.NewError("Fallocate", f.Name(), fs.FromErrno(err))
	}
	return nil
}

// Lock performs a POSIX record-lock command on an open file. For
// queries the FileLock is updated in place with the conflicting lock.
func (p *FileSystem) Lock(ctx context.Context, h fs.HandleID, cmd int, lk *fs.FileLock) error {
	f, err := p.file(h)
	if err != nil {
		return fs.NewError("Lock", "", err)
	}

	flk := unix.Flock_t{
		Type:   lk.Type,
		Whence: lk.Whence,
		Start:  lk.Start,
		Len:    lk.Len,
		Pid:    lk.PID,
	}
	if err := unix.FcntlFlock(f.Fd(), cmd, &flk); err != nil {
		return fs.NewError("Lock", f.Name(), fs.FromErrno(err))
	}

	lk.Type = flk.Type
	lk.Whence = flk.Whence
	lk.Start = flk.Start
	lk.Len = flk.Len
	lk.PID = flk.Pid
	return nil
}

// Release closes an open file and retires its handle.
func (p *FileSystem) Release(ctx context.Context, h fs.HandleID) error {
	f, ok := p.handles.Remove(h)
	if !ok {
		return fs.NewError("Release", "", fs.ErrBadHandle)
	}

	if err := f.Close(); err != nil {
		return fs.NewError("Release", f.Name(), fs.FromErrno(err))
	}
	return nil
}
