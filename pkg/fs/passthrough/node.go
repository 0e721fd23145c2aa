package passthrough

import (
	"context"
	"time"

	"golang.org/x/sys/unix"

	"github.com/example/epochfs/pkg/fs"
)

// StatFS retrieves statistics of the filesystem backing a path.
func (p *FileSystem) StatFS(ctx context.Context, path string) (fs.FSStat, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(p.resolve(path), &st); err != nil {
		return fs.FSStat{}, fs.NewError("StatFS", path, fs.FromErrno(err))
	}

	return fs.FSStat{
		BlockSize:     uint32(st.Bsize),
		TotalBlocks:   st.Blocks,
		FreeBlocks:    st.Bfree,
		AvailBlocks:   st.Bavail,
		TotalFiles:    st.Files,
		FreeFiles:     st.Ffree,
		NameMaxLength: uint32(st.Namelen),
	}, nil
}

// GetAttr retrieves attributes for the file at the specified path. The
// final path component is not followed if it is a symlink. Timestamps
// come back in virtual-epoch terms.
func (p *FileSystem) GetAttr(ctx context.Context, path string) (fs.FileInfo, error) {
	var st unix.Stat_t
	if err := unix.Lstat(p.resolve(path), &st); err != nil {
		return fs.FileInfo{}, fs.NewError("GetAttr", path, fs.FromErrno(err))
	}
	return p.convertStat(&st), nil
}

// Access checks accessibility of a path for the given mask.
func (p *FileSystem) Access(ctx context.Context, path string, mask uint32) error {
	if err := unix.Access(p.resolve(path), mask); err != nil {
		return fs.NewError("Access", path, fs.FromErrno(err))
	}
	return nil
}

// Readlink reads the target of a symbolic link.
func (p *FileSystem) Readlink(ctx context.Context, path string) (string, error) {
	buf := make([]byte, maxPathLen)
	n, err := unix.Readlink(p.resolve(path), buf)
	if err != nil {
		return "", fs.NewError("Readlink", path, fs.FromErrno(err))
	}
	return string(buf[:n]), nil
}

// Mknod creates a filesystem node.
func (p *FileSystem) Mknod(ctx context.Context, path string, mode uint32, dev uint64) error {
	if err := unix.Mknod(p.resolve(path), mode, int(dev)); err != nil {
		return fs.NewError("Mknod", path, fs.FromErrno(err))
	}
	return nil
}

// Mkdir creates a directory.
func (p *FileSystem) Mkdir(ctx context.Context, path string, mode uint32) error {
	if err := unix.Mkdir(p.resolve(path), mode); err != nil {
		return fs.NewError("Mkdir", path, fs.FromErrno(err))
	}
	return nil
}

// Symlink creates a symbolic link at link pointing to target. The
// target is stored verbatim; only the link path is resolved.
func (p *FileSystem) Symlink(ctx context.Context, target, link string) error {
	if err := unix.Symlink(target, p.resolve(link)); err != nil {
		return fs.NewError("Symlink", link, fs.FromErrno(err))
	}
	return nil
}

// Unlink removes a file.
func (p *FileSystem) Unlink(ctx context.Context, path string) error {
	if err := unix.Unlink(p.resolve(path)); err != nil {
		return fs.NewError("Unlink", path, fs.FromErrno(err))
	}
	return nil
}

// Rmdir removes an empty directory.
func (p *FileSystem) Rmdir(ctx context.Context, path string) error {
	if err := unix.Rmdir(p.resolve(path)); err != nil {
		return fs.NewError("Rmdir", path, fs.FromErrno(err))
	}
	return nil
}

// Rename moves oldpath to newpath.
func (p *FileSystem) Rename(ctx context.Context, oldpath, newpath string) error {
	if err := unix.Rename(p.resolve(oldpath), p.resolve(newpath)); err != nil {
		return fs.NewError("Rename", oldpath, fs.FromErrno(err))
	}
	return nil
}

// Link creates a hard link at newpath referring to oldpath.
func (p *FileSystem) Link(ctx context.Context, oldpath, newpath string) error {
	if err := unix.Link(p.resolve(oldpath), p.resolve(newpath)); err != nil {
		return fs.NewError("Link", oldpath, fs.FromErrno(err))
	}
	return nil
}

// Chmod changes the permission bits of a file.
func (p *FileSystem) Chmod(ctx context.Context, path string, mode uint32) error {
	if err := unix.Chmod(p.resolve(path), mode); err != nil {
		return fs.NewError("Chmod", path, fs.FromErrno(err))
	}
	return nil
}

// Chown changes the owner and group of a file.
func (p *FileSystem) Chown(ctx context.Context, path string, uid, gid uint32) error {
	if err := unix.Chown(p.resolve(path), int(uid), int(gid)); err != nil {
		return fs.NewError("Chown", path, fs.FromErrno(err))
	}
	return nil
}

// Truncate sets the size of the file at path.
func (p *FileSystem) Truncate(ctx context.Context, path string, size int64) error {
	if err := unix.Truncate(p.resolve(path), size); err != nil {
		return fs.NewError("Truncate", path, fs.FromErrno(err))
	}
	return nil
}

// UTime sets access and modify times from virtual-epoch values, shifting
// them to host-epoch terms before they reach storage. One-second
// granularity, matching utime(2).
func (p *FileSystem) UTime(ctx context.Context, path string, atime, mtime time.Time) error {
	tv := []unix.Timeval{
		{Sec: p.clock.ToHost(atime.Unix())},
		{Sec: p.clock.ToHost(mtime.Unix())},
	}
	if err := unix.Utimes(p.resolve(path), tv); err != nil {
		return fs.NewError("UTime", path, fs.FromErrno(err))
	}
	return nil
}
