package passthrough

import (
	"context"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/example/epochfs/pkg/fs"
)

// Extended attribute operations. All four use the l-variants so a
// symlink's own attributes are addressed, never its target's.

// SetXAttr sets an extended attribute.
func (p *FileSystem) SetXAttr(ctx context.Context, path, name string, value []byte, flags int) error {
	if err := unix.Lsetxattr(p.resolve(path), name, value, flags); err != nil {
		return fs.NewError("SetXAttr", path, fs.FromErrno(err))
	}
	return nil
}

// GetXAttr retrieves an extended attribute value.
func (p *FileSystem) GetXAttr(ctx context.Context, path, name string) ([]byte, error) {
	full := p.resolve(path)

	// Size first, then fetch; retry if the value grew in between.
	for {
		sz, err := unix.Lgetxattr(full, name, nil)
		if err != nil {
			return nil, fs.NewError("GetXAttr", path, fs.FromErrno(err))
		}
		if sz == 0 {
			return []byte{}, nil
		}

		buf := make([]byte, sz)
		n, err := unix.Lgetxattr(full, name, buf)
		if err == unix.ERANGE {
			continue
		}
		if err != nil {
			return nil, fs.NewError("GetXAttr", path, fs.FromErrno(err))
		}
		return buf[:n], nil
	}
}

// ListXAttr lists extended attribute names.
func (p *FileSystem) ListXAttr(ctx context.Context, path string) ([]string, error) {
	full := p.resolve(path)

	for {
		sz, err := unix.Llistxattr(full, nil)
		if err != nil {
			return nil, fs.NewError("ListXAttr", path, fs.FromErrno(err))
		}
		if sz == 0 {
			return nil, nil
		}

		buf := make([]byte, sz)
		n, err := unix.Llistxattr(full, buf)
		if err == unix.ERANGE {
			continue
		}
		if err != nil {
			return nil, fs.NewError("ListXAttr", path, fs.FromErrno(err))
		}

		// The kernel hands back NUL-terminated names back to back.
		names := strings.Split(strings.TrimRight(string(buf[:n]), "\x00"), "\x00")
		return names, nil
	}
}

// RemoveXAttr removes an extended attribute.
func (p *FileSystem) RemoveXAttr(ctx context.Context, path, name string) error {
	if err := unix.Lremovexattr(p.resolve(path), name); err != nil {
		return fs.NewError("RemoveXAttr", path, fs.FromErrno(err))
	}
	return nil
}
