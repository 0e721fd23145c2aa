// Package passthrough serves every filesystem operation by reissuing an
// equivalent call against a real backing directory tree, remapping file
// timestamps between the host epoch and a configured virtual epoch on
// the way through.
package passthrough

import (
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/example/epochfs/pkg/epoch"
	"github.com/example/epochfs/pkg/fs"
)

// maxPathLen bounds resolved underlying paths, mirroring PATH_MAX.
const maxPathLen = unix.PathMax

// FileSystem forwards operations to the tree rooted at a base directory.
// It is stateless apart from the handle table; all fields are read-only
// after construction, so concurrent callers need no coordination beyond
// the per-handle ownership the bridge already guarantees.
type FileSystem struct {
	base    string
	clock   *epoch.Translator
	handles *fs.HandleTable
}

// New creates a passthrough filesystem over basePath with the given
// virtual epoch year. basePath must name an existing directory.
func New(basePath string, epochYear int) (*FileSystem, error) {
	fi, err := os.Stat(basePath)
	if err != nil {
		return nil, fs.NewError("init", basePath, fs.FromErrno(err))
	}
	if !fi.IsDir() {
		return nil, fs.NewError("init", basePath, fs.ErrNotDir)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fs.NewError("init", basePath, err)
	}

	return &FileSystem{
		base:    absPath,
		clock:   epoch.NewTranslator(epochYear),
		handles: fs.NewHandleTable(),
	}, nil
}

// Epoch returns the translator in use.
func (p *FileSystem) Epoch() *epoch.Translator {
	return p.clock
}

// OpenHandles reports the number of handles currently open.
func (p *FileSystem) OpenHandles() int {
	return p.handles.Len()
}

// resolve joins the base directory and a virtual path. Plain
// concatenation, truncated at the maximum path length: no cleaning of
// relative segments and no traversal filtering — the backing filesystem
// supplies the final semantics.
func (p *FileSystem) resolve(path string) string {
	full := p.base + path
	if len(full) > maxPathLen {
		full = full[:maxPathLen]
	}
	return full
}

// file looks up an open file handle.
func (p *FileSystem) file(h fs.HandleID) (*os.File, error) {
	f, ok := p.handles.Get(h)
	if !ok {
		return nil, fs.ErrBadHandle
	}
	return f, nil
}

// convertStat translates a raw stat result into a FileInfo, shifting the
// three timestamps into virtual-epoch terms.
func (p *FileSystem) convertStat(st *unix.Stat_t) fs.FileInfo {
	var ft fs.FileType
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFDIR:
		ft = fs.FileTypeDirectory
	case unix.S_IFLNK:
		ft = fs.FileTypeSymlink
	case unix.S_IFBLK:
		ft = fs.FileTypeBlock
	case unix.S_IFCHR:
		ft = fs.FileTypeChar
	case unix.S_IFIFO:
		ft = fs.FileTypeFIFO
	case unix.S_IFSOCK:
		ft = fs.FileTypeSocket
	default:
		ft = fs.FileTypeRegular
	}

	return fs.FileInfo{
		Type:       ft,
		Mode:       fs.FileMode(st.Mode &^ uint32(unix.S_IFMT)),
		Ino:        st.Ino,
		Size:       st.Size,
		Uid:        st.Uid,
		Gid:        st.Gid,
		Nlink:      uint32(st.Nlink),
		Rdev:       uint64(st.Rdev),
		BlockSize:  uint32(st.Blksize),
		Blocks:     uint64(st.Blocks),
		AccessTime: p.virtualTime(st.Atim),
		ModifyTime: p.virtualTime(st.Mtim),
		ChangeTime: p.virtualTime(st.Ctim),
	}
}

func (p *FileSystem) virtualTime(ts unix.Timespec) time.Time {
	return time.Unix(p.clock.ToVirtual(int64(ts.Sec)), int64(ts.Nsec))
}

var _ fs.FileSystem = (*FileSystem)(nil)
