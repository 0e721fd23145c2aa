package passthrough

import (
	"context"
	"io"
	iofs "io/fs"
	"os"

	"github.com/example/epochfs/pkg/fs"
)

// readDirBatch is how many entries are pulled from the directory stream
// at a time while filling.
const readDirBatch = 128

// OpenDir opens a directory stream and registers it under a fresh
// handle.
func (p *FileSystem) OpenDir(ctx context.Context, path string) (fs.HandleID, error) {
	d, err := os.Open(p.resolve(path))
	if err != nil {
		return 0, fs.NewError("OpenDir", path, fs.FromErrno(err))
	}
	return p.handles.Add(d), nil
}

// ReadDir enumerates entries of an open directory stream from its
// current position, passing each to fill until fill signals stop or the
// stream runs out. The stream's own cursor is the only position kept, so
// a partially consumed stream resumes where it left off.
func (p *FileSystem) ReadDir(ctx context.Context, h fs.HandleID, fill func(fs.DirEntry) bool) error {
	d, err := p.file(h)
	if err != nil {
		return fs.NewError("ReadDir", "", err)
	}

	for {
		batch, err := d.ReadDir(readDirBatch)
		for _, ent := range batch {
			if !fill(fs.DirEntry{Name: ent.Name(), Type: entryType(ent.Type())}) {
				return nil
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fs.NewError("ReadDir", d.Name(), fs.FromErrno(err))
		}
	}
}

// ReleaseDir closes a directory stream and retires its handle.
func (p *FileSystem) ReleaseDir(ctx context.Context, h fs.HandleID) error {
	d, ok := p.handles.Remove(h)
	if !ok {
		return fs.NewError("ReleaseDir", "", fs.ErrBadHandle)
	}

	if err := d.Close(); err != nil {
		return fs.NewError("ReleaseDir", d.Name(), fs.FromErrno(err))
	}
	return nil
}

// entryType maps a directory entry's type bits to a FileType.
func entryType(m iofs.FileMode) fs.FileType {
	switch {
	case m.IsDir():
		return fs.FileTypeDirectory
	case m&iofs.ModeSymlink != 0:
		return fs.FileTypeSymlink
	case m&iofs.ModeCharDevice != 0:
		return fs.FileTypeChar
	case m&iofs.ModeDevice != 0:
		return fs.FileTypeBlock
	case m&iofs.ModeNamedPipe != 0:
		return fs.FileTypeFIFO
	case m&iofs.ModeSocket != 0:
		return fs.FileTypeSocket
	default:
		return fs.FileTypeRegular
	}
}
