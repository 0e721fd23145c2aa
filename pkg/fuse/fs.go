// Package fuse bridges the kernel FUSE protocol to the FileSystem
// dispatcher. It owns no semantics of its own: requests are decoded,
// forwarded, and results translated back to native errno codes.
package fuse

import (
	"context"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	vfs "github.com/example/epochfs/pkg/fs"
)

// FS implements the FUSE filesystem interface over a dispatcher.
type FS struct {
	fsys vfs.FileSystem
}

// New creates a FUSE filesystem serving fsys.
func New(fsys vfs.FileSystem) *FS {
	return &FS{fsys: fsys}
}

// Root returns the root directory of the filesystem.
func (f *FS) Root() (fusefs.Node, error) {
	return &Node{fs: f.fsys, path: "/"}, nil
}

// Statfs reports statistics of the filesystem backing the mount root.
func (f *FS) Statfs(ctx context.Context, req *fuse.StatfsRequest, resp *fuse.StatfsResponse) error {
	st, err := f.fsys.StatFS(ctx, "/")
	if err != nil {
		return errnoErr(err)
	}

	resp.Blocks = st.TotalBlocks
	resp.Bfree = st.FreeBlocks
	resp.Bavail = st.AvailBlocks
	resp.Files = st.TotalFiles
	resp.Ffree = st.FreeFiles
	resp.Bsize = st.BlockSize
	resp.Frsize = st.BlockSize
	resp.Namelen = st.NameMaxLength
	return nil
}

var (
	_ fusefs.FS         = (*FS)(nil)
	_ fusefs.FSStatfser = (*FS)(nil)
)
