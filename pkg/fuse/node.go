package fuse

import (
	"context"
	"os"
	"sync"
	"syscall"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/example/epochfs/internal/logger"
	vfs "github.com/example/epochfs/pkg/fs"
)

// Node represents a single path in the mounted tree. Nodes carry no
// cached attributes; every request goes to the dispatcher. A node also
// remembers which of its handles are open, because the kernel addresses
// fsync and size changes at the node even when a descriptor exists.
type Node struct {
	fs   vfs.FileSystem
	path string

	mu   sync.Mutex
	open []vfs.HandleID
}

func (n *Node) childPath(name string) string {
	if n.path == "/" {
		return "/" + name
	}
	return n.path + "/" + name
}

func (n *Node) track(h vfs.HandleID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.open = append(n.open, h)
}

func (n *Node) untrack(h vfs.HandleID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, id := range n.open {
		if id == h {
			n.open = append(n.open[:i], n.open[i+1:]...)
			return
		}
	}
}

// liveHandle returns the most recently opened handle still open on this
// node.
func (n *Node) liveHandle() (vfs.HandleID, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.open) == 0 {
		return 0, false
	}
	return n.open[len(n.open)-1], true
}

// Attr returns the node's attributes. An open handle is preferred so
// that unlinked-but-open files keep answering.
func (n *Node) Attr(ctx context.Context, a *fuse.Attr) error {
	var info vfs.FileInfo
	var err error
	if h, ok := n.liveHandle(); ok {
		info, err = n.fs.FGetAttr(ctx, h)
	} else {
		info, err = n.fs.GetAttr(ctx, n.path)
	}
	if err != nil {
		return errnoErr(err)
	}
	fillAttr(a, info)
	return nil
}

// Access checks real-credential accessibility.
func (n *Node) Access(ctx context.Context, req *fuse.AccessRequest) error {
	return errnoErr(n.fs.Access(ctx, n.path, req.Mask))
}

// Lookup resolves a name within this directory.
func (n *Node) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	child := n.childPath(name)
	if _, err := n.fs.GetAttr(ctx, child); err != nil {
		return nil, errnoErr(err)
	}
	return &Node{fs: n.fs, path: child}, nil
}

// Setattr applies the requested attribute changes one class at a time,
// in the order the native calls would run: mode, ownership, size,
// times. The first failure aborts the rest.
func (n *Node) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	if req.Valid.Mode() {
		if err := n.fs.Chmod(ctx, n.path, unixPerm(req.Mode)); err != nil {
			return errnoErr(err)
		}
	}

	if req.Valid.Uid() || req.Valid.Gid() {
		uid, gid := req.Uid, req.Gid
		if !req.Valid.Uid() || !req.Valid.Gid() {
			info, err := n.fs.GetAttr(ctx, n.path)
			if err != nil {
				return errnoErr(err)
			}
			if !req.Valid.Uid() {
				uid = info.Uid
			}
			if !req.Valid.Gid() {
				gid = info.Gid
			}
		}
		if err := n.fs.Chown(ctx, n.path, uid, gid); err != nil {
			return errnoErr(err)
		}
	}

	if req.Valid.Size() {
		var err error
		if h, ok := n.liveHandle(); ok && req.Valid.Handle() {
			err = n.fs.FTruncate(ctx, h, int64(req.Size))
		} else {
			err = n.fs.Truncate(ctx, n.path, int64(req.Size))
		}
		if err != nil {
			return errnoErr(err)
		}
	}

	if req.Valid.Atime() || req.Valid.Mtime() || req.Valid.AtimeNow() || req.Valid.MtimeNow() {
		atime, mtime, err := n.setattrTimes(ctx, req)
		if err != nil {
			return errnoErr(err)
		}
		if err := n.fs.UTime(ctx, n.path, atime, mtime); err != nil {
			return errnoErr(err)
		}
	}

	info, err := n.fs.GetAttr(ctx, n.path)
	if err != nil {
		return errnoErr(err)
	}
	fillAttr(&resp.Attr, info)
	return nil
}

// setattrTimes resolves the atime/mtime pair for a partial update. The
// storage call always sets both, so a missing side is filled from the
// current attributes; "now" markers resolve at this point.
func (n *Node) setattrTimes(ctx context.Context, req *fuse.SetattrRequest) (time.Time, time.Time, error) {
	atime, mtime := req.Atime, req.Mtime
	now := time.Now()
	if req.Valid.AtimeNow() {
		atime = now
	}
	if req.Valid.MtimeNow() {
		mtime = now
	}

	haveAtime := req.Valid.Atime() || req.Valid.AtimeNow()
	haveMtime := req.Valid.Mtime() || req.Valid.MtimeNow()
	if !haveAtime || !haveMtime {
		info, err := n.fs.GetAttr(ctx, n.path)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if !haveAtime {
			atime = info.AccessTime
		}
		if !haveMtime {
			mtime = info.ModifyTime
		}
	}
	return atime, mtime, nil
}

// Mkdir creates a directory.
func (n *Node) Mkdir(ctx context.Context, req *fuse.MkdirRequest) (fusefs.Node, error) {
	child := n.childPath(req.Name)
	if err := n.fs.Mkdir(ctx, child, unixPerm(req.Mode)); err != nil {
		return nil, errnoErr(err)
	}
	return &Node{fs: n.fs, path: child}, nil
}

// Create creates and opens a file in one step.
func (n *Node) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fusefs.Node, fusefs.Handle, error) {
	child := n.childPath(req.Name)
	h, err := n.fs.Create(ctx, child, int(req.Flags), unixPerm(req.Mode))
	if err != nil {
		return nil, nil, errnoErr(err)
	}

	logger.Debug("create %s handle=%d", child, h)
	cn := &Node{fs: n.fs, path: child}
	cn.track(h)
	return cn, &FileHandle{fs: n.fs, node: cn, id: h, path: child}, nil
}

// Remove unlinks a file or removes an empty directory.
func (n *Node) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	child := n.childPath(req.Name)
	if req.Dir {
		return errnoErr(n.fs.Rmdir(ctx, child))
	}
	return errnoErr(n.fs.Unlink(ctx, child))
}

// Rename moves an entry from this directory into newDir.
func (n *Node) Rename(ctx context.Context, req *fuse.RenameRequest, newDir fusefs.Node) error {
	nd, ok := newDir.(*Node)
	if !ok {
		return syscall.EINVAL
	}
	return errnoErr(n.fs.Rename(ctx, n.childPath(req.OldName), nd.childPath(req.NewName)))
}

// Symlink creates a symbolic link. The target string is stored
// verbatim.
func (n *Node) Symlink(ctx context.Context, req *fuse.SymlinkRequest) (fusefs.Node, error) {
	link := n.childPath(req.NewName)
	if err := n.fs.Symlink(ctx, req.Target, link); err != nil {
		return nil, errnoErr(err)
	}
	return &Node{fs: n.fs, path: link}, nil
}

// Readlink reads a symbolic link's target.
func (n *Node) Readlink(ctx context.Context, req *fuse.ReadlinkRequest) (string, error) {
	target, err := n.fs.Readlink(ctx, n.path)
	if err != nil {
		return "", errnoErr(err)
	}
	return target, nil
}

// Link creates a hard link to old under this directory.
func (n *Node) Link(ctx context.Context, req *fuse.LinkRequest, old fusefs.Node) (fusefs.Node, error) {
	on, ok := old.(*Node)
	if !ok {
		return nil, syscall.EINVAL
	}
	newPath := n.childPath(req.NewName)
	if err := n.fs.Link(ctx, on.path, newPath); err != nil {
		return nil, errnoErr(err)
	}
	return &Node{fs: n.fs, path: newPath}, nil
}

// Mknod creates a filesystem node.
func (n *Node) Mknod(ctx context.Context, req *fuse.MknodRequest) (fusefs.Node, error) {
	child := n.childPath(req.Name)
	if err := n.fs.Mknod(ctx, child, unixMode(req.Mode), uint64(req.Rdev)); err != nil {
		return nil, errnoErr(err)
	}
	return &Node{fs: n.fs, path: child}, nil
}

// Fsync commits file state through one of the node's open handles.
func (n *Node) Fsync(ctx context.Context, req *fuse.FsyncRequest) error {
	if req.Dir {
		return syscall.ENOSYS
	}
	h, ok := n.liveHandle()
	if !ok {
		return syscall.EBADF
	}
	datasync := req.Flags&1 != 0
	return errnoErr(n.fs.Fsync(ctx, h, datasync))
}

// Open opens the node, returning a directory stream or a file handle.
func (n *Node) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	if req.Dir {
		h, err := n.fs.OpenDir(ctx, n.path)
		if err != nil {
			return nil, errnoErr(err)
		}
		return &DirHandle{fs: n.fs, id: h, path: n.path}, nil
	}

	h, err := n.fs.Open(ctx, n.path, int(req.Flags))
	if err != nil {
		return nil, errnoErr(err)
	}
	logger.Debug("open %s flags=%#x handle=%d", n.path, int(req.Flags), h)
	n.track(h)
	return &FileHandle{fs: n.fs, node: n, id: h, path: n.path}, nil
}

// Getxattr retrieves an extended attribute.
func (n *Node) Getxattr(ctx context.Context, req *fuse.GetxattrRequest, resp *fuse.GetxattrResponse) error {
	value, err := n.fs.GetXAttr(ctx, n.path, req.Name)
	if err != nil {
		return errnoErr(err)
	}
	resp.Xattr = value
	return nil
}

// Setxattr sets an extended attribute.
func (n *Node) Setxattr(ctx context.Context, req *fuse.SetxattrRequest) error {
	return errnoErr(n.fs.SetXAttr(ctx, n.path, req.Name, req.Xattr, int(req.Flags)))
}

// Listxattr lists extended attribute names.
func (n *Node) Listxattr(ctx context.Context, req *fuse.ListxattrRequest, resp *fuse.ListxattrResponse) error {
	names, err := n.fs.ListXAttr(ctx, n.path)
	if err != nil {
		return errnoErr(err)
	}
	resp.Append(names...)
	return nil
}

// Removexattr removes an extended attribute.
func (n *Node) Removexattr(ctx context.Context, req *fuse.RemovexattrRequest) error {
	return errnoErr(n.fs.RemoveXAttr(ctx, n.path, req.Name))
}

// fillAttr copies dispatcher attributes into the kernel reply.
func fillAttr(a *fuse.Attr, info vfs.FileInfo) {
	a.Inode = info.Ino
	a.Size = uint64(info.Size)
	a.Blocks = info.Blocks
	a.Atime = info.AccessTime
	a.Mtime = info.ModifyTime
	a.Ctime = info.ChangeTime
	a.Mode = osMode(info)
	a.Nlink = info.Nlink
	a.Uid = info.Uid
	a.Gid = info.Gid
	a.Rdev = uint32(info.Rdev)
	a.BlockSize = info.BlockSize
}

// osMode rebuilds an os.FileMode from the dispatcher's type and
// permission split.
func osMode(info vfs.FileInfo) os.FileMode {
	m := os.FileMode(info.Mode & vfs.ModeMask)
	switch info.Type {
	case vfs.FileTypeDirectory:
		m |= os.ModeDir
	case vfs.FileTypeSymlink:
		m |= os.ModeSymlink
	case vfs.FileTypeBlock:
		m |= os.ModeDevice
	case vfs.FileTypeChar:
		m |= os.ModeDevice | os.ModeCharDevice
	case vfs.FileTypeFIFO:
		m |= os.ModeNamedPipe
	case vfs.FileTypeSocket:
		m |= os.ModeSocket
	}
	if info.Mode&vfs.ModeSetUID != 0 {
		m |= os.ModeSetuid
	}
	if info.Mode&vfs.ModeSetGID != 0 {
		m |= os.ModeSetgid
	}
	if info.Mode&vfs.ModeSticky != 0 {
		m |= os.ModeSticky
	}
	return m
}

// unixPerm converts permission and special bits to native mode bits,
// dropping any type bits.
func unixPerm(m os.FileMode) uint32 {
	mode := uint32(m.Perm())
	if m&os.ModeSetuid != 0 {
		mode |= syscall.S_ISUID
	}
	if m&os.ModeSetgid != 0 {
		mode |= syscall.S_ISGID
	}
	if m&os.ModeSticky != 0 {
		mode |= syscall.S_ISVTX
	}
	return mode
}

// unixMode converts a full os.FileMode, type bits included, to native
// mode bits for mknod.
func unixMode(m os.FileMode) uint32 {
	mode := unixPerm(m)
	switch {
	case m&os.ModeNamedPipe != 0:
		mode |= syscall.S_IFIFO
	case m&os.ModeSocket != 0:
		mode |= syscall.S_IFSOCK
	case m&os.ModeCharDevice != 0:
		mode |= syscall.S_IFCHR
	case m&os.ModeDevice != 0:
		mode |= syscall.S_IFBLK
	case m&os.ModeDir != 0:
		mode |= syscall.S_IFDIR
	case m&os.ModeSymlink != 0:
		mode |= syscall.S_IFLNK
	default:
		mode |= syscall.S_IFREG
	}
	return mode
}

var (
	_ fusefs.Node               = (*Node)(nil)
	_ fusefs.NodeAccesser       = (*Node)(nil)
	_ fusefs.NodeStringLookuper = (*Node)(nil)
	_ fusefs.NodeSetattrer      = (*Node)(nil)
	_ fusefs.NodeMkdirer        = (*Node)(nil)
	_ fusefs.NodeCreater        = (*Node)(nil)
	_ fusefs.NodeRemover        = (*Node)(nil)
	_ fusefs.NodeRenamer        = (*Node)(nil)
	_ fusefs.NodeSymlinker      = (*Node)(nil)
	_ fusefs.NodeReadlinker     = (*Node)(nil)
	_ fusefs.NodeLinker         = (*Node)(nil)
	_ fusefs.NodeMknoder        = (*Node)(nil)
	_ fusefs.NodeFsyncer        = (*Node)(nil)
	_ fusefs.NodeOpener         = (*Node)(nil)
	_ fusefs.NodeGetxattrer     = (*Node)(nil)
	_ fusefs.NodeSetxattrer     = (*Node)(nil)
	_ fusefs.NodeListxattrer    = (*Node)(nil)
	_ fusefs.NodeRemovexattrer  = (*Node)(nil)
)
