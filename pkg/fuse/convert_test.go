package fuse

import (
	"errors"
	"os"
	"syscall"
	"testing"

	"bazil.org/fuse"
	"github.com/stretchr/testify/assert"

	vfs "github.com/example/epochfs/pkg/fs"
)

func TestOSMode(t *testing.T) {
	tests := []struct {
		name string
		info vfs.FileInfo
		want os.FileMode
	}{
		{"regular", vfs.FileInfo{Type: vfs.FileTypeRegular, Mode: 0644}, 0644},
		{"directory", vfs.FileInfo{Type: vfs.FileTypeDirectory, Mode: 0755}, os.ModeDir | 0755},
		{"symlink", vfs.FileInfo{Type: vfs.FileTypeSymlink, Mode: 0777}, os.ModeSymlink | 0777},
		{"fifo", vfs.FileInfo{Type: vfs.FileTypeFIFO, Mode: 0600}, os.ModeNamedPipe | 0600},
		{"socket", vfs.FileInfo{Type: vfs.FileTypeSocket, Mode: 0600}, os.ModeSocket | 0600},
		{"block", vfs.FileInfo{Type: vfs.FileTypeBlock, Mode: 0660}, os.ModeDevice | 0660},
		{"char", vfs.FileInfo{Type: vfs.FileTypeChar, Mode: 0660}, os.ModeDevice | os.ModeCharDevice | 0660},
		{"setuid", vfs.FileInfo{Type: vfs.FileTypeRegular, Mode: 04755}, os.ModeSetuid | 0755},
		{"setgid sticky", vfs.FileInfo{Type: vfs.FileTypeDirectory, Mode: 03777}, os.ModeDir | os.ModeSetgid | os.ModeSticky | 0777},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, osMode(tt.info))
		})
	}
}

func TestUnixPerm(t *testing.T) {
	assert.Equal(t, uint32(0644), unixPerm(0644))
	assert.Equal(t, uint32(syscall.S_ISUID|0755), unixPerm(os.ModeSetuid|0755))
	assert.Equal(t, uint32(syscall.S_ISGID|syscall.S_ISVTX|0777), unixPerm(os.ModeSetgid|os.ModeSticky|0777))
	// Type bits never leak into the permission word.
	assert.Equal(t, uint32(0755), unixPerm(os.ModeDir|0755))
}

func TestUnixMode(t *testing.T) {
	assert.Equal(t, uint32(syscall.S_IFREG|0644), unixMode(0644))
	assert.Equal(t, uint32(syscall.S_IFIFO|0600), unixMode(os.ModeNamedPipe|0600))
	assert.Equal(t, uint32(syscall.S_IFSOCK|0600), unixMode(os.ModeSocket|0600))
	assert.Equal(t, uint32(syscall.S_IFCHR|0660), unixMode(os.ModeDevice|os.ModeCharDevice|0660))
	assert.Equal(t, uint32(syscall.S_IFBLK|0660), unixMode(os.ModeDevice|0660))
	assert.Equal(t, uint32(syscall.S_IFDIR|0755), unixMode(os.ModeDir|0755))
}

func TestDirentType(t *testing.T) {
	assert.Equal(t, fuse.DT_File, direntType(vfs.FileTypeRegular))
	assert.Equal(t, fuse.DT_Dir, direntType(vfs.FileTypeDirectory))
	assert.Equal(t, fuse.DT_Link, direntType(vfs.FileTypeSymlink))
	assert.Equal(t, fuse.DT_FIFO, direntType(vfs.FileTypeFIFO))
	assert.Equal(t, fuse.DT_Socket, direntType(vfs.FileTypeSocket))
	assert.Equal(t, fuse.DT_Block, direntType(vfs.FileTypeBlock))
	assert.Equal(t, fuse.DT_Char, direntType(vfs.FileTypeChar))
}

func TestFileLockToEOF(t *testing.T) {
	in := fuse.FileLock{Start: 100, End: offsetMax, Type: fuse.LockWrite}
	lk := toFileLock(&in)

	assert.Equal(t, vfs.LockWrite, lk.Type)
	assert.Equal(t, int64(100), lk.Start)
	assert.Equal(t, int64(0), lk.Len)

	var out fuse.FileLock
	fromFileLock(lk, &out)
	assert.Equal(t, in.Start, out.Start)
	assert.Equal(t, uint64(offsetMax), out.End)
	assert.Equal(t, in.Type, out.Type)
}

func TestFileLockByteRange(t *testing.T) {
	// A one-byte lock at offset zero has an inclusive end of zero.
	in := fuse.FileLock{Start: 0, End: 0, Type: fuse.LockRead}
	lk := toFileLock(&in)

	assert.Equal(t, int64(0), lk.Start)
	assert.Equal(t, int64(1), lk.Len)

	var out fuse.FileLock
	fromFileLock(lk, &out)
	assert.Equal(t, uint64(0), out.Start)
	assert.Equal(t, uint64(0), out.End)
}

func TestFlockOp(t *testing.T) {
	assert.Equal(t, syscall.LOCK_SH, flockOp(fuse.LockRead))
	assert.Equal(t, syscall.LOCK_EX, flockOp(fuse.LockWrite))
	assert.Equal(t, syscall.LOCK_UN, flockOp(fuse.LockUnlock))
}

func TestErrnoErr(t *testing.T) {
	assert.NoError(t, errnoErr(nil))

	err := errnoErr(vfs.NewError("open", "/x", vfs.ErrNotExist))
	assert.Equal(t, syscall.ENOENT, err)

	// Errors without a code pass through for default handling.
	plain := errors.New("not an errno")
	assert.Equal(t, plain, errnoErr(plain))
}

func TestChildPath(t *testing.T) {
	root := &Node{path: "/"}
	assert.Equal(t, "/a", root.childPath("a"))

	nested := &Node{path: "/a/b"}
	assert.Equal(t, "/a/b/c", nested.childPath("c"))
}

func TestHandleTracking(t *testing.T) {
	n := &Node{path: "/f"}

	_, ok := n.liveHandle()
	assert.False(t, ok)

	n.track(1)
	n.track(2)
	h, ok := n.liveHandle()
	assert.True(t, ok)
	assert.Equal(t, vfs.HandleID(2), h)

	n.untrack(2)
	h, ok = n.liveHandle()
	assert.True(t, ok)
	assert.Equal(t, vfs.HandleID(1), h)

	n.untrack(1)
	_, ok = n.liveHandle()
	assert.False(t, ok)
}
