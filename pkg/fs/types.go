package fs

import (
	"time"
)

// FileType represents the type of a file.
type FileType uint32

const (
	// FileTypeRegular is a regular file
	FileTypeRegular FileType = iota
	// FileTypeDirectory is a directory
	FileTypeDirectory
	// FileTypeSymlink is a symbolic link
	FileTypeSymlink
	// FileTypeBlock is a block special device
	FileTypeBlock
	// FileTypeChar is a character special device
	FileTypeChar
	// FileTypeFIFO is a named pipe
	FileTypeFIFO
	// FileTypeSocket is a socket
	FileTypeSocket
)

// String returns a string representation of the file type
func (ft FileType) String() string {
	switch ft {
	case FileTypeRegular:
		return "regular"
	case FileTypeDirectory:
		return "directory"
	case FileTypeSymlink:
		return "symlink"
	case FileTypeBlock:
		return "block"
	case FileTypeChar:
		return "char"
	case FileTypeFIFO:
		return "fifo"
	case FileTypeSocket:
		return "socket"
	default:
		return "unknown"
	}
}

// FileMode represents the permission bits of a file.
type FileMode uint32

const (
	// ModeMask is the mask for the file permission bits
	ModeMask FileMode = 0777
	// ModeSetUID is the set-user-ID bit
	ModeSetUID FileMode = 04000
	// ModeSetGID is the set-group-ID bit
	ModeSetGID FileMode = 02000
	// ModeSticky is the sticky bit
	ModeSticky FileMode = 01000
)

// FileInfo contains information about a file. Timestamps are always in
// virtual-epoch terms by the time a FileInfo leaves the dispatcher.
type FileInfo struct {
	// Type is the file type
	Type FileType

	// Mode contains the permission bits
	Mode FileMode

	// Ino is the inode number on the backing filesystem
	Ino uint64

	// Size is the file size in bytes
	Size int64

	// Uid is the user ID of the file's owner
	Uid uint32

	// Gid is the group ID of the file's group
	Gid uint32

	// Nlink is the number of hard links to the file
	Nlink uint32

	// Rdev is the device ID (if special file)
	Rdev uint64

	// BlockSize is the filesystem block size
	BlockSize uint32

	// Blocks is the number of 512-byte blocks allocated
	Blocks uint64

	// AccessTime is the time of last access
	AccessTime time.Time

	// ModifyTime is the time of last modification
	ModifyTime time.Time

	// ChangeTime is the time of last status change
	ChangeTime time.Time
}

// DirEntry represents an entry in a directory stream.
type DirEntry struct {
	// Name is the name of the entry
	Name string

	// Type is the entry's file type as reported by the stream
	Type FileType
}

// FSStat contains information about a filesystem.
type FSStat struct {
	// BlockSize is the filesystem block size
	BlockSize uint32

	// TotalBlocks is the total number of blocks
	TotalBlocks uint64

	// FreeBlocks is the number of free blocks
	FreeBlocks uint64

	// AvailBlocks is the number of blocks available to non-privileged users
	AvailBlocks uint64

	// TotalFiles is the total number of file slots
	TotalFiles uint64

	// FreeFiles is the number of free file slots
	FreeFiles uint64

	// NameMaxLength is the maximum length of a file name
	NameMaxLength uint32
}

// Lock type values, mirroring F_RDLCK/F_WRLCK/F_UNLCK.
const (
	LockRead   int16 = 0
	LockWrite  int16 = 1
	LockUnlock int16 = 2
)

// FileLock describes a POSIX record lock, mirroring struct flock.
type FileLock struct {
	// Type is one of LockRead, LockWrite, LockUnlock
	Type int16

	// Whence is the interpretation of Start (SEEK_SET/CUR/END)
	Whence int16

	// Start is the offset where the lock begins
	Start int64

	// Len is the number of bytes to lock; 0 means to EOF
	Len int64

	// PID is the process holding the lock (output of get-lock queries)
	PID int32
}
