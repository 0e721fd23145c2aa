package fuse

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/example/epochfs/internal/logger"
	vfs "github.com/example/epochfs/pkg/fs"
)

// MountOptions contains options for mounting the filesystem.
type MountOptions struct {
	MountPoint string
	FSName     string
	AllowOther bool
	ReadOnly   bool
	Debug      bool
}

// Mount mounts fsys at the mount point and serves requests until the
// process receives SIGINT or SIGTERM, or the kernel connection ends.
func Mount(options MountOptions, fsys vfs.FileSystem) error {
	mountOpts := []fuse.MountOption{
		fuse.FSName(options.FSName),
		fuse.Subtype("epochfs"),
		fuse.LockingFlock(),
		fuse.LockingPOSIX(),
	}
	if options.AllowOther {
		mountOpts = append(mountOpts, fuse.AllowOther())
	}
	if options.ReadOnly {
		mountOpts = append(mountOpts, fuse.ReadOnly())
	}
	if options.Debug {
		fuse.Debug = func(msg interface{}) {
			logger.Debug("fuse: %v", msg)
		}
	}

	logger.Info("mounting %s at %s", options.FSName, options.MountPoint)
	c, err := fuse.Mount(options.MountPoint, mountOpts...)
	if err != nil {
		return fmt.Errorf("mount %s: %w", options.MountPoint, err)
	}
	defer c.Close()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- fusefs.Serve(c, New(fsys))
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		logger.Info("serve loop ended")
		return err
	case s := <-sig:
		logger.Info("received %v, unmounting %s", s, options.MountPoint)
		if err := Unmount(options.MountPoint); err != nil {
			logger.Warn("unmount failed: %v", err)
			return err
		}
		return <-serveErr
	}
}

// Unmount unmounts the filesystem.
func Unmount(mountPoint string) error {
	return fuse.Unmount(mountPoint)
}
