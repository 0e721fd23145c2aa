package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/example/epochfs/internal/logger"
	"github.com/example/epochfs/pkg/config"
	"github.com/example/epochfs/pkg/fs/passthrough"
	epochfuse "github.com/example/epochfs/pkg/fuse"
)

func main() {
	app := &cli.App{
		Name:  "epochfs",
		Usage: "Mirror a directory with timestamps shifted to a virtual epoch",
		Commands: []*cli.Command{
			{
				Name:      "mount",
				Usage:     "Mount a backing directory at a mount point",
				ArgsUsage: "MOUNTPOINT",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "configuration file (YAML or TOML)",
					},
					&cli.StringFlag{
						Name:    "base-path",
						Aliases: []string{"b"},
						Usage:   "backing directory exposed through the mount",
					},
					&cli.IntFlag{
						Name:    "epoch",
						Aliases: []string{"e"},
						Usage:   "virtual epoch year (default: year of time zero)",
					},
					&cli.StringFlag{
						Name:  "log-level",
						Usage: "log level: DEBUG, INFO, WARN, ERROR",
					},
					&cli.StringFlag{
						Name:  "log-file",
						Usage: "log destination: stdout, stderr, or a file path",
					},
					&cli.StringFlag{
						Name:  "fsname",
						Usage: "filesystem name shown in mount tables",
					},
					&cli.BoolFlag{
						Name:  "allow-other",
						Usage: "allow access by users other than the mounter",
					},
					&cli.BoolFlag{
						Name:  "read-only",
						Usage: "mount the view read-only",
					},
					&cli.BoolFlag{
						Name:  "debug",
						Usage: "log raw FUSE traffic",
					},
				},
				Action: mount,
			},
			{
				Name:      "umount",
				Usage:     "Unmount a previously mounted filesystem",
				ArgsUsage: "MOUNTPOINT",
				Action:    umount,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "epochfs: %v\n", err)
		os.Exit(1)
	}
}

func mount(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one MOUNTPOINT argument")
	}
	mountPoint := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if err := logger.Open(cfg.Logging.Output); err != nil {
		return err
	}
	logger.SetLevel(cfg.Logging.Level)

	fsys, err := passthrough.New(cfg.BasePath, cfg.Epoch)
	if err != nil {
		return err
	}
	logger.Info("backing directory %s, epoch year %d", cfg.BasePath, fsys.Epoch().Year())

	return epochfuse.Mount(epochfuse.MountOptions{
		MountPoint: mountPoint,
		FSName:     cfg.Mount.FSName,
		AllowOther: cfg.Mount.AllowOther,
		ReadOnly:   cfg.Mount.ReadOnly,
		Debug:      c.Bool("debug"),
	}, fsys)
}

func umount(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one MOUNTPOINT argument")
	}
	return epochfuse.Unmount(c.Args().First())
}

// loadConfig layers CLI flags over the file and environment
// configuration, then validates the result.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Read(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("base-path") {
		cfg.BasePath = c.String("base-path")
	}
	if c.IsSet("epoch") {
		cfg.Epoch = c.Int("epoch")
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.Logging.Output = c.String("log-file")
	}
	if c.IsSet("fsname") {
		cfg.Mount.FSName = c.String("fsname")
	}
	if c.IsSet("allow-other") {
		cfg.Mount.AllowOther = c.Bool("allow-other")
	}
	if c.IsSet("read-only") {
		cfg.Mount.ReadOnly = c.Bool("read-only")
	}

	if err := config.Finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
