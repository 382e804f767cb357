package main

import "github.com/urfave/cli/v3"

// Command builds the root command.
func (r *Runner) Command() *cli.Command {
	return &cli.Command{
		Name:    "noel",
		Usage:   "Gesture-driven particle Christmas tree",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (default ~/.noel/config.toml when present)",
			},
			&cli.IntFlag{
				Name:  "camera",
				Usage: "Camera device index",
			},
			&cli.BoolFlag{
				Name:  "no-camera",
				Usage: "Run without gesture input",
			},
			&cli.StringFlag{
				Name:  "renderer",
				Usage: "Output backend: window, terminal or none",
			},
			&cli.IntFlag{
				Name:  "particles",
				Usage: "Number of tree particles",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Layout seed; 0 seeds from the clock",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "HTTP listen address",
			},
			&cli.BoolFlag{
				Name:  "no-server",
				Usage: "Disable the local HTTP port",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the SQLite database",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.BoolFlag{
				Name:  "tray",
				Usage: "Show the system tray menu",
			},
		},
		Action: r.Run,
		Commands: []*cli.Command{
			photosCommand(r),
			configCommand(r),
		},
	}
}

// photosCommand manages the photo catalog.
func photosCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "photos",
		Usage: "Manage the photo catalog (applies on next launch)",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List photos in display order",
				Action: r.PhotosList,
			},
			{
				Name:      "add",
				Usage:     "Append photos by URL or file path",
				ArgsUsage: "URL...",
				Action:    r.PhotosAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove photos by ID or URL",
				ArgsUsage: "ID|URL...",
				Action:    r.PhotosRemove,
			},
		},
	}
}

// configCommand handles the configuration file.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration file operations",
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Write the default configuration",
				ArgsUsage: "[PATH]",
				Action:    r.ConfigInit,
			},
		},
	}
}
