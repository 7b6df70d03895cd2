// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag is shared by every command that reads config.toml
func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles first-run initialization
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and storage",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// serveCommand runs the HTTP service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the playlist analysis web service",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// playlistCommand handles playlist analysis operations
func playlistCommand(r *Runner) *cli.Command {
	idFlag := &cli.StringFlag{
		Name:     "id",
		Usage:    "Playlist ID",
		Required: true,
	}
	jsonFlag := &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
	prettyFlag := &cli.BoolFlag{
		Name:  "pretty",
		Usage: "Pretty-print JSON output",
	}

	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Playlist analysis operations",
		Commands: []*cli.Command{
			{
				Name:   "contents",
				Usage:  "List a playlist's normalized tracks",
				Flags:  []cli.Flag{configFlag(), idFlag, jsonFlag, prettyFlag},
				Action: r.PlaylistContents,
			},
			{
				Name:   "stats",
				Usage:  "Compute aggregate statistics for a playlist",
				Flags:  []cli.Flag{configFlag(), idFlag, jsonFlag, prettyFlag},
				Action: r.PlaylistStats,
			},
			{
				Name:  "dedupe",
				Usage: "Find duplicate tracks (simulation unless --write)",
				Flags: []cli.Flag{
					configFlag(), idFlag, jsonFlag, prettyFlag,
					&cli.BoolFlag{
						Name:  "write",
						Usage: "Remove the duplicates upstream",
					},
				},
				Action: r.PlaylistDedupe,
			},
			{
				Name:  "merge",
				Usage: "Simulate merging playlist B into playlist A",
				Flags: []cli.Flag{
					configFlag(), jsonFlag, prettyFlag,
					&cli.StringFlag{
						Name:     "a",
						Usage:    "Target playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "b",
						Usage:    "Source playlist ID",
						Required: true,
					},
				},
				Action: r.PlaylistMerge,
			},
			{
				Name:  "export",
				Usage: "Export a playlist as CSV",
				Flags: []cli.Flag{
					configFlag(), idFlag,
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults to the derived filename)",
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}
