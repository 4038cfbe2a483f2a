// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// exportCommand is the primary command: fetch the library and write it out.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "export",
		Aliases: []string{"dump"},
		Usage:   "Fetch your Spotify library and write it to a file",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "file",
				UsageText: "Output file (extension overrides --format)",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "token",
				Aliases: []string{"t"},
				Usage:   "Spotify access token (omit to authorize in the browser)",
			},
			&cli.StringFlag{
				Name:    "dump",
				Aliases: []string{"d"},
				Usage:   "Comma-separated sections: liked, playlists, top",
				Value:   "playlists",
			},
			&cli.StringFlag{
				Name:  "top-type",
				Usage: "Top items to include: artists, tracks, or both",
				Value: "both",
			},
			&cli.StringFlag{
				Name:  "time-range",
				Usage: "Top item window: short_term, medium_term, or long_term",
				Value: "medium_term",
			},
			&cli.IntFlag{
				Name:  "top-limit",
				Usage: "Top items per type (1-50)",
				Value: 50,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json or txt",
				Value:   "txt",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent tracklist fetches (defaults from config)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Export,
	}
}

// authCommand runs the browser authorization flow on its own and prints the
// captured token for reuse.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize with Spotify and print the access token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dump",
				Aliases: []string{"d"},
				Usage:   "Sections the token should cover: liked, playlists, top",
				Value:   "liked,playlists,top",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Auth,
	}
}

// historyCommand reads back past export runs from the local database.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect past export runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent exports, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Only show runs written as json or txt",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show one export with its playlist rows (latest when no id given)",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}

// apiCommand handles raw Spotify Web API calls for debugging.
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Raw Spotify Web API requests",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Single GET against the Web API, prints the response",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Aliases:  []string{"t"},
						Usage:    "Spotify access token",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "curl",
						Usage: "Print the equivalent cURL command first",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// setupCommand prepares the config file and export history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the history database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// tuiCommand returns the top-level TUI command for interactive exports.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Pick sections and export interactively",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "file",
				UsageText: "Output file (extension overrides --format)",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "token",
				Aliases: []string{"t"},
				Usage:   "Spotify access token (omit to authorize in the browser)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json or txt",
				Value:   "txt",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.TUI,
	}
}
