// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

func playlistFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "playlist",
		Aliases: []string{"p"},
		Usage:   "Target playlist ID (defaults to sync.target_playlist_id)",
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles the Spotify OAuth2 flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize likesync with Spotify",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show saved credentials and token state",
				Action: r.AuthStatus,
			},
		},
	}
}

// syncCommand mirrors liked tracks into the target playlist
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Make the target playlist match your liked tracks",
		Flags: append([]cli.Flag{
			playlistFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Compute and print the changes without writing them",
			},
			&cli.BoolFlag{
				Name:  "notify",
				Usage: "Email the sync summary when email is configured",
			},
			&cli.IntFlag{
				Name:  "chunk-size",
				Usage: "Tracks per playlist write (max 100, defaults to sync.chunk_size)",
			},
		}, jsonFlags()...),
		Action: r.Sync,
	}
}

// catalogCommand handles direct Spotify catalog operations
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"spotify"},
		Usage:   "Spotify catalog operations",
		Commands: []*cli.Command{
			{
				Name:   "playlists",
				Usage:  "List your playlists as name~uri",
				Flags:  jsonFlags(),
				Action: r.CatalogPlaylists,
			},
			{
				Name:  "tracks",
				Usage: "List a playlist's tracks as artist~track~duration~uri",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID",
						Required: true,
					},
				}, jsonFlags()...),
				Action: r.CatalogTracks,
			},
			{
				Name:   "liked",
				Usage:  "List your liked tracks as artist~track~duration~uri",
				Flags:  jsonFlags(),
				Action: r.CatalogLiked,
			},
			{
				Name:  "search",
				Usage: "Search for a track by artist and title",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "artist",
						Usage:    "Artist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Track title",
						Required: true,
					},
				}, jsonFlags()...),
				Action: r.CatalogSearch,
			},
			{
				Name:  "add",
				Usage: "Add tracks to a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "track",
						Aliases:  []string{"t"},
						Usage:    "Track ID (repeatable)",
						Required: true,
					},
				},
				Action: r.CatalogAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove every occurrence of tracks from a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "track",
						Aliases:  []string{"t"},
						Usage:    "Track ID (repeatable)",
						Required: true,
					},
				},
				Action: r.CatalogRemove,
			},
		},
	}
}

// libraryCommand inspects local audio files
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "Inspect local audio files",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print the tags read from each audio file in a directory",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "dir"},
				},
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:    "recursive",
						Aliases: []string{"r"},
						Usage:   "Walk subdirectories",
					},
				}, jsonFlags()...),
				Action: r.LibraryList,
			},
		},
	}
}

// matchCommand matches a local directory against the catalog
func matchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Match local audio files to catalog tracks and write a report",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "dir"},
		},
		Flags: append([]cli.Flag{
			&cli.FloatFlag{
				Name:  "tolerance",
				Usage: "Duration tolerance in percent (defaults to matcher.duration_tolerance)",
			},
			&cli.BoolFlag{
				Name:    "recursive",
				Aliases: []string{"r"},
				Usage:   "Walk subdirectories",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report path (defaults to matcher.report_name inside DIR)",
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "Also write a CSV export to this path",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Cache match results in the database",
			},
		}, jsonFlags()...),
		Action: r.Match,
	}
}

// historyCommand reads recorded sync runs and cached matches
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded sync runs and cached matches",
		Commands: []*cli.Command{
			{
				Name:  "runs",
				Usage: "List recent sync runs",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 10,
					},
				}, jsonFlags()...),
				Action: r.HistoryRuns,
			},
			{
				Name:  "matches",
				Usage: "List cached local file matches",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "unmatched",
						Usage: "Only show files without a catalog match",
					},
				}, jsonFlags()...),
				Action: r.HistoryMatches,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Review and apply a sync interactively",
		Flags: []cli.Flag{
			playlistFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Walk through the sync without writing changes",
			},
			&cli.IntFlag{
				Name:  "chunk-size",
				Usage: "Tracks per playlist write (max 100, defaults to sync.chunk_size)",
			},
			&cli.BoolFlag{
				Name:  "notify",
				Usage: "Email the sync summary after the sync completes",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI owns the terminal",
				Value: "./tmp/likesync-tui.log",
			},
		},
		Action: r.TUI,
	}
}
