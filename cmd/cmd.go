// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes the database and config file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "demo",
				Usage: "Seed a small demo library with playable sample tracks",
			},
		},
		Action: r.SetupDatabase,
	}
}

// spotifyCommand handles Spotify catalog operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify catalog operations",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SpotifyAuth,
			},
			{
				Name:  "playlists",
				Usage: "List Spotify playlists",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to return",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SpotifyPlaylists,
			},
			{
				Name:  "import",
				Usage: "Import playlists and liked tracks into the library",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "playlist",
						Usage: "Import a single playlist by ID or name",
					},
				},
				Action: r.SpotifyImport,
			},
		},
	}
}

// libraryCommand queries and exports the local library
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Local library operations",
		Commands: []*cli.Command{
			{
				Name:  "playlists",
				Usage: "List imported playlists",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.LibraryPlaylists,
			},
			{
				Name:  "liked",
				Usage: "List liked tracks",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.LibraryLiked,
			},
			{
				Name:  "like",
				Usage: "Mark a library track as liked",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Track ID to like",
						Required: true,
					},
				},
				Action: r.LibraryLike,
			},
			{
				Name:  "unlike",
				Usage: "Remove a track from liked",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Track ID to unlike",
						Required: true,
					},
				},
				Action: r.LibraryUnlike,
			},
			{
				Name:  "create",
				Usage: "Create an empty playlist",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Playlist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Playlist description",
					},
				},
				Action: r.LibraryCreate,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist from the library",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID to delete",
						Required: true,
					},
				},
				Action: r.LibraryDelete,
			},
			{
				Name:  "export",
				Usage: "Export a playlist to csv, markdown, text or json",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID to export, or 'liked'",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv, md, txt or json",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (without extension)",
					},
				},
				Action: r.LibraryExport,
			},
		},
	}
}

// playCommand streams from the library without the full TUI
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play liked tracks or a playlist from the terminal",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "playlist",
				Usage: "Playlist ID to play (defaults to liked tracks)",
			},
			&cli.BoolFlag{
				Name:  "shuffle",
				Usage: "Shuffle the queue",
			},
		},
		Action: r.Play,
	}
}

// resolveCommand performs a one-shot stream resolution
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve a stream URL for a track and print it",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "id",
				Usage: "Library track ID to resolve",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Track title for an ad-hoc lookup",
			},
			&cli.StringFlag{
				Name:  "artist",
				Usage: "Track artist for an ad-hoc lookup",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Resolve,
	}
}

// cacheCommand manages resolved stream URLs
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage resolved stream URLs",
		Commands: []*cli.Command{
			{
				Name:  "prefetch",
				Usage: "Resolve stream URLs for library tracks ahead of playback",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "playlist",
						Usage: "Prefetch a single playlist by ID (defaults to the whole library)",
					},
				},
				Action: r.CachePrefetch,
			},
			{
				Name:   "clear",
				Usage:  "Drop all cached stream URLs",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheClear,
			},
		},
	}
}

// tuiCommand launches the interactive player
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"ui"},
		Usage:   "Launch the interactive terminal player",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}
