// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/watchlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// rootCommand builds the command tree. Without a subcommand it launches the TUI.
func rootCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watchlist",
		Usage:   "Keep track of films, series, documentaries and anime you want to watch",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (.toml, .yaml)",
				Value:   "config.toml",
				Sources: cli.EnvVars("WATCHLIST_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before:   r.init,
		After:    r.after,
		Action:   r.TUI,
		Commands: r.register(),
	}
}

// setupCommand writes the config file and prepares local storage.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize local storage",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Undo the most recent storage migration",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles login, registration and logout
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the signed-in user",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with username and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Username",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Password",
						Sources: cli.EnvVars("WATCHLIST_PASSWORD"),
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "first-name", Usage: "First name"},
					&cli.StringFlag{Name: "last-name", Usage: "Last name"},
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username"},
					&cli.StringFlag{Name: "email", Usage: "E-mail address"},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Password (at least 6 characters)",
						Sources: cli.EnvVars("WATCHLIST_PASSWORD"),
					},
					&cli.StringFlag{
						Name:  "confirm-password",
						Usage: "Password confirmation (defaults to --password)",
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Forget the signed-in user",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the signed-in user",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// accountCommand handles the profile of the signed-in user
func accountCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Show or update your profile",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Reload and show the profile from the backend",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AccountShow,
			},
			{
				Name:  "update",
				Usage: "Update first name, last name or e-mail",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "first-name", Usage: "New first name"},
					&cli.StringFlag{Name: "last-name", Usage: "New last name"},
					&cli.StringFlag{Name: "email", Usage: "New e-mail address"},
				},
				Action: r.AccountUpdate,
			},
		},
	}
}

func entryFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "title",
			Aliases:  []string{"t"},
			Usage:    "Title",
			Required: required,
		},
		&cli.StringFlag{
			Name:     "type",
			Usage:    "Category: Film, Serie, Dokumentation, Anime",
			Required: required,
		},
		&cli.StringFlag{Name: "genre", Usage: "Genre"},
		&cli.BoolFlag{Name: "watched", Usage: "Mark as watched"},
		&cli.IntFlag{Name: "rating", Usage: "Rating from 1 to 10 (watched entries only)"},
	}
}

func idFlag() cli.Flag {
	return &cli.Int64Flag{
		Name:     "id",
		Usage:    "Entry ID",
		Required: true,
	}
}

// entriesCommand handles watchlist entries
func entriesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "entries",
		Aliases: []string{"e"},
		Usage:   "Manage watchlist entries",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List your watchlist",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.EntriesList,
			},
			{
				Name:   "add",
				Usage:  "Add an entry",
				Flags:  entryFlags(true),
				Action: r.EntriesAdd,
			},
			{
				Name:   "edit",
				Usage:  "Change fields of an entry; unset flags keep their value",
				Flags:  append([]cli.Flag{idFlag()}, entryFlags(false)...),
				Action: r.EntriesEdit,
			},
			{
				Name:  "watch",
				Usage: "Mark an entry as watched with a rating",
				Flags: []cli.Flag{
					idFlag(),
					&cli.IntFlag{
						Name:     "rating",
						Usage:    "Rating from 1 to 10",
						Required: true,
					},
				},
				Action: r.EntriesWatch,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete an entry",
				Flags: []cli.Flag{
					idFlag(),
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Do not ask for confirmation",
					},
				},
				Action: r.EntriesDelete,
			},
			{
				Name:  "open",
				Usage: "Open the cover of an entry in the browser",
				Flags: []cli.Flag{
					idFlag(),
				},
				Action: r.EntriesOpen,
			},
			{
				Name:  "refresh-posters",
				Usage: "Ask the backend to look up missing covers",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Do not ask for confirmation",
					},
				},
				Action: r.EntriesRefreshPosters,
			},
			{
				Name:  "export",
				Usage: "Export your watchlist to files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   tasks.FormatJSON,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: watchlist_export_{epoch})",
					},
					&cli.BoolFlag{
						Name:  "posters",
						Usage: "Download covers (markdown only)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent cover downloads",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate-limit",
						Usage: "Cover downloads per second",
						Value: 5,
					},
				},
				Action: r.EntriesExport,
			},
			{
				Name:  "import",
				Usage: "Import entries from a CSV or JSON file",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Validate and report without creating entries",
					},
					&cli.BoolFlag{
						Name:  "allow-existing",
						Usage: "Create entries even if the same title and category is already listed",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent requests",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate-limit",
						Usage: "Requests per second",
						Value: 5,
					},
				},
				Action: r.EntriesImport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Action:  r.TUI,
	}
}
