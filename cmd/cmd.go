// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func sheetFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "sheet",
		Aliases:  []string{"s"},
		Usage:    "Sheet name (defaults to the newest sheet)",
		Required: required,
	}
}

// sheetsCommand handles read-only sheet operations
func sheetsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sheets",
		Usage: "Inspect notebook sheets",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List sheet names, newest first",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.SheetsList,
			},
			{
				Name:  "show",
				Usage: "Show one row by position or PageID",
				Flags: []cli.Flag{
					sheetFlag(false),
					&cli.IntFlag{
						Name:    "position",
						Aliases: []string{"p"},
						Usage:   "1-based position in PageID order",
						Value:   1,
					},
					&cli.IntFlag{
						Name:  "id",
						Usage: "PageID of the row (overrides --position)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SheetsShow,
			},
		},
	}
}

// storyCommand handles story edits outside the TUI
func storyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "story",
		Usage: "Edit row stories",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Overwrite the Story of one row",
				Flags: []cli.Flag{
					sheetFlag(true),
					&cli.IntFlag{
						Name:     "id",
						Usage:    "PageID of the row",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "text",
						Aliases: []string{"t"},
						Usage:   "New story text",
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read the new story from a file (- for stdin)",
					},
				},
				Action: r.StorySet,
			},
		},
	}
}

// exportCommand writes a sheet to a file
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export sheets as CSV, Markdown, text or xlsx",
		Flags: []cli.Flag{
			sheetFlag(false),
			&cli.StringFlag{
				Name:  "format",
				Usage: "Export format (csv, md, txt, xlsx)",
				Value: "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: <sheet>.<format>)",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Export every sheet into --dir with a manifest",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Output directory for --all (default: gnx_export_<epoch>)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent sheet exports for --all",
				Value: 4,
			},
		},
		Action: r.Export,
	}
}

// historyCommand lists journaled commits
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded story commits",
		Flags: []cli.Flag{
			sheetFlag(false),
			&cli.IntFlag{
				Name:  "id",
				Usage: "Only commits for this PageID",
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only commits with this status (pending, applied, failed)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of commits to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml from the bundled template",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the commit journal and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recently applied migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Google authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize gnx with your Google account (OAuth2)",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check credentials by listing the spreadsheet's sheets",
				Action: r.AuthStatus,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive paging and editing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive notebook pager",
		Action:  r.TUI,
	}
}
