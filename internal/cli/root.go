package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"arbor-cli/internal/format"
	"arbor-cli/internal/store"
	"arbor-cli/internal/tui"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Backend    string
	PrettyJSON bool
	Verbose    bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "arbor",
		Short:        "Arbor (local-first) note tree CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive tree browser
  arbor

  # Scriptable commands
  arbor items add inbox --title "Inbox"
  arbor items tree

  # Check the stored document for structural defects
  arbor doctor --fail
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("ARBOR_DIR", ""), "Path to store dir (default: nearest .arbor, else ./.arbor)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", envOr("ARBOR_BACKEND", "fs"), "Object store backend (fs|sqlite)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVar(&app.Verbose, "verbose", false, "Log repair diagnostics to stderr")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newEventsCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	st, cleanup, err := openStore(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = cleanup() }()
	return tui.Run(st)
}

func resolveDir(app *App) (string, error) {
	if app.Dir != "" {
		app.Dir = strings.TrimSpace(app.Dir)
		return app.Dir, nil
	}
	d, err := store.DefaultDir()
	if err != nil {
		return "", err
	}
	app.Dir = d
	return d, nil
}

// openStore resolves the store dir and wires the selected object backend,
// the event log, and the diagnostics logger into a TreeStore. The returned
// cleanup closes backend resources (the sqlite handle).
func openStore(app *App) (*store.TreeStore, func() error, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}

	level := zerolog.ErrorLevel
	if app.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	opts := []store.Option{
		store.WithEventLog(store.NewEventLog(dir)),
		store.WithLogger(log),
	}

	switch strings.TrimSpace(app.Backend) {
	case "", "fs":
		fs, err := store.NewFSStore(dir)
		if err != nil {
			return nil, nil, err
		}
		return store.NewTreeStore(fs, opts...), func() error { return nil }, nil
	case "sqlite":
		db, err := store.NewSQLiteStore(context.Background(), store.SQLitePath(dir))
		if err != nil {
			return nil, nil, err
		}
		return store.NewTreeStore(db, opts...), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend: %s (expected fs|sqlite)", app.Backend)
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
