package cli

import (
	"os"

	"arbor-cli/internal/store"

	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the structural event log",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return writeErr(cmd, err)
			}

			evs, err := store.NewEventLog(dir).Read(limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": evs,
				"meta": map[string]any{"count": len(evs)},
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Max events to return (0 = all)")
	return cmd
}
