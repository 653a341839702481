package cli

import (
	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the store dir and bootstrap an empty tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = cleanup() }()

			doc, err := st.Get(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":     app.Dir,
					"backend": app.Backend,
					"items":   len(doc.Items),
				},
			})
		},
	}
}
