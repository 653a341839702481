package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// ErrAnomaliesFound is the doctor --fail exit signal.
var ErrAnomaliesFound = errors.New("structural anomalies found")

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the stored tree document for structural defects",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = cleanup() }()

			report, err := st.Doctor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			if err := writeOut(cmd, app, map[string]any{
				"data": report,
				"meta": map[string]any{
					"anomalies":    len(report.Anomalies),
					"hasAnomalies": report.HasAnomalies(),
				},
			}); err != nil {
				return err
			}

			if fail && report.HasAnomalies() {
				return ErrAnomaliesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if anomalies are found")
	return cmd
}
