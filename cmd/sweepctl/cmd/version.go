package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/sweeprun/internal/sweepctl"
)

// Print version info and exit.
func versionCmd(app *sweepctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Version()
		},
	}
	return cmd
}
