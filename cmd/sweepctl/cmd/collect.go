package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/sweeprun/internal/sweepctl"
)

// Merge job outputs.
func collectCmd(app *sweepctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Merge the outputs of all jobs into one file.",
		Long: `Merge the outputs of all jobs into one file in the sweep's output folder.

Fails if any job has no output, unless --allow-partial is given or collect.allowPartial is set.
Does nothing for sweeps that define no aggregation.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app, map[string]string{"collect.allowPartial": "allow-partial"})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := contextWithSignals()
			defer cancel()
			return app.Collect(ctx)
		},
	}
	cmd.Flags().Bool("allow-partial", false, "Merge the outputs that exist instead of failing on missing ones.")
	return cmd
}
