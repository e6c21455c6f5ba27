package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/sweeprun/internal/sweepctl"
)

func scriptCmd(app *sweepctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Print a Slurm batch script that runs every job as an array task.",
		Long: `Print a Slurm batch script that runs every job as an array task, e.g.,

sweepctl script --config sweep.yaml > sweep.sh && sbatch sweep.sh

Resource requests are taken from the resources settings, array options from the slurm settings.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app, nil)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Script()
		},
	}
	return cmd
}
