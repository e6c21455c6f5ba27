package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/sweeprun/internal/sweepctl"
)

// Run a single job.
func runCmd(app *sweepctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [index]",
		Short: "Run the job at the given index.",
		Long: `Run the job at the given index and write its output.

The index is taken from the argument, else from --index, else from SLURM_ARRAY_TASK_ID.
Prints the path of the output file on success.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app, map[string]string{"skipCompleted": "skip-completed"})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var indexFlag *int
			if cmd.Flags().Changed("index") {
				i, err := cmd.Flags().GetInt("index")
				if err != nil {
					return err
				}
				indexFlag = &i
			}
			index, err := app.ResolveIndex(args, indexFlag)
			if err != nil {
				return err
			}
			ctx, cancel := contextWithSignals()
			defer cancel()
			return app.Run(ctx, index)
		},
	}
	cmd.Flags().Int("index", 0, "Index of the job to run.")
	cmd.Flags().Bool("skip-completed", false, "Do nothing if the job's output already exists.")
	return cmd
}

// Run all jobs locally.
func runAllCmd(app *sweepctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run-all",
		Short: "Run every job of the sweep in this process.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app, nil)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			parallelism, err := cmd.Flags().GetInt("parallelism")
			if err != nil {
				return err
			}
			pendingOnly, err := cmd.Flags().GetBool("pending-only")
			if err != nil {
				return err
			}
			ctx, cancel := contextWithSignals()
			defer cancel()
			return app.RunAll(ctx, parallelism, pendingOnly)
		},
	}
	cmd.Flags().Int("parallelism", 1, "Maximum number of jobs to run at once.")
	cmd.Flags().Bool("pending-only", false, "Only run jobs without output.")
	return cmd
}
