package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/sweeprun/internal/sweepctl"
)

func statusCmd(app *sweepctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which jobs have produced output.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app, nil)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return err
			}
			return app.Status(output)
		},
	}
	cmd.Flags().StringP("output", "o", sweepctl.OutputText, "Output format; one of text or yaml.")
	return cmd
}

func jobsCmd(app *sweepctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List the jobs of the sweep and their output files.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app, nil)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return err
			}
			return app.Jobs(output)
		},
	}
	cmd.Flags().StringP("output", "o", sweepctl.OutputText, "Output format; one of text or yaml.")
	return cmd
}

func countCmd(app *sweepctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of jobs, e.g., to size an array job.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app, nil)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Count()
		},
	}
	return cmd
}
