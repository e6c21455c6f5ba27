package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/armadaproject/sweeprun/internal/common/config"
	"github.com/armadaproject/sweeprun/internal/common/logging"
	"github.com/armadaproject/sweeprun/internal/sweep"
	"github.com/armadaproject/sweeprun/internal/sweepctl"
)

const (
	configFlag    = "config"
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	return rootCmdWithApp(sweepctl.New)
}

// rootCmdWithApp creates the command tree, using newApp to create the app of each sub-command.
func rootCmdWithApp(newApp func() *sweepctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweepctl",
		Short: "sweepctl runs the jobs of a parameter sweep, one index at a time.",
		Long: `sweepctl runs the jobs of a parameter sweep, one index at a time.

Each job of a sweep writes one output file under <pathPrefix>/<folder>/, where the folder
encodes the sweep's parameters. Jobs are independent and can run in any order, in any
number of processes, e.g., as the tasks of a Slurm array job.

Settings are read from the built-in defaults, then from each --config file in order,
then from SWEEP_-prefixed environment variables, e.g., SWEEP_EXAMPLE_N=10.
If no config file is given, $HOME/.sweepctl.yaml is used if it exists.

Example config:
kind: grid
pathPrefix: /scratch/sweeps
grid:
  name: lr-scan
  axes:
    - name: lr
      values: [0.1, 0.01]
  command: [python, train.py, "--lr={{.lr}}"]`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := cmd.Flags().GetString(logLevelFlag)
			if err != nil {
				return err
			}
			format, err := cmd.Flags().GetString(logFormatFlag)
			if err != nil {
				return err
			}
			if err := logging.ConfigureLogging(level, format); err != nil {
				return errors.WithStack(&sweep.ErrConfiguration{Name: "logging", Message: err.Error()})
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringSlice(configFlag, nil, "Config file; may be given multiple times, later files take precedence.")
	cmd.PersistentFlags().String(logLevelFlag, "info", "Log level, e.g., debug, info, or warn.")
	cmd.PersistentFlags().String(logFormatFlag, logging.FormatCli, "Log format; one of cli, text, or json.")

	cmd.AddCommand(
		runCmd(newApp()),
		runAllCmd(newApp()),
		collectCmd(newApp()),
		statusCmd(newApp()),
		jobsCmd(newApp()),
		countCmd(newApp()),
		scriptCmd(newApp()),
		versionCmd(newApp()),
	)

	return cmd
}

// initParams loads the app configuration. flags maps config keys to the flags of cmd that override them.
func initParams(cmd *cobra.Command, app *sweepctl.App, flags map[string]string) error {
	configFiles, err := cmd.Flags().GetStringSlice(configFlag)
	if err != nil {
		return err
	}
	bindings := config.FlagBindings{}
	for key, name := range flags {
		bindings[key] = cmd.Flags().Lookup(name)
	}
	return app.LoadParams(configFiles, bindings)
}

// contextWithSignals returns a context that is cancelled on SIGINT/SIGTERM,
// so that running jobs are stopped on ctrl-C.
func contextWithSignals() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(stopSignal)
		select {
		case <-ctx.Done():
		case <-stopSignal:
			cancel()
		}
	}()
	return ctx, cancel
}
