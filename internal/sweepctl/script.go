package sweepctl

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/armadaproject/sweeprun/internal/slurm"
)

// Script prints a Slurm batch script that runs every job of the sweep as one array task.
// Config files are referenced by absolute path, so the script can be submitted from any directory.
// Settings given only through environment variables must also be set in the submission environment.
func (a *App) Script() error {
	s, err := a.sweep()
	if err != nil {
		return err
	}
	command, err := a.runCommand()
	if err != nil {
		return err
	}
	config := a.Params.Config.Slurm
	script, err := slurm.RenderBatchScript(slurm.ScriptOptions{
		Resources:    s.Resources(),
		NumJobs:      s.Len(),
		ArrayLimit:   config.ArrayLimit,
		Output:       config.Output,
		Partition:    config.Partition,
		ExtraOptions: config.ExtraOptions,
		Command:      command,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(a.Out, script)
	return nil
}

// runCommand returns the command each array task runs. It takes its index from the task id.
func (a *App) runCommand() ([]string, error) {
	executable := a.Params.Config.Slurm.Executable
	if executable == "" {
		var err error
		executable, err = a.Executable()
		if err != nil {
			return nil, errors.Wrap(err, "error finding the sweepctl executable; set slurm.executable")
		}
	}
	command := []string{executable, "run"}
	for _, file := range a.Params.ConfigFiles {
		path, err := filepath.Abs(file)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		command = append(command, "--config", path)
	}
	return command, nil
}
