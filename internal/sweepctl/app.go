// Package sweepctl implements the sweepctl commands. Each command is a method on App,
// so that it can be driven by cobra and by tests alike.
package sweepctl

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/sweeprun/internal/common/config"
	"github.com/armadaproject/sweeprun/internal/common/util"
	"github.com/armadaproject/sweeprun/internal/sweep"
	"github.com/armadaproject/sweeprun/internal/sweepctl/build"
	"github.com/armadaproject/sweeprun/internal/sweepctl/configuration"
	"github.com/armadaproject/sweeprun/internal/sweeps"
)

type App struct {
	// Parameters passed to the CLI by the user.
	Params *Params
	// Out is used to write the output. Defaults to standard out,
	// but can be overridden in tests to make assertions on the applications's output.
	Out io.Writer
	// Getenv looks up environment variables, e.g., the array task id set by Slurm.
	// Tests can replace it to avoid depending on the process environment.
	Getenv func(key string) string
	// Executable returns the path of the sweepctl binary, used when rendering batch scripts.
	Executable func() (string, error)
	// Identifies this process in log output.
	InvocationId string
}

// Params struct holds all user-customizable parameters.
type Params struct {
	// Config files given with --config, in the order they were merged.
	ConfigFiles []string
	Config      configuration.SweepConfiguration
}

// New instantiates an App with default parameters, writing to standard output.
func New() *App {
	return &App{
		Params:       &Params{},
		Out:          os.Stdout,
		Getenv:       os.Getenv,
		Executable:   os.Executable,
		InvocationId: util.NewInvocationId(),
	}
}

// LoadParams loads the configuration from the built-in defaults, configFiles, the environment and flags.
// The configuration is validated by each command.
func (a *App) LoadParams(configFiles []string, flags config.FlagBindings) error {
	c, err := configuration.Load(configFiles, flags)
	if err != nil {
		return errors.WithStack(&sweep.ErrConfiguration{Name: "config", Value: configFiles, Message: err.Error()})
	}
	a.Params.ConfigFiles = configFiles
	a.Params.Config = c
	return nil
}

func (a *App) validateParams() error {
	return a.Params.Config.Validate()
}

// sweep validates the parameters and builds the configured sweep.
func (a *App) sweep() (sweep.Sweep, error) {
	if err := a.validateParams(); err != nil {
		return nil, err
	}
	return sweeps.New(a.Params.Config)
}

func (a *App) logger(s sweep.Sweep) *log.Entry {
	return log.WithFields(log.Fields{
		"invocation": a.InvocationId,
		"folder":     s.Folder(),
	})
}

// Count prints the number of jobs of the sweep.
func (a *App) Count() error {
	s, err := a.sweep()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, s.Len())
	return nil
}

// Version prints build information (e.g., current git commit) to the app output.
func (a *App) Version() error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "Version:\t%s\n", build.ReleaseVersion)
	fmt.Fprintf(w, "Commit:\t%s\n", build.GitCommit)
	fmt.Fprintf(w, "Go version:\t%s\n", build.GoVersion)
	fmt.Fprintf(w, "Built:\t%s\n", build.BuildTime)
	return nil
}
