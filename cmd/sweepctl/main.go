package main

import (
	"os"

	"github.com/armadaproject/sweeprun/cmd/sweepctl/cmd"
	"github.com/armadaproject/sweeprun/internal/common/logging"
	"github.com/armadaproject/sweeprun/internal/sweep"
)

func main() {
	logging.ConfigureCommandLineLogging()
	err := cmd.RootCmd().Execute()
	os.Exit(sweep.ExitCodeFromError(err))
}
