package logging

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJson = "json"
	FormatCli  = "cli"
)

// ConfigureCommandLineLogging sets up logging for interactive command-line use:
// plain messages on stdout at info level.
func ConfigureCommandLineLogging() {
	log.SetFormatter(&CommandLineFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

// ConfigureLogging sets the level and format of the standard logger.
// Array tasks typically use the text or json formats so that log lines carry timestamps.
func ConfigureLogging(level string, format string) error {
	l, err := log.ParseLevel(level)
	if err != nil {
		return errors.WithStack(err)
	}
	switch strings.ToLower(format) {
	case FormatCli, "":
		log.SetFormatter(&CommandLineFormatter{})
	case FormatText:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})
	case FormatJson:
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return errors.Errorf("unknown log format %q; valid formats are %s, %s and %s", format, FormatCli, FormatText, FormatJson)
	}
	log.SetLevel(l)
	return nil
}
