package util

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// CloseResource closes c, logging rather than returning any error.
// Use it for resources that are only read from.
func CloseResource(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.WithError(err).Warnf("Failed to close %s cleanly", name)
	}
}
