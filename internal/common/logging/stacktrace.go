package logging

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const Stacktrace = "stacktrace"

// Unexported but considered part of the stable interface of pkg/errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// WithStacktrace returns a new logrus.Entry obtained by adding error information and, if available, a stack trace
// as fields to the provided logrus.Entry.
func WithStacktrace(logger *logrus.Entry, err error) *logrus.Entry {
	logger = logger.WithError(err)
	if stack := ExtractStack(err); stack != nil {
		logger = logger.WithField(Stacktrace, stack)
	}
	return logger
}

// ExtractStack walks down the chain of errors and returns the first errors.StackTrace it encounters.
// Both pkg/errors causes and standard library wrapping are followed. Returns nil if there is none.
func ExtractStack(err error) errors.StackTrace {
	for err != nil {
		if stackErr, ok := err.(stackTracer); ok {
			return stackErr.StackTrace()
		}
		err = errors.Unwrap(err)
	}
	return nil
}
