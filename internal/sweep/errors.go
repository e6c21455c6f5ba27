package sweep

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Exit statuses returned by sweepctl for each error kind.
const (
	ExitOK              = 0
	ExitUnknown         = 1
	ExitConfiguration   = 2
	ExitIndexOutOfRange = 3
	ExitJobExecution    = 4
	ExitIncompleteSweep = 5
)

// ErrConfiguration is returned whenever a sweep definition is malformed or degenerate,
// e.g., it defines no jobs or two jobs would write to the same file.
// It invalidates the whole sweep. Value and Message are optional.
type ErrConfiguration struct {
	Name    string      // Name of the offending parameter, e.g., "n"
	Value   interface{} // The invalid value, if any
	Message string      // An optional message explaining why the value is invalid
}

func (err *ErrConfiguration) Error() string {
	s := fmt.Sprintf("invalid sweep configuration for %q", err.Name)
	if err.Value != nil {
		s = fmt.Sprintf("value %v is invalid for %q", err.Value, err.Name)
	}
	if err.Message != "" {
		return s + fmt.Sprintf("; %s", err.Message)
	}
	return s
}

// ErrIndexOutOfRange is returned when a job index outside [0, Len) is requested.
type ErrIndexOutOfRange struct {
	Index int
	Len   int
}

func (err *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("job index %d is out of range; sweep has %d jobs (valid indices are 0 to %d)", err.Index, err.Len, err.Len-1)
}

// ErrJobExecution wraps a failure of the job-specific work for one index.
// It does not affect other indices.
type ErrJobExecution struct {
	Index int
	Cause error
}

func (err *ErrJobExecution) Error() string {
	return fmt.Sprintf("job %d failed: %s", err.Index, err.Cause)
}

func (err *ErrJobExecution) Unwrap() error {
	return err.Cause
}

// ErrIncompleteSweep is returned by Collect when some jobs have not produced output.
type ErrIncompleteSweep struct {
	Total   int
	Missing []int
}

func (err *ErrIncompleteSweep) Error() string {
	const maxListed = 20
	listed := err.Missing
	suffix := ""
	if len(listed) > maxListed {
		listed = listed[:maxListed]
		suffix = ", ..."
	}
	indices := make([]string, len(listed))
	for i, index := range listed {
		indices[i] = fmt.Sprint(index)
	}
	return fmt.Sprintf(
		"sweep is incomplete: %d of %d jobs have no output (missing indices: %s%s)",
		len(err.Missing), err.Total, strings.Join(indices, ", "), suffix,
	)
}

// ExitCodeFromError maps error types to process exit codes.
// Uses errors.As to look through the chain of errors, as opposed to just considering the topmost error in the chain.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitOK
	}
	{
		var e *ErrConfiguration
		if errors.As(err, &e) {
			return ExitConfiguration
		}
	}
	{
		var e *ErrIndexOutOfRange
		if errors.As(err, &e) {
			return ExitIndexOutOfRange
		}
	}
	{
		var e *ErrJobExecution
		if errors.As(err, &e) {
			return ExitJobExecution
		}
	}
	{
		var e *ErrIncompleteSweep
		if errors.As(err, &e) {
			return ExitIncompleteSweep
		}
	}
	return ExitUnknown
}
