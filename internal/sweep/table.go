package sweep

import (
	"fmt"

	"github.com/pkg/errors"
)

// BuildJobTable returns the job table of a definition.
// A definition that fails to enumerate its jobs, or that defines none, is a configuration error.
func BuildJobTable[R any](def Definition[R]) ([]R, error) {
	jobs, err := def.Jobs()
	if err != nil {
		var e *ErrConfiguration
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, errors.WithStack(&ErrConfiguration{Name: "jobs", Message: err.Error()})
	}
	if len(jobs) == 0 {
		return nil, errors.WithStack(&ErrConfiguration{Name: "jobs", Message: "sweep defines no jobs"})
	}
	return jobs, nil
}

// outputFileNames derives the file name of every job and checks that they are distinct,
// so that no job can overwrite the output of another.
func outputFileNames[R any](def Definition[R], jobs []R) ([]string, error) {
	names := make([]string, len(jobs))
	indexByName := make(map[string]int, len(jobs))
	for i, job := range jobs {
		name := def.OutputFileName(job)
		if err := validatePathElement(fmt.Sprintf("outputFileName[%d]", i), name); err != nil {
			return nil, err
		}
		if j, ok := indexByName[name]; ok {
			return nil, errors.WithStack(&ErrConfiguration{
				Name:    "outputFileName",
				Value:   name,
				Message: fmt.Sprintf("jobs %d and %d derive the same output file", j, i),
			})
		}
		indexByName[name] = i
		names[i] = name
	}
	return names, nil
}
