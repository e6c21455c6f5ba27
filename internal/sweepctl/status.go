package sweepctl

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/armadaproject/sweeprun/internal/sweep"
)

const (
	OutputText = "text"
	OutputYaml = "yaml"
)

// Status prints how many jobs of the sweep have produced output.
func (a *App) Status(format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	s, err := a.sweep()
	if err != nil {
		return err
	}
	status, err := s.Status()
	if err != nil {
		return err
	}
	if format == OutputYaml {
		return a.writeYaml(status)
	}

	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "Folder:\t%s\n", s.Folder())
	fmt.Fprintf(w, "Total:\t%d\n", status.Total)
	fmt.Fprintf(w, "Completed:\t%d\n", len(status.Completed))
	fmt.Fprintf(w, "Missing:\t%d\n", len(status.Missing))
	if !status.Done() {
		fmt.Fprintf(w, "Missing indices:\t%s\n", joinInts(status.Missing))
	}
	return nil
}

// Jobs prints the job table of the sweep.
func (a *App) Jobs(format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	s, err := a.sweep()
	if err != nil {
		return err
	}
	jobs := s.Jobs()
	if format == OutputYaml {
		return a.writeYaml(jobs)
	}

	w := tabwriter.NewWriter(a.Out, 1, 1, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "INDEX\tPATH\tRECORD")
	for _, job := range jobs {
		fmt.Fprintf(w, "%d\t%s\t%s\n", job.Index, job.Path, job.Record)
	}
	return nil
}

func (a *App) writeYaml(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = a.Out.Write(data)
	return errors.WithStack(err)
}

func validateFormat(format string) error {
	if format != OutputText && format != OutputYaml {
		return errors.WithStack(&sweep.ErrConfiguration{
			Name:    "output",
			Value:   format,
			Message: fmt.Sprintf("must be %q or %q", OutputText, OutputYaml),
		})
	}
	return nil
}

func joinInts(values []int) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = strconv.Itoa(v)
	}
	return strings.Join(s, ",")
}
