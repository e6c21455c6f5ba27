// Package example implements the simplest sweep: n jobs, each writing the textual form of its
// own record. It is the reference for how a sweep kind plugs into the runner.
package example

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/armadaproject/sweeprun/internal/sweep"
)

const Kind = "example"

type Record struct {
	Index int `yaml:"index"`
}

func (r Record) String() string {
	return fmt.Sprintf("{index:%d}", r.Index)
}

type Sweep struct {
	N int
}

func (s Sweep) Jobs() ([]Record, error) {
	if s.N <= 0 {
		return nil, errors.WithStack(&sweep.ErrConfiguration{Name: "n", Value: s.N, Message: "must be positive"})
	}
	jobs := make([]Record, s.N)
	for i := range jobs {
		jobs[i] = Record{Index: i}
	}
	return jobs, nil
}

// OutputFolder encodes n, so sweeps of different sizes never share a folder.
func (s Sweep) OutputFolder() string {
	return fmt.Sprintf("example%d", s.N)
}

func (s Sweep) OutputFileName(r Record) string {
	return fmt.Sprintf("ind%d.txt", r.Index)
}

func (s Sweep) Execute(_ context.Context, r Record, out io.Writer) error {
	_, err := fmt.Fprintln(out, r.String())
	return errors.WithStack(err)
}

// New returns a runner for an example sweep of n jobs.
func New(config sweep.Config, n int) (*sweep.Runner[Record], error) {
	return sweep.NewRunner[Record](config, Sweep{N: n})
}
