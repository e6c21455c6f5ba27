// Package grid implements a sweep over the Cartesian product of named parameter axes.
// Each job runs a command whose arguments are templated with the job's parameter values
// and captures the command's standard output as the job's output.
package grid

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/armadaproject/sweeprun/internal/common/util"
	"github.com/armadaproject/sweeprun/internal/sweep"
)

const (
	Kind              = "grid"
	CollectedFileName = "collected.txt"
	envPrefix         = "SWEEP_PARAM_"
	// MaxJobs bounds the size of the Cartesian product.
	MaxJobs = 1 << 24
)

var (
	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._=-]`)
	unsafeEnvChars  = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// Axis is one named parameter and the values it takes.
type Axis struct {
	Name   string
	Values []string
}

type Param struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Point is one job of a grid sweep: one value per axis, in axis order.
type Point struct {
	Index  int     `yaml:"index"`
	Params []Param `yaml:"params"`
}

func (p Point) String() string {
	fields := make([]string, 0, len(p.Params)+1)
	fields = append(fields, fmt.Sprintf("index:%d", p.Index))
	for _, param := range p.Params {
		fields = append(fields, fmt.Sprintf("%s:%s", param.Name, param.Value))
	}
	return "{" + strings.Join(fields, " ") + "}"
}

// Values returns the parameter values keyed by axis name.
func (p Point) Values() map[string]string {
	values := make(map[string]string, len(p.Params))
	for _, param := range p.Params {
		values[param.Name] = param.Value
	}
	return values
}

type Sweep struct {
	// Human-readable prefix of the output folder.
	Name    string
	Axes    []Axis
	Command []string
	// Extra environment passed to every job, in KEY=VALUE form.
	Env []string
}

func (s Sweep) validate() error {
	var result *multierror.Error
	if s.Name == "" {
		result = multierror.Append(result, &sweep.ErrConfiguration{Name: "grid.name", Message: "must not be empty"})
	}
	if len(s.Axes) == 0 {
		result = multierror.Append(result, &sweep.ErrConfiguration{Name: "grid.axes", Message: "at least one axis is required"})
	}
	seen := make(map[string]bool, len(s.Axes))
	for i, axis := range s.Axes {
		if axis.Name == "" {
			result = multierror.Append(result, &sweep.ErrConfiguration{Name: fmt.Sprintf("grid.axes[%d].name", i), Message: "must not be empty"})
		} else if seen[axis.Name] {
			result = multierror.Append(result, &sweep.ErrConfiguration{Name: fmt.Sprintf("grid.axes[%d].name", i), Value: axis.Name, Message: "duplicate axis name"})
		}
		seen[axis.Name] = true
		if len(axis.Values) == 0 {
			result = multierror.Append(result, &sweep.ErrConfiguration{Name: fmt.Sprintf("grid.axes[%d].values", i), Message: "at least one value is required"})
		}
	}
	if len(s.Command) == 0 {
		result = multierror.Append(result, &sweep.ErrConfiguration{Name: "grid.command", Message: "must not be empty"})
	}
	for i, arg := range s.Command {
		if _, err := template.New("arg").Option("missingkey=error").Parse(arg); err != nil {
			result = multierror.Append(result, &sweep.ErrConfiguration{Name: fmt.Sprintf("grid.command[%d]", i), Value: arg, Message: err.Error()})
		}
	}
	return result.ErrorOrNil()
}

// Jobs returns the Cartesian product of the axes. The first axis varies slowest.
func (s Sweep) Jobs() ([]Point, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	total := 1
	for _, axis := range s.Axes {
		if total > MaxJobs/len(axis.Values) {
			return nil, errors.WithStack(&sweep.ErrConfiguration{
				Name:    "grid.axes",
				Message: fmt.Sprintf("too many jobs; the product of the axis sizes must not exceed %d", MaxJobs),
			})
		}
		total *= len(axis.Values)
	}
	jobs := make([]Point, total)
	for i := range jobs {
		params := make([]Param, len(s.Axes))
		rem := i
		for a := len(s.Axes) - 1; a >= 0; a-- {
			axis := s.Axes[a]
			params[a] = Param{Name: axis.Name, Value: axis.Values[rem%len(axis.Values)]}
			rem /= len(axis.Values)
		}
		jobs[i] = Point{Index: i, Params: params}
	}
	return jobs, nil
}

// OutputFolder is the sweep name followed by a digest of everything that determines the
// job outputs, so that changing any axis value or the command selects a new folder.
func (s Sweep) OutputFolder() string {
	name := unsafeFileChars.ReplaceAllString(s.Name, "_")
	return name + "-" + s.digest()
}

func (s Sweep) digest() string {
	h := sha256.New()
	writeField(h, "name", s.Name)
	for _, axis := range s.Axes {
		writeField(h, "axis", axis.Name)
		for _, v := range axis.Values {
			writeField(h, "value", v)
		}
	}
	for _, arg := range s.Command {
		writeField(h, "arg", arg)
	}
	for _, env := range s.Env {
		writeField(h, "env", env)
	}
	return hex.EncodeToString(h.Sum(nil))[:12]
}

// writeField writes a length-prefixed field so that no two distinct configurations encode alike.
func writeField(w io.Writer, kind string, value string) {
	fmt.Fprintf(w, "%s:%d:%s;", kind, len(value), value)
}

// OutputFileName encodes the point's parameters. Values that only differ in characters
// that are not safe in file names map to the same name, which the runner rejects.
func (s Sweep) OutputFileName(p Point) string {
	parts := make([]string, len(p.Params))
	for i, param := range p.Params {
		parts[i] = param.Name + "=" + param.Value
	}
	return unsafeFileChars.ReplaceAllString(strings.Join(parts, "_"), "_") + ".txt"
}

func (s Sweep) Execute(ctx context.Context, p Point, out io.Writer) error {
	values := p.Values()
	args := make([]string, len(s.Command))
	for i, arg := range s.Command {
		rendered, err := renderArg(arg, values)
		if err != nil {
			return errors.WithMessagef(err, "error rendering argument %d of command", i)
		}
		args[i] = rendered
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = out
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), s.Env...)
	cmd.Env = append(cmd.Env, "SWEEP_INDEX="+strconv.Itoa(p.Index))
	for _, param := range p.Params {
		cmd.Env = append(cmd.Env, envPrefix+envName(param.Name)+"="+param.Value)
	}
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return errors.Wrapf(err, "command %q failed: %s", strings.Join(args, " "), msg)
		}
		return errors.Wrapf(err, "command %q failed", strings.Join(args, " "))
	}
	return nil
}

func renderArg(arg string, values map[string]string) (string, error) {
	tmpl, err := template.New("arg").Option("missingkey=error").Parse(arg)
	if err != nil {
		return "", errors.WithStack(err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, values); err != nil {
		return "", errors.WithStack(err)
	}
	return b.String(), nil
}

func envName(name string) string {
	return strings.ToUpper(unsafeEnvChars.ReplaceAllString(name, "_"))
}

func (s Sweep) CollectedFileName() string {
	return CollectedFileName
}

// Collect concatenates outputs in job-table order, each preceded by a header naming its point.
// Every block ends with a newline, even if the job's output does not.
func (s Sweep) Collect(_ context.Context, outputs []sweep.Output[Point], out io.Writer) error {
	w := &lineWriter{w: out, terminated: true}
	for _, output := range outputs {
		if _, err := fmt.Fprintf(w, "# %s\n", output.Record); err != nil {
			return errors.WithStack(err)
		}
		if err := copyOutput(output, w); err != nil {
			return err
		}
		if err := w.terminate(); err != nil {
			return err
		}
	}
	return nil
}

func copyOutput(output sweep.Output[Point], out io.Writer) error {
	r, err := output.Open()
	if err != nil {
		return errors.Wrapf(err, "error opening output of job %d", output.Index)
	}
	defer util.CloseResource(output.Path, r)
	if _, err := io.Copy(out, r); err != nil {
		return errors.Wrapf(err, "error reading output of job %d", output.Index)
	}
	return nil
}

// lineWriter tracks whether the last byte written was a newline.
type lineWriter struct {
	w          io.Writer
	terminated bool
}

func (lw *lineWriter) Write(p []byte) (int, error) {
	n, err := lw.w.Write(p)
	if n > 0 {
		lw.terminated = p[n-1] == '\n'
	}
	return n, err
}

// terminate writes a newline unless the output so far ends with one.
func (lw *lineWriter) terminate() error {
	if lw.terminated {
		return nil
	}
	_, err := lw.Write([]byte{'\n'})
	return errors.WithStack(err)
}

// New returns a runner for a grid sweep.
func New(config sweep.Config, s Sweep) (*sweep.Runner[Point], error) {
	return sweep.NewRunner[Point](config, s)
}
