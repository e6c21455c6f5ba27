// Package slurm renders batch scripts that run every job of a sweep as one Slurm array job.
// Each array task selects its job through SLURM_ARRAY_TASK_ID.
package slurm

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/armadaproject/sweeprun/internal/sweep"
)

// ArrayTaskIdEnv is set by Slurm to the index of the array task.
const ArrayTaskIdEnv = "SLURM_ARRAY_TASK_ID"

const mebibyte = 1 << 20

type ScriptOptions struct {
	Resources sweep.Resources
	// Number of jobs in the sweep. The array covers indices 0 to NumJobs-1.
	NumJobs int
	// Maximum number of simultaneously running tasks. 0 means no limit.
	ArrayLimit int
	// Log file pattern, e.g., slurm-%A_%a.out. Omitted if empty.
	Output    string
	Partition string
	// Extra #SBATCH options, e.g., --account=foo.
	ExtraOptions []string
	// Command run by each array task.
	Command []string
}

var batchScript = template.Must(template.New("batch").Parse(`#!/bin/bash
#SBATCH --job-name={{ .JobName }}
#SBATCH --time={{ .Time }}
#SBATCH --mem={{ .MemoryMiB }}
#SBATCH --cpus-per-task={{ .CpusPerTask }}
#SBATCH --array={{ .Array }}
{{- if .Output }}
#SBATCH --output={{ .Output }}
{{- end }}
{{- if .Partition }}
#SBATCH --partition={{ .Partition }}
{{- end }}
{{- range .ExtraOptions }}
#SBATCH {{ . }}
{{- end }}

exec {{ .Command }}
`))

type scriptData struct {
	JobName      string
	Time         string
	MemoryMiB    int64
	CpusPerTask  int
	Array        string
	Output       string
	Partition    string
	ExtraOptions []string
	Command      string
}

// RenderBatchScript returns a bash script with #SBATCH directives requesting opts.Resources
// for each of opts.NumJobs array tasks.
func RenderBatchScript(opts ScriptOptions) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	data := scriptData{
		JobName:      opts.Resources.JobName,
		Time:         opts.Resources.WallTime.String(),
		MemoryMiB:    MemoryMiB(opts.Resources.Memory),
		CpusPerTask:  opts.Resources.CpusPerTask,
		Array:        ArraySpec(opts.NumJobs, opts.ArrayLimit),
		Output:       opts.Output,
		Partition:    opts.Partition,
		ExtraOptions: opts.ExtraOptions,
		Command:      shellquote.Join(opts.Command...),
	}
	var buf bytes.Buffer
	if err := batchScript.Execute(&buf, data); err != nil {
		return "", errors.WithStack(err)
	}
	return buf.String(), nil
}

func (opts ScriptOptions) validate() error {
	if err := opts.Resources.Validate(); err != nil {
		return err
	}
	if opts.NumJobs <= 0 {
		return errors.WithStack(&sweep.ErrConfiguration{Name: "numJobs", Value: opts.NumJobs, Message: "must be positive"})
	}
	if opts.ArrayLimit < 0 {
		return errors.WithStack(&sweep.ErrConfiguration{Name: "arrayLimit", Value: opts.ArrayLimit, Message: "must not be negative"})
	}
	if len(opts.Command) == 0 {
		return errors.WithStack(&sweep.ErrConfiguration{Name: "command", Message: "must not be empty"})
	}
	for _, s := range append([]string{opts.Resources.JobName, opts.Output, opts.Partition}, opts.ExtraOptions...) {
		if strings.ContainsAny(s, "\r\n") {
			return errors.WithStack(&sweep.ErrConfiguration{Name: "slurm", Value: s, Message: "directives must not contain line breaks"})
		}
	}
	for _, option := range opts.ExtraOptions {
		if !strings.HasPrefix(option, "-") {
			return errors.WithStack(&sweep.ErrConfiguration{Name: "extraOptions", Value: option, Message: "must be a command-line option, e.g., --account=foo"})
		}
	}
	return nil
}

// MemoryMiB converts q to whole mebibytes, rounding up, as expected by --mem.
func MemoryMiB(q resource.Quantity) int64 {
	return (q.Value() + mebibyte - 1) / mebibyte
}

// ArraySpec returns the value of --array for a sweep of numJobs jobs.
func ArraySpec(numJobs int, limit int) string {
	if limit > 0 {
		return fmt.Sprintf("0-%d%%%d", numJobs-1, limit)
	}
	return fmt.Sprintf("0-%d", numJobs-1)
}
