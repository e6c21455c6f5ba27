package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/sweeprun/internal/sweep"
	"github.com/armadaproject/sweeprun/internal/sweepctl"
)

// testRoot returns a command tree whose apps write to buf and see env instead of the process environment.
func testRoot(buf *bytes.Buffer, env map[string]string) *cobra.Command {
	return rootCmdWithApp(func() *sweepctl.App {
		app := sweepctl.New()
		app.Out = buf
		app.Getenv = func(key string) string { return env[key] }
		app.Executable = func() (string, error) { return "/usr/bin/sweepctl", nil }
		return app
	})
}

func writeConfig(t *testing.T, contents string) (string, string) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "out")
	path := filepath.Join(dir, "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("pathPrefix: %s\n%s", prefix, contents)), 0o644))
	return path, prefix
}

func execute(t *testing.T, env map[string]string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd := testRoot(buf, env)
	cmd.SetArgs(args)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	err := cmd.Execute()
	return buf.String(), err
}

func TestRun(t *testing.T) {
	config, prefix := writeConfig(t, "example:\n  n: 4\n")
	tests := map[string]struct {
		args []string
		env  map[string]string
		file string
	}{
		"argument":      {[]string{"run", "1"}, nil, "ind1.txt"},
		"flag":          {[]string{"run", "--index", "2"}, nil, "ind2.txt"},
		"array task id": {[]string{"run"}, map[string]string{"SLURM_ARRAY_TASK_ID": "3"}, "ind3.txt"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, tc.env, append(tc.args, "--config", config)...)
			require.NoError(t, err)

			path := filepath.Join(prefix, "example4", tc.file)
			assert.Equal(t, path+"\n", out)
			assert.FileExists(t, path)
		})
	}
}

func TestRun_SkipCompleted(t *testing.T) {
	config, prefix := writeConfig(t, "")
	path := filepath.Join(prefix, "example3", "ind0.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0o644))

	_, err := execute(t, nil, "run", "0", "--skip-completed", "--config", config)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(data))

	_, err = execute(t, nil, "run", "0", "--config", config)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{index:0}\n", string(data))
}

func TestExitCodes(t *testing.T) {
	config, _ := writeConfig(t, "")
	gridConfig, _ := writeConfig(t, `kind: grid
grid:
  name: g
  axes:
    - name: x
      values: [a, b]
  command: [echo, "{{.x}}"]
`)
	tests := map[string]struct {
		args     []string
		exitCode int
	}{
		"success":             {[]string{"count", "--config", config}, sweep.ExitOK},
		"missing index":       {[]string{"run", "--config", config}, sweep.ExitConfiguration},
		"out of range":        {[]string{"run", "3", "--config", config}, sweep.ExitIndexOutOfRange},
		"negative":            {[]string{"run", "--index", "-2", "--config", config}, sweep.ExitIndexOutOfRange},
		"missing config file": {[]string{"count", "--config", "does-not-exist.yaml"}, sweep.ExitConfiguration},
		"incomplete collect":  {[]string{"collect", "--config", gridConfig}, sweep.ExitIncompleteSweep},
		"unknown log format":  {[]string{"count", "--log-format", "xml", "--config", config}, sweep.ExitConfiguration},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, nil, tc.args...)
			assert.Equal(t, tc.exitCode, sweep.ExitCodeFromError(err))
		})
	}
}

func TestCollect_AllowPartial(t *testing.T) {
	config, prefix := writeConfig(t, `kind: grid
grid:
  name: g
  axes:
    - name: x
      values: [a, b]
  command: [echo, "{{.x}}"]
`)
	_, err := execute(t, nil, "run", "1", "--config", config)
	require.NoError(t, err)

	_, err = execute(t, nil, "collect", "--allow-partial", "--config", config)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(prefix, "g-*", "collected.txt"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "# {index:1 x:b}\nb\n", string(data))
}

func TestRunAllAndStatus(t *testing.T) {
	config, _ := writeConfig(t, "example:\n  n: 6\n")

	out, err := execute(t, nil, "run-all", "--parallelism", "3", "--config", config)
	require.NoError(t, err)
	assert.Equal(t, "Ran 6 jobs: 6 succeeded, 0 failed\n", out)

	out, err = execute(t, nil, "status", "-o", "yaml", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "total: 6\n")
	assert.Contains(t, out, "missing: []\n")
}

func TestCount(t *testing.T) {
	config, _ := writeConfig(t, "example:\n  n: 12\n")
	out, err := execute(t, map[string]string{}, "count", "--config", config)
	require.NoError(t, err)
	assert.Equal(t, "12\n", out)
}

func TestScript(t *testing.T) {
	config, _ := writeConfig(t, "example:\n  n: 12\nslurm:\n  partition: short\n")
	out, err := execute(t, nil, "script", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "#SBATCH --array=0-11\n")
	assert.Contains(t, out, "#SBATCH --partition=short\n")
	assert.Contains(t, out, "exec /usr/bin/sweepctl run --config "+config+"\n")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:")
}
