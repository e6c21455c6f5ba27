package example

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/sweeprun/internal/sweep"
)

func testConfig(prefix string) sweep.Config {
	return sweep.Config{PathPrefix: prefix, Resources: sweep.DefaultResources()}
}

func TestJobs(t *testing.T) {
	jobs, err := Sweep{N: 3}.Jobs()
	require.NoError(t, err)
	assert.Equal(t, []Record{{Index: 0}, {Index: 1}, {Index: 2}}, jobs)
}

func TestJobs_NonPositive(t *testing.T) {
	for _, n := range []int{0, -4} {
		_, err := New(testConfig(t.TempDir()), n)
		var e *sweep.ErrConfiguration
		require.True(t, errors.As(err, &e), "expected ErrConfiguration for n=%d, got %v", n, err)
		assert.Equal(t, "n", e.Name)
	}
}

func TestOutputFolder_EncodesN(t *testing.T) {
	assert.Equal(t, "example3", Sweep{N: 3}.OutputFolder())
	assert.NotEqual(t, Sweep{N: 3}.OutputFolder(), Sweep{N: 30}.OutputFolder())
}

// Scenario A: n=3 under the current directory.
func TestExecute_WritesRecord(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	runner, err := New(testConfig("."), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, runner.Len())

	path, err := runner.OutputLocation(1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("example3", "ind1.txt"), path)

	require.NoError(t, runner.Execute(context.Background(), 1))

	data, err := os.ReadFile(filepath.Join(dir, "example3", "ind1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "{index:1}\n", string(data))
}

// Scenario B: index beyond the job table.
func TestExecute_OutOfRange(t *testing.T) {
	dir := t.TempDir()
	runner, err := New(testConfig(dir), 3)
	require.NoError(t, err)

	err = runner.Execute(context.Background(), 5)

	var e *sweep.ErrIndexOutOfRange
	require.True(t, errors.As(err, &e))
	assert.NoDirExists(t, filepath.Join(dir, "example3"))
}

// Scenario C: no aggregation is defined.
func TestCollect_Noop(t *testing.T) {
	dir := t.TempDir()
	runner, err := New(testConfig(dir), 3)
	require.NoError(t, err)

	require.NoError(t, runner.Collect(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAllJobs(t *testing.T) {
	dir := t.TempDir()
	runner, err := New(testConfig(dir), 4)
	require.NoError(t, err)
	for i := 0; i < runner.Len(); i++ {
		require.NoError(t, runner.Execute(context.Background(), i))
	}

	status, err := runner.Status()
	require.NoError(t, err)
	assert.True(t, status.Done())
	assert.Equal(t, []int{0, 1, 2, 3}, status.Completed)
}
