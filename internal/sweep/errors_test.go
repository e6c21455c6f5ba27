package sweep

import (
	"fmt"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestExitCodeFromError(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"nil":                {nil, ExitOK},
		"ErrConfiguration":   {&ErrConfiguration{}, ExitConfiguration},
		"ErrIndexOutOfRange": {&ErrIndexOutOfRange{}, ExitIndexOutOfRange},
		"ErrJobExecution":    {&ErrJobExecution{Cause: errors.New("foo")}, ExitJobExecution},
		"ErrIncompleteSweep": {&ErrIncompleteSweep{}, ExitIncompleteSweep},
		"wrapped":            {errors.WithMessage(&ErrIndexOutOfRange{}, "foo"), ExitIndexOutOfRange},
		"with stack":         {errors.WithStack(&ErrIncompleteSweep{}), ExitIncompleteSweep},
		"multierror":         {multierror.Append(nil, errors.WithStack(&ErrJobExecution{Cause: errors.New("foo")})), ExitJobExecution},
		"pkg.Error":          {errors.New("foo"), ExitUnknown},
		"std wrapped":        {fmt.Errorf("bar: %w", &ErrConfiguration{}), ExitConfiguration},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCodeFromError(tc.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t,
		`value -1 is invalid for "n"; must be positive`,
		(&ErrConfiguration{Name: "n", Value: -1, Message: "must be positive"}).Error())
	assert.Equal(t,
		`invalid sweep configuration for "jobs"; sweep defines no jobs`,
		(&ErrConfiguration{Name: "jobs", Message: "sweep defines no jobs"}).Error())
	assert.Equal(t,
		"job index 5 is out of range; sweep has 3 jobs (valid indices are 0 to 2)",
		(&ErrIndexOutOfRange{Index: 5, Len: 3}).Error())
	assert.Equal(t,
		"job 2 failed: boom",
		(&ErrJobExecution{Index: 2, Cause: errors.New("boom")}).Error())
	assert.Equal(t,
		"sweep is incomplete: 2 of 4 jobs have no output (missing indices: 1, 3)",
		(&ErrIncompleteSweep{Total: 4, Missing: []int{1, 3}}).Error())
}

func TestErrIncompleteSweep_TruncatesLongLists(t *testing.T) {
	missing := make([]int, 25)
	for i := range missing {
		missing[i] = i
	}
	msg := (&ErrIncompleteSweep{Total: 30, Missing: missing}).Error()
	assert.Contains(t, msg, "25 of 30")
	assert.Contains(t, msg, "19, ...")
	assert.NotContains(t, msg, "20")
}
