package sweep

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/api/resource"
)

// Resources is the scheduler-facing metadata of a sweep. The core never interprets it;
// it is carried so that a submission request can be generated for the whole job array.
type Resources struct {
	// Name of the array job as shown by the scheduler.
	JobName string
	// Wall-clock limit per array task.
	WallTime WallTime
	// Memory request per array task.
	Memory resource.Quantity
	// Number of CPUs per array task.
	CpusPerTask int
}

// DefaultResources returns the resources used when none are configured.
func DefaultResources() Resources {
	return Resources{
		JobName:     "job",
		WallTime:    WallTime(24*time.Hour - time.Second),
		Memory:      resource.MustParse("5G"),
		CpusPerTask: 1,
	}
}

// Validate checks that the resource request is usable.
func (r Resources) Validate() error {
	if r.JobName == "" {
		return errors.WithStack(&ErrConfiguration{Name: "jobName", Message: "must not be empty"})
	}
	if r.WallTime <= 0 {
		return errors.WithStack(&ErrConfiguration{Name: "wallTime", Value: r.WallTime, Message: "must be positive"})
	}
	if r.Memory.Sign() <= 0 {
		return errors.WithStack(&ErrConfiguration{Name: "memory", Value: r.Memory.String(), Message: "must be positive"})
	}
	if r.CpusPerTask <= 0 {
		return errors.WithStack(&ErrConfiguration{Name: "cpusPerTask", Value: r.CpusPerTask, Message: "must be positive"})
	}
	return nil
}

// WallTime is a wall-clock limit. Its text form is the one understood by Slurm:
// days-hours:minutes:seconds, e.g., 0-23:59:59.
type WallTime time.Duration

// ParseWallTime accepts all Slurm time formats:
// "minutes", "minutes:seconds", "hours:minutes:seconds", "days-hours",
// "days-hours:minutes" and "days-hours:minutes:seconds".
func ParseWallTime(s string) (WallTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.Errorf("empty wall time")
	}

	days := 0
	rest := s
	hasDays := false
	if i := strings.Index(s, "-"); i >= 0 {
		d, err := parseTimeField(s[:i], s)
		if err != nil {
			return 0, err
		}
		days = d
		rest = s[i+1:]
		hasDays = true
	}

	parts := strings.Split(rest, ":")
	fields := make([]int, len(parts))
	for i, p := range parts {
		v, err := parseTimeField(p, s)
		if err != nil {
			return 0, err
		}
		fields[i] = v
	}

	var hours, minutes, seconds int
	switch {
	case hasDays && len(fields) == 1:
		hours = fields[0]
	case hasDays && len(fields) == 2:
		hours, minutes = fields[0], fields[1]
	case len(fields) == 3:
		hours, minutes, seconds = fields[0], fields[1], fields[2]
	case !hasDays && len(fields) == 1:
		minutes = fields[0]
	case !hasDays && len(fields) == 2:
		minutes, seconds = fields[0], fields[1]
	default:
		return 0, errors.Errorf("invalid wall time %q", s)
	}

	total := int64(0)
	for _, f := range []struct {
		value int
		unit  int64
	}{{days, 86400}, {hours, 3600}, {minutes, 60}, {seconds, 1}} {
		if int64(f.value) > (maxWallTimeSeconds-total)/f.unit {
			return 0, errors.Errorf("wall time %q is too long; must not exceed %s", s, WallTime(maxWallTimeSeconds*int64(time.Second)))
		}
		total += int64(f.value) * f.unit
	}
	return WallTime(time.Duration(total) * time.Second), nil
}

// maxWallTimeSeconds is the longest wall time representable as a time.Duration, about 106751 days.
const maxWallTimeSeconds = int64(math.MaxInt64 / time.Second)

func parseTimeField(field string, whole string) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil || v < 0 {
		return 0, errors.Errorf("invalid wall time %q", whole)
	}
	return v, nil
}

// MustParseWallTime is like ParseWallTime but panics on error.
func MustParseWallTime(s string) WallTime {
	w, err := ParseWallTime(s)
	if err != nil {
		panic(err)
	}
	return w
}

// Duration returns the wall time as a time.Duration.
func (w WallTime) Duration() time.Duration {
	return time.Duration(w)
}

// String formats the wall time as days-hours:minutes:seconds, rounding up to whole seconds.
func (w WallTime) String() string {
	d := time.Duration(w)
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	if d%time.Second > 0 {
		total++
	}
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%d-%02d:%02d:%02d", days, hours, minutes, seconds)
}
