package util

import "time"

type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

type DefaultClock struct{}

func (c *DefaultClock) Now() time.Time { return time.Now() }

func (c *DefaultClock) Since(t time.Time) time.Duration { return time.Since(t) }

// DummyClock returns T from Now and advances it by Step on every call,
// so that durations measured in tests are deterministic.
type DummyClock struct {
	T    time.Time
	Step time.Duration
}

func (c *DummyClock) Now() time.Time {
	now := c.T
	c.T = c.T.Add(c.Step)
	return now
}

func (c *DummyClock) Since(t time.Time) time.Duration {
	return c.T.Sub(t)
}
