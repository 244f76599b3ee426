package clock

import "time"

// Clock supplies the current time to components that need it, so tests can
// control time instead of calling time.Now directly.
type Clock interface {
	Now() time.Time
}

type clock struct{}

// New returns a Clock backed by the system time.
func New() Clock {
	return &clock{}
}

func (c *clock) Now() time.Time {
	return time.Now()
}

// ManagedClock is a hand-driven clock for tests.
type ManagedClock struct {
	startTime time.Time
	offset    time.Duration
}

// NewManaged returns a ManagedClock frozen at startTime.
func NewManaged(startTime time.Time) *ManagedClock {
	return &ManagedClock{startTime: startTime}
}

// Now returns the current managed time.
func (c *ManagedClock) Now() time.Time {
	return c.startTime.Add(c.offset)
}

// WarpForward moves the managed time forward and returns the new time.
func (c *ManagedClock) WarpForward(offset time.Duration) time.Time {
	c.offset = c.offset + offset
	return c.startTime.Add(c.offset)
}
