// Package host simulates the game server the infection rules run inside: the
// player roster, the session clock, the announcement feed and the default
// ruleset with its round timer and termination queue.
package host

import "time"

// Clock is the session clock in seconds. It only moves when the simulation
// advances it, so a paused session keeps its countdowns frozen.
type Clock struct {
	now float64
}

// NewClock creates a clock at session time zero.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current session time.
func (c *Clock) Now() float64 {
	return c.now
}

// Advance moves the clock forward by d and returns the new time. Negative
// durations are ignored.
func (c *Clock) Advance(d time.Duration) float64 {
	if d > 0 {
		c.now += d.Seconds()
	}
	return c.now
}

// Set jumps the clock to an absolute time.
func (c *Clock) Set(now float64) {
	c.now = now
}
