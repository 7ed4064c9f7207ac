// Package timesource provides an abstraction over time operations for testability.
// Production code uses RealClock, tests can inject Mock for deterministic behavior.
package timesource

import "time"

// Source provides the current time. The chess clock reads time exclusively
// through a Source, exactly once per mutating call.
type Source interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Source using the standard time package.
type RealClock struct{}

// NewRealClock creates a new RealClock.
func NewRealClock() *RealClock {
	return &RealClock{}
}

// Now implements Source.Now using time.Now.
func (c *RealClock) Now() time.Time {
	return time.Now()
}
