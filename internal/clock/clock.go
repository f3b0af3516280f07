// Package clock provides an abstraction for time operations to improve
// testability. Instead of calling time.Now() directly, code uses the Clock
// interface, which can be swapped for a fixed clock in tests to control
// time-dependent behavior (feed pruning, archive sweeps, week bucketing).
package clock

import "time"

// Clock is an interface for time operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Fixed is a Clock that always returns the same instant. Intended for
// tests that need deterministic timestamps.
type Fixed struct {
	Time time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time {
	return f.Time
}

// Ensure both implementations satisfy Clock.
var (
	_ Clock = RealClock{}
	_ Clock = Fixed{}
)
