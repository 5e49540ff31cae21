// Package time contains time related helpers
package time

import "time"

// Clock abstracts wall time so sweeps and TTLs are testable
type Clock interface {
	Now() time.Time
}

// Wall is the real clock
type Wall struct{}

// Now returns time.Now
func (Wall) Now() time.Time { return time.Now() }

// Fixed is a manually advanced clock for tests
type Fixed struct{ T time.Time }

// Now returns the fixed instant
func (f *Fixed) Now() time.Time { return f.T }

// Advance moves the fixed clock forward
func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
