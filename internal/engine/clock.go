package engine

import "sync/atomic"

// Clock is a monotonic logical counter.
//
// A session keeps two: one numbers fetch generations, the other stamps
// journal entries. Neither ever uses wall time, so replaying the same calls
// produces the same numbers.
//
// Thread-safety: Clock is safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next increments the clock and returns the new value.
// Calls are linearizable: each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current value without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// Latest reports whether v is the most recent value handed out by Next.
// A fetch uses it to tell whether a newer fetch started while it waited.
func (c *Clock) Latest(v int64) bool {
	return v == c.seq.Load()
}
