// Package clock is the device's millisecond tick counter.
//
// The counter is written from exactly one place, the timer interrupt, and that
// side only ever sees ISR, whose single method is an atomic increment. The main
// loop only ever sees Source. Neither side can do anything else to the
// counter.
package clock

import (
	"sync/atomic"

	"blink1-go/x/timex"
)

// ISR is the interrupt-side view of the counter.
type ISR interface {
	Tick()
}

// Source is the loop-side view of the counter.
type Source interface {
	Now() uint32
}

// Counter is a free-running 32-bit tick counter (~1ms per tick).
type Counter struct {
	n atomic.Uint32
}

// NewCounter returns a counter starting at start. Tests use a start close to
// the 32-bit limit to exercise wraparound.
func NewCounter(start uint32) *Counter {
	c := &Counter{}
	c.n.Store(start)
	return c
}

func (c *Counter) Tick()       { c.n.Add(1) }
func (c *Counter) Now() uint32 { return c.n.Load() }

// Split hands out the two restricted views of one counter.
func (c *Counter) Split() (ISR, Source) { return c, c }

// Due reports whether deadline has passed; wraparound safe.
func Due(now, deadline uint32) bool { return timex.Due(now, deadline) }

// Advance ticks isr n times, as the timer interrupt would over n milliseconds.
func Advance(isr ISR, n int) {
	for i := 0; i < n; i++ {
		isr.Tick()
	}
}
