// Package fader is the colour state: the displayed colour, the colour being
// faded to, and the number of update ticks left to get there.
package fader

import (
	"blink1-go/services/blink1/output"
	"blink1-go/types"
	"blink1-go/x/mathx"
)

// Fader is owned by the device loop; it is not safe for concurrent use.
type Fader struct {
	cur       types.RGB
	dest      types.RGB
	remaining uint16
	out       output.Stage
}

// New returns a fader at black that latches onto out.
func New(out output.Stage) *Fader {
	return &Fader{out: out}
}

// SetDestination starts a fade to c over ticks update steps. A fade in
// progress is replaced. ticks == 0 lands on c at the next Step.
func (f *Fader) SetDestination(c types.RGB, ticks uint16) {
	f.dest = c
	f.remaining = ticks
}

// SetCurrent shows c immediately.
func (f *Fader) SetCurrent(c types.RGB) {
	f.cur = c
	f.push()
}

// Step advances the fade by one update tick. Each channel moves by
// (dest-cur)/remaining, so the last step always lands exactly on dest.
// Once there, Step does nothing until a new destination is set.
func (f *Fader) Step() bool {
	if f.remaining == 0 {
		if f.cur == f.dest {
			return false
		}
		f.cur = f.dest
		f.push()
		return true
	}
	cur, dst := f.cur.Channels(), f.dest.Channels()
	for i := range cur {
		cur[i] = mathx.StepToward(cur[i], dst[i], f.remaining)
	}
	f.cur = types.FromChannels(cur)
	f.remaining--
	f.push()
	return true
}

func (f *Fader) push() {
	if f.out != nil {
		f.out.SetRGB(f.cur)
	}
}

func (f *Fader) Current() types.RGB     { return f.cur }
func (f *Fader) Destination() types.RGB { return f.dest }
func (f *Fader) Remaining() uint16      { return f.remaining }

// Done reports whether the displayed colour has reached the destination.
func (f *Fader) Done() bool { return f.remaining == 0 && f.cur == f.dest }
