package ramp

import (
	"time"

	"blink1-go/x/mathx"
)

// Step sets the new 8-bit level.
type Step func(level uint8)

// Tick waits for d and reports whether to continue (false => cancelled).
type Tick func(d time.Duration) bool

// StartLinear runs a synchronous (caller-driven) integer ramp from cur to to
// in the given number of steps spread over duration. Each step is preceded by
// one Tick. steps==0 or duration==0 snaps to 'to'. The last level set is
// always exactly 'to' unless Tick cancels.
func StartLinear(cur, to uint8, duration time.Duration, steps uint16, tick Tick, set Step) {
	if steps == 0 || duration <= 0 {
		set(to)
		return
	}
	stepDur := duration / time.Duration(steps)
	if stepDur <= 0 {
		stepDur = time.Millisecond
	}
	lvl := cur
	for left := steps; left > 0; left-- {
		if !tick(stepDur) {
			return
		}
		lvl = mathx.StepToward(lvl, to, left)
		set(lvl)
	}
}
