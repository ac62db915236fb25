package timex

import "time"

// Due reports whether deadline has passed on a free-running 32-bit tick
// counter. The signed difference keeps the comparison correct across the
// counter's wraparound as long as the two values are less than 2^31 apart.
func Due(now, deadline uint32) bool { return int32(now-deadline) > 0 }

// Elapsed returns now-since on a wrapping counter.
func Elapsed(now, since uint32) uint32 { return now - since }

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint64) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(time.Second) / freqHz
}
