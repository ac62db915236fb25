// Package gamma maps linear 8-bit brightness requests onto LED drive values
// with an integer log-to-linear ("degamma") curve.
//
// The 0..255 input is treated as 8 octaves of 32 steps; within an octave the
// output grows linearly, and each octave doubles the slope, so equal input
// increments look equally bright. Only integer arithmetic is used so the
// mapping is bit-exact on every target.
package gamma

import "blink1-go/types"

// Degamma returns the perceptually corrected drive value for n.
// It is monotone non-decreasing with Degamma(0)==0 and Degamma(255)==255.
func Degamma(n uint8) uint8 {
	oct := uint32(n) / 32
	pow := uint32(1) << oct
	return uint8((pow - 1) + (pow*(uint32(n)%32+1)+15)/32)
}

var table = func() (t [256]uint8) {
	for i := range t {
		t[i] = Degamma(uint8(i))
	}
	return t
}()

// Table returns the full mapping as a lookup table.
func Table() [256]uint8 { return table }

// Mapper applies Degamma to whole colours when Enabled. A disabled Mapper
// passes values through unchanged.
type Mapper struct {
	Enabled bool
}

func (m Mapper) Map(c types.RGB) types.RGB {
	if !m.Enabled {
		return c
	}
	return types.RGB{R: table[c.R], G: table[c.G], B: table[c.B]}
}

// Channel maps a single channel value.
func (m Mapper) Channel(v uint8) uint8 {
	if !m.Enabled {
		return v
	}
	return table[v]
}
