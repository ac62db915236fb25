package types

import "blink1-go/x/conv"

// ------------------------
// RGB colour
// ------------------------

// RGB is one colour as three 8-bit channels. It is a plain value type.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// Black is the power-on colour.
var Black = RGB{}

// Channels returns the colour as an indexable triple (r, g, b).
func (c RGB) Channels() [3]uint8 { return [3]uint8{c.R, c.G, c.B} }

// String formats the colour as #RRGGBB.
func (c RGB) String() string { return conv.HexRGB(c.R, c.G, c.B) }

// FromChannels is the inverse of Channels.
func FromChannels(ch [3]uint8) RGB { return RGB{R: ch[0], G: ch[1], B: ch[2]} }

// ------------------------
// Pattern line
// ------------------------

// PatternLine is one step of the stored pattern: a colour and the fade time
// to reach it, in tens of milliseconds (16 bits cover ~10.9 minutes).
type PatternLine struct {
	Color RGB    `json:"color" yaml:"color"`
	Ticks uint16 `json:"ticks" yaml:"ticks"`
}

// Millis returns the step duration in milliseconds.
func (p PatternLine) Millis() uint32 { return uint32(p.Ticks) * 10 }
