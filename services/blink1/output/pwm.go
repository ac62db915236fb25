package output

import (
	"blink1-go/types"
	"blink1-go/x/mathx"
)

// Channel is one hardware PWM output, as provided by the board layer.
type Channel interface {
	Configure(freqHz uint64, top uint16) error
	Set(level uint16)
}

// PWMConfig describes the three LED channels.
type PWMConfig struct {
	Red, Green, Blue Channel
	FreqHz           uint64  // default 1kHz
	Top              uint16  // wrap value, default 255
	ActiveLow        [3]bool // per channel (r, g, b) inversion
}

// PWM drives an RGB LED from three PWM channels.
type PWM struct {
	ch        [3]Channel
	top       uint16
	activeLow [3]bool
}

// NewPWM configures the channels and returns the stage. Channels start dark.
func NewPWM(cfg PWMConfig) (*PWM, error) {
	if cfg.FreqHz == 0 {
		cfg.FreqHz = 1000
	}
	if cfg.Top == 0 {
		cfg.Top = 255
	}
	p := &PWM{
		ch:        [3]Channel{cfg.Red, cfg.Green, cfg.Blue},
		top:       cfg.Top,
		activeLow: cfg.ActiveLow,
	}
	for _, c := range p.ch {
		if err := c.Configure(cfg.FreqHz, cfg.Top); err != nil {
			return nil, err
		}
	}
	p.SetRGB(types.Black)
	return p, nil
}

// toPhys maps a logical 0..255 level to the physical compare value,
// inverting for active-low channels.
func (p *PWM) toPhys(i int, v uint8) uint16 {
	l := mathx.ScaleU8(v, p.top)
	if !p.activeLow[i] {
		return l
	}
	return p.top - l
}

func (p *PWM) SetRGB(c types.RGB) {
	for i, v := range c.Channels() {
		p.ch[i].Set(p.toPhys(i, v))
	}
}
