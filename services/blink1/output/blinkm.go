package output

import (
	"blink1-go/types"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/blinkm"
)

// BlinkM mirrors the colour onto a BlinkM I2C smart LED. The BlinkM runs its
// own light script at power-on; Init stops it so it only shows what we send.
type BlinkM struct {
	dev  blinkm.Device
	last types.RGB
	sent bool
}

// NewBlinkM binds a BlinkM at addr (0 selects the factory address).
func NewBlinkM(bus drivers.I2C, addr uint16) *BlinkM {
	d := blinkm.New(bus)
	if addr != 0 {
		d.Address = addr
	}
	return &BlinkM{dev: d}
}

// Init stops the power-on script.
func (b *BlinkM) Init() error {
	return b.dev.StopScript()
}

// SetRGB sends the colour with TO_RGB. Repeats of the last colour are not
// resent.
func (b *BlinkM) SetRGB(c types.RGB) {
	if b.sent && c == b.last {
		return
	}
	_ = b.dev.SetRGB(c.R, c.G, c.B)
	b.last, b.sent = c, true
}
