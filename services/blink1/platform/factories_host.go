//go:build !rp2040

package platform

import (
	"context"
	"sync/atomic"

	"blink1-go/drivers/at24mem"
	"blink1-go/services/blink1"
	"blink1-go/services/blink1/internal/clock"
	"blink1-go/services/blink1/output"
	"blink1-go/services/blink1/transport"
)

// HostConfig describes an emulated board.
type HostConfig struct {
	// EEPROM is the initial chip image. Nil or blank gets the factory image.
	EEPROM []byte
	// Output, when set, also receives every colour shown.
	Output output.Stage
	// Serial adds a framed serial link next to the HID endpoint.
	Serial transport.Port
	// StartTick is the initial tick count.
	StartTick uint32
}

// Board is an emulated device: AT24 EEPROM in memory, HID feature-report
// endpoint, recorded LED output and three PWM channels.
type Board struct {
	Resources blink1.Resources

	HID    *transport.HIDEndpoint
	Serial *transport.Serial
	EEPROM *at24mem.Chip
	LEDs   *output.Recorder

	pwm   [3]*hostChannel
	ticks clock.ISR
}

// Open builds a host board.
func Open(cfg HostConfig) (*Board, error) {
	chip := at24mem.New(EEPROMSize, EEPROMPage)
	if cfg.EEPROM != nil {
		chip.Load(cfg.EEPROM)
	}
	store := openStore(chip, 0)
	if err := formatIfBlank(store); err != nil {
		return nil, err
	}

	b := &Board{
		HID:    transport.NewHIDEndpoint(),
		EEPROM: chip,
		LEDs:   &output.Recorder{},
		pwm:    [3]*hostChannel{{}, {}, {}},
	}
	pwm, err := output.NewPWM(output.PWMConfig{Red: b.pwm[0], Green: b.pwm[1], Blue: b.pwm[2]})
	if err != nil {
		return nil, err
	}

	var tr transport.Transport = b.HID
	if cfg.Serial != nil {
		b.Serial = transport.NewSerial(cfg.Serial)
		tr = transport.Multi{b.HID, b.Serial}
	}

	isr, src := clock.NewCounter(cfg.StartTick).Split()
	b.ticks = isr
	b.Resources = blink1.Resources{
		Clock:     src,
		Transport: tr,
		Output:    output.Fanout{b.LEDs, pwm, cfg.Output},
		Store:     store,
	}
	return b, nil
}

// Start runs the millisecond tick source and the serial reader until ctx ends.
func (b *Board) Start(ctx context.Context) {
	go runTicks(ctx, b.ticks)
	if b.Serial != nil {
		b.Serial.Start(ctx)
	}
}

// Tick advances the clock by one tick; for boards driven by hand.
func (b *Board) Tick() { b.ticks.Tick() }

// Duty returns the PWM compare levels of the three channels.
func (b *Board) Duty() [3]uint16 {
	return [3]uint16{b.pwm[0].get(), b.pwm[1].get(), b.pwm[2].get()}
}

type hostChannel struct {
	level atomic.Uint32
}

func (c *hostChannel) Configure(uint64, uint16) error { return nil }
func (c *hostChannel) Set(level uint16)                { c.level.Store(uint32(level)) }
func (c *hostChannel) get() uint16                     { return uint16(c.level.Load()) }
