//go:build rp2040

package platform

import (
	"context"
	"machine"

	"blink1-go/services/blink1"
	"blink1-go/services/blink1/internal/clock"
	"blink1-go/services/blink1/output"
	"blink1-go/services/blink1/transport"
	"blink1-go/x/mathx"
	"blink1-go/x/timex"

	"github.com/jangala-dev/tinygo-uartx/uartx"
)

// The rp2040 watchdog counter is 24 bits of microseconds, counted twice.
const maxWatchdogMillis = 8388

// BoardConfig selects pins and optional parts.
type BoardConfig struct {
	Red, Green, Blue machine.Pin
	ActiveLow        bool // common-anode LED
	Baud             uint32
	BlinkM           bool // mirror onto a BlinkM on i2c0
	WatchdogMillis   uint32
}

// DefaultConfig is a Pico with an RGB LED on GP16..GP18, the EEPROM on i2c0
// default pins and the host link on uart0.
func DefaultConfig() BoardConfig {
	return BoardConfig{
		Red:            machine.GPIO16,
		Green:          machine.GPIO17,
		Blue:           machine.GPIO18,
		Baud:           115200,
		WatchdogMillis: 1000,
	}
}

// Board is a configured rp2040.
type Board struct {
	Resources blink1.Resources
	Serial    *transport.Serial

	ticks clock.ISR
}

// Open configures the peripherals. It does not start the watchdog or the
// tick source; Start does.
func Open(cfg BoardConfig) (*Board, error) {
	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		return nil, err
	}
	store := openStore(i2c, 0)
	if err := formatIfBlank(store); err != nil {
		println("[platform] eeprom:", err.Error())
	}

	pwm, err := output.NewPWM(output.PWMConfig{
		Red:       newRP2Channel(cfg.Red),
		Green:     newRP2Channel(cfg.Green),
		Blue:      newRP2Channel(cfg.Blue),
		ActiveLow: [3]bool{cfg.ActiveLow, cfg.ActiveLow, cfg.ActiveLow},
	})
	if err != nil {
		return nil, err
	}
	stages := output.Fanout{pwm}
	if cfg.BlinkM {
		bm := output.NewBlinkM(i2c, 0)
		if err := bm.Init(); err != nil {
			println("[platform] blinkm:", err.Error())
		} else {
			stages = append(stages, bm)
		}
	}

	u := uartx.UART0
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: cfg.Baud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	}); err != nil {
		return nil, err
	}
	serial := transport.NewSerial(u)

	wdt := machine.Watchdog
	if err := wdt.Configure(machine.WatchdogConfig{TimeoutMillis: mathx.Clamp(cfg.WatchdogMillis, 1, maxWatchdogMillis)}); err != nil {
		return nil, err
	}

	isr, src := clock.NewCounter(0).Split()
	return &Board{
		Resources: blink1.Resources{
			Clock:     src,
			Transport: serial,
			Output:    stages,
			Store:     store,
			Watchdog:  wdt,
		},
		Serial: serial,
		ticks:  isr,
	}, nil
}

// Start arms the watchdog and runs the tick source and serial reader.
func (b *Board) Start(ctx context.Context) {
	_ = machine.Watchdog.Start()
	go runTicks(ctx, b.ticks)
	b.Serial.Start(ctx)
}

// -----------------------------------------------------------------------------
// PWM channels
// -----------------------------------------------------------------------------

// Local interface to avoid depending on an unexported concrete type in machine.
type pwmCtrl interface {
	Configure(cfg machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

func pwmGroupBySlice(slice uint8) pwmCtrl {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

// rp2Channel is one pin's PWM output. Pins sharing a slice share its period.
type rp2Channel struct {
	pin   machine.Pin
	ctrl  pwmCtrl
	ch    uint8
	top   uint16 // logical resolution
	hwTop uint32
}

func newRP2Channel(pin machine.Pin) *rp2Channel {
	return &rp2Channel{pin: pin, ctrl: pwmGroupBySlice((uint8(pin) >> 1) & 7)}
}

func (c *rp2Channel) Configure(freqHz uint64, top uint16) error {
	top = mathx.Max(top, 1)
	freqHz = mathx.Max(freqHz, 1)
	if err := c.ctrl.Configure(machine.PWMConfig{Period: timex.PeriodFromHz(freqHz)}); err != nil {
		return err
	}
	ch, err := c.ctrl.Channel(c.pin)
	if err != nil {
		return err
	}
	c.ch, c.top, c.hwTop = ch, top, c.ctrl.Top()
	return nil
}

// Set scales level from [0..top] to the controller's [0..Top()].
func (c *rp2Channel) Set(level uint16) {
	if c.top == 0 {
		return
	}
	level = mathx.Min(level, c.top)
	c.ctrl.Set(c.ch, uint32(level)*c.hwTop/uint32(c.top))
}
