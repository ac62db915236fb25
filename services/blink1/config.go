package blink1

import (
	"time"

	"blink1-go/bus"
)

// Config holds the tunables of one device. Zero values take defaults.
type Config struct {
	// ID names the device in telemetry topics (blink1/<ID>/...).
	ID string

	// LEDInterval is the number of ticks between fade steps.
	LEDInterval uint32
	// AutostartDelay is the tick count after which a device with no host
	// session starts playing its stored pattern.
	AutostartDelay uint32

	// Degamma maps colours received by 'c' and 'n' through the gamma
	// curve before display. Pattern lines are shown as stored.
	Degamma bool

	VersionMajor byte
	VersionMinor byte

	// BootFade is the length of the disconnect fade-down played by Boot,
	// from BootLevel to black in BootFadeSteps steps. A negative BootFade
	// skips it.
	BootFade      time.Duration
	BootFadeSteps uint16
	BootLevel     uint8

	// OnServerDown runs from the loop when an armed server-down timer
	// expires. It must not block.
	OnServerDown func(now uint32)

	// Bus receives telemetry when non-nil.
	Bus *bus.Bus
}

const (
	defaultLEDInterval    = 10
	defaultAutostartDelay = 250
	defaultBootFade       = 255 * time.Millisecond
	defaultBootFadeSteps  = 255
	defaultBootLevel      = 255 >> 4
)

func (c Config) withDefaults() Config {
	if c.ID == "" {
		c.ID = "0"
	}
	if c.LEDInterval == 0 {
		c.LEDInterval = defaultLEDInterval
	}
	if c.AutostartDelay == 0 {
		c.AutostartDelay = defaultAutostartDelay
	}
	if c.VersionMajor == 0 && c.VersionMinor == 0 {
		c.VersionMajor, c.VersionMinor = '1', '0'
	}
	if c.BootFade == 0 {
		c.BootFade = defaultBootFade
	}
	if c.BootFadeSteps == 0 {
		c.BootFadeSteps = defaultBootFadeSteps
	}
	if c.BootLevel == 0 {
		c.BootLevel = defaultBootLevel
	}
	return c
}
