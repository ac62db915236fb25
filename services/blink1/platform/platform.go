// Package platform assembles device resources for the board being built:
// emulated parts on a host, real peripherals on rp2040.
package platform

import (
	"context"
	"time"

	"blink1-go/services/blink1/internal/clock"
	"blink1-go/services/blink1/internal/nvstore"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/at24cx"
)

// EEPROM geometry of the fitted part (AT24C04-class, 512 bytes).
const (
	EEPROMSize = 512
	EEPROMPage = 32
)

// openStore binds the at24cx driver on bus to a pattern store. addr 0 keeps
// the driver's default address.
func openStore(bus drivers.I2C, addr uint16) *nvstore.Store {
	ee := at24cx.New(bus)
	if addr != 0 {
		ee.Address = addr
	}
	ee.Configure(at24cx.Config{PageSize: EEPROMPage, EndRAMAddress: EEPROMSize})
	return nvstore.New(&ee)
}

// formatIfBlank writes the factory image over an erased part.
func formatIfBlank(s *nvstore.Store) error {
	mode, err := s.BootMode()
	if err != nil {
		return err
	}
	if mode != 0xFF {
		return nil
	}
	println("[platform] blank eeprom, writing factory image")
	return s.Format()
}

// runTicks feeds isr one tick per elapsed millisecond until ctx ends. Late
// wakeups are caught up so the count tracks wall time.
func runTicks(ctx context.Context, isr clock.ISR) {
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()
	start := time.Now()
	var done int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			for target := int64(time.Since(start) / time.Millisecond); done < target; done++ {
				isr.Tick()
			}
		}
	}
}
