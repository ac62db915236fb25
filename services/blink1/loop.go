package blink1

import (
	"context"
	"runtime"
	"time"

	"blink1-go/services/blink1/internal/clock"
	"blink1-go/services/blink1/internal/nvstore"
	"blink1-go/types"
	"blink1-go/x/ramp"
)

// Update runs one scheduler pass. It never blocks.
func (d *Device) Update() {
	now := d.clk.Now()

	if clock.Due(now, d.ledNext) {
		d.ledNext += d.cfg.LEDInterval
		d.stepFade(now)
		d.checkAutostart(now)
	}

	d.checkServerDown(now)

	if l, ok := d.player.Step(now, &d.table); ok {
		d.fader.SetDestination(l.Color, l.Ticks)
		d.publishColor(now)
		d.publishPlay(now, "")
	}
}

func (d *Device) stepFade(now uint32) {
	moved := d.fader.Step()
	if moved {
		d.wasFading = true
		return
	}
	if d.wasFading {
		d.wasFading = false
		d.publishColor(now)
	}
}

func (d *Device) checkAutostart(now uint32) {
	if d.tr.SessionEstablished() || d.player.Playing() || now <= d.cfg.AutostartDelay {
		return
	}
	if err := d.store.LoadPattern(&d.table); err != nil {
		println("[blink1] pattern load failed:", err.Error())
	}
	d.player.Play(0, now)
	println("[blink1] autostart pattern")
	d.publishPlay(now, ReasonAutostart)
}

// Poll is one main-loop iteration: kick the watchdog, service the transport
// (which may run HandleCommand), then advance the scheduler.
func (d *Device) Poll() {
	if d.wdt != nil {
		d.wdt.Update()
	}
	d.tr.Poll(d.HandleCommand)
	d.Update()
}

// Run polls until ctx is done.
func (d *Device) Run(ctx context.Context) {
	d.publishState(LevelRunning, "loop_started")
	for {
		select {
		case <-ctx.Done():
			d.publishState(LevelStopped, "context_cancelled")
			return
		default:
		}
		d.Poll()
		runtime.Gosched()
	}
}

// Boot reads the stored settings, plays the disconnect fade-down and leaves
// the device at black. A stored nightlight boot mode starts the pattern.
// It returns early with ctx's error when cancelled.
func (d *Device) Boot(ctx context.Context) error {
	d.publishState(LevelBooting, "")
	if cal, err := d.store.Calibration(); err == nil {
		println("[blink1] calibration", cal)
	}
	mode, err := d.store.BootMode()
	if err != nil {
		println("[blink1] boot mode read failed:", err.Error())
		mode = nvstore.BootNormal
	}

	if d.cfg.BootFade > 0 {
		var cancelled bool
		ramp.StartLinear(d.cfg.BootLevel, 0, d.cfg.BootFade, d.cfg.BootFadeSteps,
			func(step time.Duration) bool {
				if d.wdt != nil {
					d.wdt.Update()
				}
				t := time.NewTimer(step)
				defer t.Stop()
				select {
				case <-ctx.Done():
					cancelled = true
					return false
				case <-t.C:
					return true
				}
			},
			func(level uint8) {
				d.fader.SetCurrent(types.RGB{R: level, G: level, B: level})
			})
		if cancelled {
			d.publishState(LevelStopped, "boot_cancelled")
			return ctx.Err()
		}
	}

	now := d.clk.Now()
	d.fader.SetDestination(types.Black, 0)
	d.fader.SetCurrent(types.Black)
	d.ledNext = now
	d.publishColor(now)

	if mode == nvstore.BootNightlight {
		if err := d.store.LoadPattern(&d.table); err != nil {
			println("[blink1] pattern load failed:", err.Error())
		}
		d.player.Play(0, now)
		println("[blink1] nightlight boot")
		d.publishPlay(now, ReasonBoot)
	}
	return nil
}
