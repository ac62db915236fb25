//go:build rp2040

// Firmware entry for an RP2040 blink(1): RGB LED on PWM, pattern store in an
// I2C EEPROM, host commands over uart0.
package main

import (
	"context"
	"time"

	"blink1-go/bus"
	"blink1-go/services/blink1"
	"blink1-go/services/blink1/platform"
	"blink1-go/services/heartbeat"
	"blink1-go/types"
)

func main() {
	ctx := context.Background()

	println("[main] configuring board …")
	board, err := platform.Open(platform.DefaultConfig())
	if err != nil {
		println("[main] board:", err.Error())
		select {}
	}

	b := bus.NewBus(4)
	mon := b.NewConnection("monitor").Subscribe(bus.T(blink1.TokBlink1, "+", blink1.TokPlay))
	go func() {
		for m := range mon.Channel() {
			if p, ok := m.Payload.(types.PlayState); ok && p.Reason != "" {
				println("[monitor] play", p.Playing, "reason", p.Reason)
			}
		}
	}()
	hb := &heartbeat.Service{Interval: 5 * time.Second}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	dev := blink1.New(blink1.Config{
		Bus: b,
		OnServerDown: func(now uint32) {
			println("[main] host went away at tick", now)
		},
	}, board.Resources)

	board.Start(ctx)
	if err := dev.Boot(ctx); err != nil {
		println("[main] boot:", err.Error())
	}
	println("[main] running")
	dev.Run(ctx)
}
