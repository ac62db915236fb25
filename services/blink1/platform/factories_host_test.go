//go:build !rp2040

package platform

import (
	"context"
	"testing"
	"time"

	"blink1-go/services/blink1"
	"blink1-go/services/blink1/internal/nvstore"
	"blink1-go/services/blink1/proto"
	"blink1-go/types"
)

func TestOpen_FormatsBlankEEPROM(t *testing.T) {
	b, err := Open(HostConfig{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	img := b.EEPROM.Image()
	want := nvstore.Image()
	for i := range want {
		if img[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, img[i], want[i])
		}
	}
}

func TestOpen_KeepsExistingImage(t *testing.T) {
	img := nvstore.Image()
	img[nvstore.AddrBootMode] = nvstore.BootNightlight
	b, err := Open(HostConfig{EEPROM: img})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if m, _ := b.Resources.Store.BootMode(); m != nvstore.BootNightlight {
		t.Fatalf("boot mode = %d, want nightlight", m)
	}
}

func TestHostBoard_EndToEnd(t *testing.T) {
	b, err := Open(HostConfig{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	dev := blink1.New(blink1.Config{BootFade: -1}, b.Resources)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.Start(ctx)
	go dev.Run(ctx)

	b.HID.Attach()
	var buf proto.Buffer
	proto.SetNow{Color: types.RGB{R: 255, B: 128}}.Encode(&buf)
	report := proto.Report(&buf)

	sctx, scancel := context.WithTimeout(ctx, time.Second)
	defer scancel()
	if _, err := b.HID.SetFeature(sctx, report[:]); err != nil {
		t.Fatalf("SetFeature: %v", err)
	}
	if got := b.LEDs.Last(); got != (types.RGB{R: 255, B: 128}) {
		t.Fatalf("LEDs = %v", got)
	}
	if d := b.Duty(); d[0] != 255 || d[1] != 0 || d[2] != 128 {
		t.Fatalf("duty = %v", d)
	}
}

func TestRunTicks_TracksWallTime(t *testing.T) {
	b, err := Open(HostConfig{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	if n := b.Resources.Clock.Now(); n < 20 || n > 500 {
		t.Fatalf("ticks after 50ms = %d", n)
	}
}
