package nvstore

import (
	"errors"
	"testing"

	"blink1-go/drivers/at24mem"
	"blink1-go/errcode"
	"blink1-go/services/blink1/internal/pattern"
	"blink1-go/types"

	"tinygo.org/x/drivers/at24cx"
)

func newStore(t *testing.T) (*Store, *at24mem.Chip) {
	t.Helper()
	chip := at24mem.New(512, 32)
	dev := at24cx.New(chip)
	dev.Configure(at24cx.Config{PageSize: 32, EndRAMAddress: 512})
	s := New(&dev)
	if err := s.Format(); err != nil {
		t.Fatalf("Format: %v", err)
	}
	return s, chip
}

func TestLayoutIsStable(t *testing.T) {
	if AddrCalibration != 0 || AddrBootMode != 1 || AddrPattern != 2 || LineSize != 5 || RegionLen != 52 {
		t.Fatal("persistent layout changed")
	}
}

func TestFormat_FactoryImage(t *testing.T) {
	s, _ := newStore(t)
	var tbl pattern.Table
	if err := s.LoadPattern(&tbl); err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	if tbl != pattern.DefaultStored {
		t.Fatalf("stored pattern = %v", tbl)
	}
	if m, _ := s.BootMode(); m != BootNormal {
		t.Fatalf("boot mode = %d", m)
	}
	if c, _ := s.Calibration(); c != 0xFF {
		t.Fatalf("calibration = %#x, want unset", c)
	}
}

func TestWritePattern_ReadBackIdentical(t *testing.T) {
	s, chip := newStore(t)
	l := types.PatternLine{Color: types.RGB{R: 1, G: 2, B: 3}, Ticks: 0xBEEF}
	for i := uint8(0); i < pattern.Len; i++ {
		if err := s.WritePattern(i, l); err != nil {
			t.Fatalf("WritePattern(%d): %v", i, err)
		}
		got, err := s.ReadPattern(i)
		if err != nil || got != l {
			t.Fatalf("ReadPattern(%d) = %v, %v", i, got, err)
		}
	}
	// Little-endian ticks at the documented offsets.
	img := chip.Image()
	if img[2+3] != 0xEF || img[2+4] != 0xBE {
		t.Fatalf("line bytes = %v", img[2:7])
	}
}

func TestWritePattern_OutOfRangeGoesToZero(t *testing.T) {
	s, _ := newStore(t)
	l := types.PatternLine{Color: types.RGB{B: 9}, Ticks: 1}
	if err := s.WritePattern(255, l); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.ReadPattern(0); got != l {
		t.Fatalf("line 0 = %v", got)
	}
}

func TestBytesUnchecked(t *testing.T) {
	s, chip := newStore(t)
	// Addresses past the region reach the part unmodified.
	if err := s.WriteByte(200, 0x42); err != nil {
		t.Fatal(err)
	}
	if v, err := s.ReadByte(200); err != nil || v != 0x42 {
		t.Fatalf("ReadByte(200) = %#x, %v", v, err)
	}
	if chip.Image()[200] != 0x42 {
		t.Fatal("byte not on the part")
	}
}

func TestBackendErrorsAreIO(t *testing.T) {
	s, chip := newStore(t)
	chip.Fail = errors.New("nak")
	var tbl pattern.Table
	tbl[0].Ticks = 77
	if err := s.LoadPattern(&tbl); errcode.Of(err) != errcode.IO {
		t.Fatalf("LoadPattern err = %v", err)
	}
	if tbl[0].Ticks != 77 {
		t.Fatal("table modified on failed load")
	}
	if err := s.WriteByte(0, 1); errcode.Of(err) != errcode.IO {
		t.Fatalf("WriteByte err = %v", err)
	}
}
