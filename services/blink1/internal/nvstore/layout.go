package nvstore

import (
	"blink1-go/services/blink1/internal/pattern"
	"blink1-go/services/blink1/proto"
	"blink1-go/types"
)

// Persistent layout. Order and sizes are part of the device's compatibility
// surface and must not change between firmware versions.
const (
	AddrCalibration = proto.EEAddrCalibration
	AddrBootMode    = proto.EEAddrBootMode
	AddrPattern     = proto.EEAddrPattern

	LineSize   = 5 // r, g, b, ticks lo, ticks hi
	PatternLen = pattern.Len * LineSize
	RegionLen  = AddrPattern + PatternLen
)

// Boot modes stored at AddrBootMode.
const (
	BootNormal     = proto.BootNormal
	BootNightlight = proto.BootNightlight
)

func lineAddr(i uint8) int64 { return AddrPattern + int64(i)*LineSize }

func encodeLine(dst []byte, l types.PatternLine) {
	dst[0], dst[1], dst[2] = l.Color.R, l.Color.G, l.Color.B
	dst[3] = byte(l.Ticks)
	dst[4] = byte(l.Ticks >> 8)
}

func decodeLine(src []byte) types.PatternLine {
	return types.PatternLine{
		Color: types.RGB{R: src[0], G: src[1], B: src[2]},
		Ticks: uint16(src[3]) | uint16(src[4])<<8,
	}
}

// Image returns the factory image of the region: calibration unset (0xFF),
// normal boot, default stored pattern.
func Image() []byte {
	img := make([]byte, RegionLen)
	img[AddrCalibration] = 0xFF
	img[AddrBootMode] = BootNormal
	for i, l := range pattern.DefaultStored {
		encodeLine(img[lineAddr(uint8(i)):], l)
	}
	return img
}
