// Package proto is the 8-byte command/reply packet exchanged with the host.
//
// Every packet is a fixed Buffer whose byte 0 selects the operation. The
// buffer is reused for the reply: operations that answer overwrite the same
// bytes they were given. Command values are a closed set of tagged variants
// with an explicit Encode/Decode boundary onto the wire form.
//
//	'c' fade-to-RGB      {'c', r, g, b, th, tl, 0, 0}
//	'n' set-RGB-now      {'n', r, g, b, 0, 0, 0, 0}
//	'p' play/pause       {'p', on, pos, 0, 0, 0, 0, 0}
//	'P' write pattern    {'P', r, g, b, th, tl, i, 0}
//	'e' read EEPROM      {'e', addr, ...}     reply: byte 2 = value
//	'E' write EEPROM     {'E', addr, val, ...}
//	'D' server-down      {'D', on, 0, 0, th, tl, 0, 0}
//	'v' version          {'v', ...}           reply: bytes 1,2 = major, minor
//	'!' self-test        {'!', ...}           reply: {0x55, 0xAA, session}
//
// Times are big-endian counts of 10ms ticks.
package proto

import "blink1-go/types"

// Size is the payload length of every packet.
const Size = 8

// ReportID precedes the payload on the host side of the HID channel only.
const ReportID = 0x01

// Buffer is the shared request/reply packet.
type Buffer [Size]byte

// Opcodes.
const (
	OpFade         byte = 'c'
	OpSetNow       byte = 'n'
	OpPlay         byte = 'p'
	OpWritePattern byte = 'P'
	OpReadEE       byte = 'e'
	OpWriteEE      byte = 'E'
	OpServerDown   byte = 'D'
	OpVersion      byte = 'v'
	OpSelfTest     byte = '!'
)

// Self-test reply markers.
const (
	SelfTestMagic0 = 0x55
	SelfTestMagic1 = 0xAA
)

// Command is one decoded packet.
type Command interface {
	Op() byte
	Encode(b *Buffer)
}

type (
	Fade struct {
		Color types.RGB
		Ticks uint16
	}
	SetNow struct {
		Color types.RGB
	}
	Play struct {
		On       bool
		Position uint8
	}
	WritePattern struct {
		Line  types.PatternLine
		Index uint8
	}
	ReadEE struct {
		Addr uint8
	}
	WriteEE struct {
		Addr  uint8
		Value uint8
	}
	ServerDown struct {
		On    bool
		Ticks uint16
	}
	Version  struct{}
	SelfTest struct{}
	// Unknown carries any opcode outside the closed set, untouched.
	Unknown struct {
		Raw Buffer
	}
)

func (Fade) Op() byte         { return OpFade }
func (SetNow) Op() byte       { return OpSetNow }
func (Play) Op() byte         { return OpPlay }
func (WritePattern) Op() byte { return OpWritePattern }
func (ReadEE) Op() byte       { return OpReadEE }
func (WriteEE) Op() byte      { return OpWriteEE }
func (ServerDown) Op() byte   { return OpServerDown }
func (Version) Op() byte      { return OpVersion }
func (SelfTest) Op() byte     { return OpSelfTest }
func (u Unknown) Op() byte    { return u.Raw[0] }

// ---- wire helpers ----

func u16(hi, lo byte) uint16 { return uint16(hi)<<8 | uint16(lo) }

func putU16(dst []byte, v uint16) {
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}

func putRGB(dst []byte, c types.RGB) {
	dst[0], dst[1], dst[2] = c.R, c.G, c.B
}

func rgbAt(b *Buffer, i int) types.RGB {
	return types.RGB{R: b[i], G: b[i+1], B: b[i+2]}
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// ---- encode ----

func (c Fade) Encode(b *Buffer) {
	*b = Buffer{OpFade}
	putRGB(b[1:4], c.Color)
	putU16(b[4:6], c.Ticks)
}

func (c SetNow) Encode(b *Buffer) {
	*b = Buffer{OpSetNow}
	putRGB(b[1:4], c.Color)
}

func (c Play) Encode(b *Buffer) {
	*b = Buffer{OpPlay, boolByte(c.On), c.Position}
}

func (c WritePattern) Encode(b *Buffer) {
	*b = Buffer{OpWritePattern}
	putRGB(b[1:4], c.Line.Color)
	putU16(b[4:6], c.Line.Ticks)
	b[6] = c.Index
}

func (c ReadEE) Encode(b *Buffer)  { *b = Buffer{OpReadEE, c.Addr} }
func (c WriteEE) Encode(b *Buffer) { *b = Buffer{OpWriteEE, c.Addr, c.Value} }

func (c ServerDown) Encode(b *Buffer) {
	*b = Buffer{OpServerDown, boolByte(c.On)}
	putU16(b[4:6], c.Ticks)
}

func (Version) Encode(b *Buffer)   { *b = Buffer{OpVersion} }
func (SelfTest) Encode(b *Buffer)  { *b = Buffer{OpSelfTest} }
func (u Unknown) Encode(b *Buffer) { *b = u.Raw }

// ---- decode ----

// Decode maps a received packet onto its variant. Field values are taken as
// they come; range handling is the receiver's business.
func Decode(b *Buffer) Command {
	switch b[0] {
	case OpFade:
		return Fade{Color: rgbAt(b, 1), Ticks: u16(b[4], b[5])}
	case OpSetNow:
		return SetNow{Color: rgbAt(b, 1)}
	case OpPlay:
		return Play{On: b[1] != 0, Position: b[2]}
	case OpWritePattern:
		return WritePattern{
			Line:  types.PatternLine{Color: rgbAt(b, 1), Ticks: u16(b[4], b[5])},
			Index: b[6],
		}
	case OpReadEE:
		return ReadEE{Addr: b[1]}
	case OpWriteEE:
		return WriteEE{Addr: b[1], Value: b[2]}
	case OpServerDown:
		return ServerDown{On: b[1] != 0, Ticks: u16(b[4], b[5])}
	case OpVersion:
		return Version{}
	case OpSelfTest:
		return SelfTest{}
	default:
		return Unknown{Raw: *b}
	}
}
