// Package pattern holds the stored colour sequence and its playback cursor.
package pattern

import (
	"blink1-go/types"
	"blink1-go/x/timex"
)

// Len is the fixed number of pattern lines.
const Len = 10

// Table is the RAM working copy of the pattern.
type Table [Len]types.PatternLine

// Index coerces i into the table. Out-of-range indexes map to 0; this is
// what writers in the field rely on, so it is not an error.
func Index(i uint8) uint8 {
	if int(i) >= Len {
		return 0
	}
	return i
}

func line(r, g, b uint8, ticks uint16) types.PatternLine {
	return types.PatternLine{Color: types.RGB{R: r, G: g, B: b}, Ticks: ticks}
}

// DefaultRAM is the pattern compiled into the firmware image. It is only
// shown until the stored pattern is loaded.
var DefaultRAM = Table{
	line(0x11, 0x11, 0x11, 100),
	line(0x44, 0x44, 0x44, 100),
	line(0x88, 0x88, 0x88, 100),
	line(0xff, 0xff, 0xff, 100),
	line(0xff, 0xff, 0xff, 100),
	line(0xff, 0x00, 0xff, 50),
	line(0xff, 0xff, 0x00, 50),
	line(0x00, 0xff, 0xff, 50),
	line(0x00, 0x00, 0x00, 50),
	line(0x00, 0x00, 0x00, 100),
}

// DefaultStored is the factory contents of the persistent pattern.
var DefaultStored = Table{
	line(0xff, 0x01, 0x02, 100),
	line(0x03, 0xff, 0x05, 100),
	line(0x06, 0x07, 0xff, 100),
	line(0xff, 0xff, 0xff, 100),
	line(0xff, 0xff, 0xff, 100),
	line(0xff, 0x00, 0xff, 50),
	line(0xff, 0xff, 0x00, 50),
	line(0x00, 0xff, 0xff, 50),
	line(0x88, 0x88, 0x88, 50),
	line(0x00, 0x00, 0x00, 100),
}

// Player is the play/pause state machine. It starts paused.
type Player struct {
	playing bool
	pos     uint8
	next    uint32 // tick at which the next line is loaded
}

// Play starts (or restarts) playback at pos. The first line is due on the
// next check. pos outside the table starts at 0.
func (p *Player) Play(pos uint8, now uint32) {
	p.playing = true
	p.pos = Index(pos)
	p.next = now
}

// Pause stops loading new lines. A fade already started runs to completion.
func (p *Player) Pause() { p.playing = false }

func (p *Player) Playing() bool   { return p.playing }
func (p *Player) Position() uint8 { return p.pos }

// Step returns the line to fade to when one is due, advancing the cursor with
// wraparound and scheduling the next line after this one's duration.
func (p *Player) Step(now uint32, tbl *Table) (types.PatternLine, bool) {
	if !p.playing || !timex.Due(now, p.next) {
		return types.PatternLine{}, false
	}
	l := tbl[p.pos]
	p.pos++
	if int(p.pos) >= Len {
		p.pos = 0
	}
	p.next += l.Millis()
	return l, true
}
