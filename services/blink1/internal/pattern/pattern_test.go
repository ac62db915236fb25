package pattern

import (
	"math"
	"testing"

	"blink1-go/types"
)

func TestIndex_ClampsToZero(t *testing.T) {
	if Index(9) != 9 || Index(10) != 0 || Index(255) != 0 {
		t.Fatal("index coercion changed")
	}
}

func TestPlayer_StartsPaused(t *testing.T) {
	var p Player
	tbl := DefaultStored
	if p.Playing() {
		t.Fatal("player must start paused")
	}
	if _, ok := p.Step(1000, &tbl); ok {
		t.Fatal("paused player produced a line")
	}
}

func TestPlayer_WrapsBackToStart(t *testing.T) {
	var p Player
	tbl := DefaultStored
	now := uint32(500)
	p.Play(3, now)
	start := p.Position()
	var seen []types.PatternLine
	for len(seen) < Len {
		now++
		if l, ok := p.Step(now, &tbl); ok {
			seen = append(seen, l)
		}
	}
	if p.Position() != start {
		t.Fatalf("position after %d steps = %d, want %d", Len, p.Position(), start)
	}
	if seen[0] != tbl[3] || seen[Len-1] != tbl[2] {
		t.Fatalf("wrong order: first=%v last=%v", seen[0], seen[Len-1])
	}
}

func TestPlayer_SchedulesByDuration(t *testing.T) {
	var p Player
	var tbl Table
	tbl[0] = types.PatternLine{Ticks: 5} // 50ms
	tbl[1] = types.PatternLine{Ticks: 1}
	p.Play(0, 100)

	if _, ok := p.Step(100, &tbl); ok {
		t.Fatal("due comparison is strict: nothing at now == next")
	}
	if _, ok := p.Step(101, &tbl); !ok {
		t.Fatal("first line not loaded")
	}
	if _, ok := p.Step(150, &tbl); ok {
		t.Fatal("second line loaded before 50ms elapsed")
	}
	if l, ok := p.Step(151, &tbl); !ok || l != tbl[1] {
		t.Fatalf("second line = %v ok=%v", l, ok)
	}
}

func TestPlayer_AcrossTickWrap(t *testing.T) {
	var p Player
	tbl := DefaultStored
	now := uint32(math.MaxUint32 - 20)
	p.Play(0, now)
	loaded := 0
	for i := 0; i < 3000; i++ {
		now++
		if _, ok := p.Step(now, &tbl); ok {
			loaded++
		}
	}
	// lines 0..3 are 1000ms each: 0 at start, 1 at +1000, 2 at +2000.
	if loaded != 3 {
		t.Fatalf("loaded %d lines across wrap, want 3", loaded)
	}
}

func TestPlayer_OutOfRangePlayPosition(t *testing.T) {
	var p Player
	p.Play(42, 0)
	if p.Position() != 0 || !p.Playing() {
		t.Fatalf("pos=%d playing=%v", p.Position(), p.Playing())
	}
	p.Pause()
	if p.Playing() {
		t.Fatal("pause ignored")
	}
}
