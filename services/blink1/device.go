// Package blink1 is the device core: it owns the colour state, the pattern
// player, the server-down timer and the command processor, and advances them
// from a single non-blocking loop.
package blink1

import (
	"blink1-go/bus"
	"blink1-go/services/blink1/gamma"
	"blink1-go/services/blink1/internal/clock"
	"blink1-go/services/blink1/internal/fader"
	"blink1-go/services/blink1/internal/nvstore"
	"blink1-go/services/blink1/internal/pattern"
	"blink1-go/services/blink1/output"
	"blink1-go/services/blink1/transport"
	"blink1-go/types"
)

// Watchdog is kicked once per loop pass. machine.Watchdog satisfies it.
type Watchdog interface {
	Update()
}

// Resources are the board-provided collaborators of a device.
type Resources struct {
	Clock     clock.Source
	Transport transport.Transport
	Output    output.Stage
	Store     *nvstore.Store
	Watchdog  Watchdog // optional
}

// Device is driven from one goroutine: Poll, Run, Boot and HandleCommand must
// not be called concurrently. Only the tick counter is shared with an ISR.
type Device struct {
	cfg    Config
	clk    clock.Source
	tr     transport.Transport
	store  *nvstore.Store
	wdt    Watchdog
	mapper gamma.Mapper

	fader   *fader.Fader
	player  pattern.Player
	table   pattern.Table
	ledNext uint32
	sd      serverDown

	conn      *bus.Connection
	wasFading bool
}

// New builds a device showing black with the default RAM pattern.
func New(cfg Config, res Resources) *Device {
	cfg = cfg.withDefaults()
	d := &Device{
		cfg:    cfg,
		clk:    res.Clock,
		tr:     res.Transport,
		store:  res.Store,
		wdt:    res.Watchdog,
		mapper: gamma.Mapper{Enabled: cfg.Degamma},
		fader:  fader.New(res.Output),
		table:  pattern.DefaultRAM,
	}
	if cfg.Bus != nil {
		d.conn = cfg.Bus.NewConnection("blink1-" + cfg.ID)
	}
	d.ledNext = d.clk.Now()
	return d
}

func (d *Device) ID() string { return d.cfg.ID }

// Current is the colour on the output.
func (d *Device) Current() types.RGB { return d.fader.Current() }

// Destination is the colour being faded to.
func (d *Device) Destination() types.RGB { return d.fader.Destination() }

// Remaining is the number of fade steps left.
func (d *Device) Remaining() uint16 { return d.fader.Remaining() }

func (d *Device) Playing() bool   { return d.player.Playing() }
func (d *Device) Position() uint8 { return d.player.Position() }

// Pattern returns the RAM copy of pattern line i (clamped like 'P').
func (d *Device) Pattern(i uint8) types.PatternLine { return d.table[pattern.Index(i)] }

// -----------------------------------------------------------------------------
// Telemetry
// -----------------------------------------------------------------------------

func (d *Device) pub(leaf string, payload any, retained bool) {
	if d.conn == nil {
		return
	}
	d.conn.Publish(d.conn.NewMessage(Topic(d.cfg.ID, leaf), payload, retained))
}

func (d *Device) publishColor(now uint32) {
	d.pub(TokColor, types.ColorValue{
		Current:     d.fader.Current(),
		Destination: d.fader.Destination(),
		Remaining:   d.fader.Remaining(),
		TSms:        now,
	}, true)
}

func (d *Device) publishPlay(now uint32, reason string) {
	d.pub(TokPlay, types.PlayState{
		Playing:  d.player.Playing(),
		Position: d.player.Position(),
		Reason:   reason,
		TSms:     now,
	}, true)
}

func (d *Device) publishState(level, status string) {
	d.pub(TokState, types.DeviceState{Level: level, Status: status, TSms: d.clk.Now()}, true)
}
