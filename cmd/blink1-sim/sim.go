package main

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"blink1-go/bus"
	"blink1-go/hostlib"
	"blink1-go/hostlib/serialport"
	"blink1-go/hostlib/simhid"
	"blink1-go/services/blink1"
	"blink1-go/services/blink1/platform"
	"blink1-go/services/heartbeat"
	"blink1-go/types"

	"github.com/rs/zerolog/log"
)

type simDevice struct {
	id    string
	cfg   DeviceConfig
	board *platform.Board
	dev   *blink1.Device
	info  hostlib.DeviceInfo
}

// Sim is a set of emulated devices on one virtual USB bus, the host library
// bound to that bus, and the device currently opened by the REPL.
type Sim struct {
	bus  *bus.Bus
	usb  *simhid.Bus
	lib  *hostlib.Library
	devs []*simDevice
	out  io.Writer

	mu    sync.Mutex
	open  *hostlib.Device
	play  map[string]types.PlayState
	alarm map[string]bool
}

// NewSim builds the devices described by cfg. Nothing runs until Start.
func NewSim(cfg *Config, out io.Writer) (*Sim, error) {
	s := &Sim{
		bus:   bus.NewBus(32),
		usb:   simhid.New(),
		out:   out,
		play:  make(map[string]types.PlayState),
		alarm: make(map[string]bool),
	}
	var be hostlib.Backend = s.usb
	if len(cfg.Host.SerialPorts) > 0 {
		sp := serialport.New(cfg.Host.SerialPorts...)
		sp.Baud = cfg.Host.Baud
		be = hostlib.Join(s.usb, sp)
	}
	s.lib = hostlib.New(be,
		hostlib.WithLogger(log.Logger.With().Str("component", "hostlib").Logger()),
		hostlib.WithDegamma(*cfg.Host.Degamma),
		hostlib.WithSettle(cfg.Host.Settle.Duration()),
		hostlib.WithTimeout(cfg.Host.Timeout.Duration()),
	)

	for i, dc := range cfg.Devices {
		img, err := readImage(dc.EEPROM)
		if err != nil {
			return nil, err
		}
		board, err := platform.Open(platform.HostConfig{EEPROM: img, StartTick: dc.StartTick})
		if err != nil {
			return nil, err
		}
		id := strconv.Itoa(i)
		bootFade := time.Duration(-1)
		if dc.BootFade {
			bootFade = 0
		}
		sd := &simDevice{id: id, cfg: dc, board: board}
		sd.dev = blink1.New(blink1.Config{
			ID:       id,
			Degamma:  dc.Degamma,
			BootFade: bootFade,
			Bus:      s.bus,
			OnServerDown: func(now uint32) {
				log.Warn().Str("device", id).Uint32("tick", now).Msg("server down")
			},
		}, board.Resources)
		s.devs = append(s.devs, sd)
	}
	return s, nil
}

func readImage(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	img, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return img, err
}

// Start boots and runs every device, plugs the configured ones into the
// virtual bus and starts the telemetry monitor.
func (s *Sim) Start(ctx context.Context) {
	mon := s.bus.NewConnection("sim")
	sub := mon.Subscribe(bus.T(blink1.TokBlink1, "#"))
	go s.monitor(ctx, sub)

	for _, d := range s.devs {
		hb := &heartbeat.Service{ID: d.id, Interval: 10 * time.Second, Quiet: true}
		_ = hb.Start(ctx, s.bus.NewConnection("heartbeat-"+d.id))
		d.board.Start(ctx)
		go func(d *simDevice) {
			if err := d.dev.Boot(ctx); err != nil {
				return
			}
			d.dev.Run(ctx)
		}(d)
		if d.cfg.IsPlugged() {
			d.info = s.usb.Plug(d.board.HID, d.cfg.Serial)
			log.Info().Str("device", d.id).Str("serial", d.info.Serial).Str("path", d.info.Path).Msg("plugged")
		} else {
			log.Info().Str("device", d.id).Msg("running on power only")
		}
	}
}

func (s *Sim) monitor(ctx context.Context, sub *bus.Subscription) {
	defer sub.Unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-sub.Channel():
			if len(m.Topic) < 3 {
				continue
			}
			id, leaf := m.Topic[1], m.Topic[2]
			ev := log.Debug().Str("topic", m.Topic.String()).Interface("payload", m.Payload)
			switch p := m.Payload.(type) {
			case types.PlayState:
				s.mu.Lock()
				s.play[id] = p
				s.mu.Unlock()
			case types.ServerDownEvent:
				s.mu.Lock()
				s.alarm[id] = p.Expired
				s.mu.Unlock()
			}
			if leaf == blink1.TokCommand {
				ev = log.Trace().Str("topic", m.Topic.String()).Interface("payload", m.Payload)
			}
			ev.Msg("telemetry")
		}
	}
}

// Save writes the EEPROM image of every device that has a file.
func (s *Sim) Save() error {
	var errs []error
	for _, d := range s.devs {
		if d.cfg.EEPROM == "" {
			continue
		}
		if err := os.WriteFile(d.cfg.EEPROM, d.board.EEPROM.Image(), 0o644); err != nil {
			errs = append(errs, err)
			continue
		}
		log.Info().Str("device", d.id).Str("file", d.cfg.EEPROM).Msg("saved eeprom")
	}
	return errors.Join(errs...)
}

// Close closes the open device handle.
func (s *Sim) Close() {
	s.mu.Lock()
	d := s.open
	s.open = nil
	s.mu.Unlock()
	if d != nil {
		_ = d.Close()
	}
}
