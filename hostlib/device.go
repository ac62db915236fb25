package hostlib

import (
	"context"
	"sync"
	"time"

	"blink1-go/errcode"
	"blink1-go/services/blink1/proto"
	"blink1-go/types"
)

// ReportLen is the size of a feature report: report id plus one packet.
const ReportLen = proto.Size + 1

// Device is an open blink(1). Close is idempotent; every other call on a
// closed device returns errcode.NotOpen.
type Device struct {
	lib  *Library
	info DeviceInfo

	mu   sync.Mutex
	conn Conn // nil once closed
}

func (d *Device) Info() DeviceInfo { return d.info }

// Close releases the device.
func (d *Device) Close() error {
	d.mu.Lock()
	c := d.conn
	d.conn = nil
	d.mu.Unlock()
	if c == nil {
		return nil
	}
	d.lib.log.Info().Str("path", d.info.Path).Msg("closed device")
	return c.Close()
}

func (d *Device) open() (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil, errcode.NotOpen
	}
	return d.conn, nil
}

// Write sends one raw report (report id first).
func (d *Device) Write(ctx context.Context, report []byte) (int, error) {
	c, err := d.open()
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, d.lib.timeout)
	defer cancel()
	n, err := c.SetFeature(ctx, report)
	if err != nil {
		d.lib.log.Warn().Err(err).Str("path", d.info.Path).Msg("set feature failed")
		if errcode.Of(err) == errcode.Error {
			err = errcode.Wrap(errcode.IO, "write", err)
		}
		return 0, err
	}
	return n, nil
}

// Read sends report, waits for the device to act on it and reads the reply
// back into report.
func (d *Device) Read(ctx context.Context, report []byte) (int, error) {
	if _, err := d.Write(ctx, report); err != nil {
		return 0, err
	}
	if d.lib.settle > 0 {
		t := time.NewTimer(d.lib.settle)
		select {
		case <-ctx.Done():
			t.Stop()
			return 0, &errcode.E{C: errcode.Timeout, Op: "read", Err: ctx.Err()}
		case <-t.C:
		}
	}
	c, err := d.open()
	if err != nil {
		return 0, err
	}
	n, err := c.GetFeature(report)
	if err != nil {
		if errcode.Of(err) == errcode.Error {
			err = errcode.Wrap(errcode.IO, "read", err)
		}
		return 0, err
	}
	return n, nil
}

func (d *Device) send(ctx context.Context, cmd proto.Command) error {
	var b proto.Buffer
	cmd.Encode(&b)
	r := proto.Report(&b)
	_, err := d.Write(ctx, r[:])
	return err
}

func (d *Device) query(ctx context.Context, cmd proto.Command) (proto.Buffer, error) {
	var b proto.Buffer
	cmd.Encode(&b)
	r := proto.Report(&b)
	if _, err := d.Read(ctx, r[:]); err != nil {
		return proto.Buffer{}, err
	}
	return proto.FromReport(r[:]), nil
}

// ticks converts milliseconds to the protocol's 10ms units.
func ticks(ms uint16) uint16 { return ms / 10 }

// FadeToRGB fades to c over ms milliseconds.
func (d *Device) FadeToRGB(ctx context.Context, ms uint16, c types.RGB) error {
	return d.send(ctx, proto.Fade{Color: d.lib.mapColor(c), Ticks: ticks(ms)})
}

// SetRGB shows c immediately.
func (d *Device) SetRGB(ctx context.Context, c types.RGB) error {
	return d.send(ctx, proto.SetNow{Color: d.lib.mapColor(c)})
}

// Play starts (on) or pauses the stored pattern at pos.
func (d *Device) Play(ctx context.Context, on bool, pos uint8) error {
	return d.send(ctx, proto.Play{On: on, Position: pos})
}

// WritePatternLine stores a pattern line. Colours are stored as given.
func (d *Device) WritePatternLine(ctx context.Context, ms uint16, c types.RGB, pos uint8) error {
	return d.send(ctx, proto.WritePattern{
		Line:  types.PatternLine{Color: c, Ticks: ticks(ms)},
		Index: pos,
	})
}

// ReadEEPROM reads one persistent byte.
func (d *Device) ReadEEPROM(ctx context.Context, addr uint8) (uint8, error) {
	b, err := d.query(ctx, proto.ReadEE{Addr: addr})
	if err != nil {
		return 0, err
	}
	return proto.ReadEEReply(&b), nil
}

// WriteEEPROM writes one persistent byte.
func (d *Device) WriteEEPROM(ctx context.Context, addr, v uint8) error {
	return d.send(ctx, proto.WriteEE{Addr: addr, Value: v})
}

// SetNightlight stores the boot mode: with on the device plays its pattern
// from power-up.
func (d *Device) SetNightlight(ctx context.Context, on bool) error {
	mode := proto.BootNormal
	if on {
		mode = proto.BootNightlight
	}
	return d.WriteEEPROM(ctx, proto.EEAddrBootMode, mode)
}

// ServerDown arms (on) or disarms the device's dead-man's switch. The host
// must call it again within ms to keep it from firing.
func (d *Device) ServerDown(ctx context.Context, on bool, ms uint16) error {
	return d.send(ctx, proto.ServerDown{On: on, Ticks: ticks(ms)})
}

// Version returns the firmware version as major*100 + minor.
func (d *Device) Version(ctx context.Context) (int, error) {
	b, err := d.query(ctx, proto.Version{})
	if err != nil {
		return 0, err
	}
	major, minor := proto.VersionReply(&b)
	return int(major-'0')*100 + int(minor-'0'), nil
}

// SelfTest runs the '!' exchange and reports whether the device has seen a
// host session.
func (d *Device) SelfTest(ctx context.Context) (bool, error) {
	b, err := d.query(ctx, proto.SelfTest{})
	if err != nil {
		return false, err
	}
	session, ok := proto.SelfTestReply(&b)
	if !ok {
		return false, &errcode.E{C: errcode.IO, Op: "selftest", Msg: "bad magic"}
	}
	return session, nil
}
