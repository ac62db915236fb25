// Package serialport is a hostlib backend for boards that expose the command
// channel on a UART instead of USB HID. Every feature report is written as a
// 9-byte frame and the firmware answers each frame with its reply report,
// which GetFeature then returns.
package serialport

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"blink1-go/errcode"
	"blink1-go/hostlib"
	"blink1-go/services/blink1/proto"

	"github.com/tarm/serial"
)

const (
	DefaultBaud        = 115200
	DefaultReadTimeout = 100 * time.Millisecond
)

// Backend lists a fixed set of serial ports. Ports are not probed on
// Enumerate; a port with no firmware behind it fails on the first command.
type Backend struct {
	Ports       []string
	Baud        int
	ReadTimeout time.Duration

	// Dial opens a port. Nil means a real port through tarm/serial.
	Dial func(cfg *serial.Config) (io.ReadWriteCloser, error)
}

// New returns a backend over the named ports at the default baud rate.
func New(ports ...string) *Backend {
	return &Backend{Ports: ports}
}

// Enumerate reports every configured port as a blink(1). The serial number
// is the port's base name, upper-cased.
func (b *Backend) Enumerate() ([]hostlib.DeviceInfo, error) {
	out := make([]hostlib.DeviceInfo, 0, len(b.Ports))
	for _, p := range b.Ports {
		out = append(out, hostlib.DeviceInfo{
			Path:      p,
			Serial:    strings.ToUpper(filepath.Base(p)),
			VendorID:  hostlib.VendorID,
			ProductID: hostlib.ProductID,
		})
	}
	return out, nil
}

func (b *Backend) OpenPath(path string) (hostlib.Conn, error) {
	found := false
	for _, p := range b.Ports {
		if p == path {
			found = true
			break
		}
	}
	if !found {
		return nil, errcode.NotFound
	}
	cfg := &serial.Config{Name: path, Baud: b.Baud, ReadTimeout: b.ReadTimeout}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	dial := b.Dial
	if dial == nil {
		dial = func(c *serial.Config) (io.ReadWriteCloser, error) { return serial.OpenPort(c) }
	}
	rw, err := dial(cfg)
	if err != nil {
		return nil, errcode.Wrap(errcode.IO, "open_port", err)
	}
	return &conn{rw: rw}, nil
}

type flusher interface{ Flush() error }

type conn struct {
	mu     sync.Mutex
	rw     io.ReadWriteCloser
	reply  [hostlib.ReportLen]byte
	closed bool
}

// SetFeature writes one frame and waits for the firmware's reply.
func (c *conn) SetFeature(ctx context.Context, report []byte) (int, error) {
	if len(report) != hostlib.ReportLen {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "set_feature", Msg: "bad report length"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, errcode.NotOpen
	}
	// Drop anything left over from an exchange that timed out.
	if f, ok := c.rw.(flusher); ok {
		_ = f.Flush()
	}
	if _, err := c.rw.Write(report); err != nil {
		return 0, errcode.Wrap(errcode.IO, "set_feature", err)
	}
	if err := c.readReply(ctx); err != nil {
		return 0, err
	}
	return len(report), nil
}

// readReply fills c.reply with the next frame, skipping bytes until a
// report id.
func (c *conn) readReply(ctx context.Context) error {
	var b [1]byte
	n := 0
	for n < len(c.reply) {
		if err := ctx.Err(); err != nil {
			return &errcode.E{C: errcode.Timeout, Op: "read_reply", Err: err}
		}
		k, err := c.rw.Read(b[:])
		if k == 1 {
			if n == 0 && b[0] != proto.ReportID {
				continue
			}
			c.reply[n] = b[0]
			n++
			continue
		}
		// A read timeout surfaces as io.EOF or a zero-length read.
		if err != nil && !errors.Is(err, io.EOF) {
			return errcode.Wrap(errcode.IO, "read_reply", err)
		}
	}
	return nil
}

// GetFeature returns the last reply.
func (c *conn) GetFeature(report []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, errcode.NotOpen
	}
	return copy(report, c.reply[:]), nil
}

func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rw.Close()
}
