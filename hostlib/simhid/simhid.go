// Package simhid is a hostlib backend over in-process emulated devices: each
// plugged endpoint shows up as one blink(1) on a virtual USB bus.
package simhid

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"blink1-go/errcode"
	"blink1-go/hostlib"
	"blink1-go/services/blink1/transport"

	"github.com/google/uuid"
)

// Endpoint is the device side of a feature-report channel.
// *transport.HIDEndpoint satisfies it.
type Endpoint interface {
	Attach()
	Detach()
	SetFeature(ctx context.Context, report []byte) (int, error)
	GetFeature(report []byte) (int, error)
}

var _ Endpoint = (*transport.HIDEndpoint)(nil)

type port struct {
	info hostlib.DeviceInfo
	ep   Endpoint
}

// Bus is a virtual USB bus. The zero value is not usable; use New.
type Bus struct {
	mu    sync.Mutex
	next  int
	ports map[string]*port
}

func New() *Bus {
	return &Bus{ports: make(map[string]*port)}
}

// NewSerial returns a random 8 hex digit serial number.
func NewSerial() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Plug connects ep, attaching it as a host would on enumeration. An empty
// serial gets a random one.
func (b *Bus) Plug(ep Endpoint, serial string) hostlib.DeviceInfo {
	if serial == "" {
		serial = NewSerial()
	}
	b.mu.Lock()
	info := hostlib.DeviceInfo{
		Path:      fmt.Sprintf("sim:%d", b.next),
		Serial:    serial,
		VendorID:  hostlib.VendorID,
		ProductID: hostlib.ProductID,
	}
	b.next++
	b.ports[info.Path] = &port{info: info, ep: ep}
	b.mu.Unlock()
	ep.Attach()
	return info
}

// Unplug disconnects the device at path. Open handles start failing with
// errcode.NotOpen.
func (b *Bus) Unplug(path string) {
	b.mu.Lock()
	p, ok := b.ports[path]
	delete(b.ports, path)
	b.mu.Unlock()
	if ok {
		p.ep.Detach()
	}
}

// Enumerate lists the plugged devices in plug order.
func (b *Bus) Enumerate() ([]hostlib.DeviceInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]hostlib.DeviceInfo, 0, len(b.ports))
	for i := 0; i < b.next; i++ {
		if p, ok := b.ports[fmt.Sprintf("sim:%d", i)]; ok {
			out = append(out, p.info)
		}
	}
	return out, nil
}

// OpenPath opens the device at path.
func (b *Bus) OpenPath(path string) (hostlib.Conn, error) {
	b.mu.Lock()
	p, ok := b.ports[path]
	b.mu.Unlock()
	if !ok {
		return nil, &errcode.E{C: errcode.NotFound, Op: "open_path", Msg: path}
	}
	return &conn{ep: p.ep}, nil
}

type conn struct {
	mu     sync.Mutex
	ep     Endpoint
	closed bool
}

func (c *conn) endpoint() (Endpoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errcode.NotOpen
	}
	return c.ep, nil
}

func (c *conn) SetFeature(ctx context.Context, report []byte) (int, error) {
	ep, err := c.endpoint()
	if err != nil {
		return 0, err
	}
	return ep.SetFeature(ctx, report)
}

func (c *conn) GetFeature(report []byte) (int, error) {
	ep, err := c.endpoint()
	if err != nil {
		return 0, err
	}
	return ep.GetFeature(report)
}

func (c *conn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}
