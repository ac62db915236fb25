package transport

import (
	"context"
	"sync"
	"sync/atomic"

	"blink1-go/errcode"
	"blink1-go/services/blink1/proto"
)

const hidQueueLen = 4

type setReq struct {
	buf  proto.Buffer
	done chan struct{}
}

// HIDEndpoint emulates the device end of the HID feature-report channel.
// The host side calls SetFeature/GetFeature from any goroutine; the device
// loop calls Poll. There is one shared 8-byte buffer, as on the part: a
// SET_REPORT overwrites it and runs the command, a GET_REPORT reads whatever
// it holds.
type HIDEndpoint struct {
	mu       sync.Mutex // guards buf
	buf      proto.Buffer
	session  atomic.Bool
	attached atomic.Bool
	reqs     chan setReq
}

func NewHIDEndpoint() *HIDEndpoint {
	return &HIDEndpoint{reqs: make(chan setReq, hidQueueLen)}
}

// Attach is bus enumeration by a host: from here on the session counts as
// established, for the rest of the power-on.
func (e *HIDEndpoint) Attach() {
	e.session.Store(true)
	e.attached.Store(true)
}

// Detach unplugs the host. The session flag stays set.
func (e *HIDEndpoint) Detach() { e.attached.Store(false) }

// Attached reports whether a host is currently attached.
func (e *HIDEndpoint) Attached() bool { return e.attached.Load() }

func (e *HIDEndpoint) SessionEstablished() bool { return e.session.Load() }

// SetFeature delivers one report (report id first) and waits until the
// device loop has handled it. Returns the report length on success.
func (e *HIDEndpoint) SetFeature(ctx context.Context, report []byte) (int, error) {
	if !e.Attached() {
		return 0, errcode.NotOpen
	}
	r := setReq{buf: proto.FromReport(report), done: make(chan struct{})}
	select {
	case e.reqs <- r:
	case <-ctx.Done():
		return 0, &errcode.E{C: errcode.Busy, Op: "set_feature", Err: ctx.Err()}
	}
	select {
	case <-r.done:
		return len(report), nil
	case <-ctx.Done():
		return 0, &errcode.E{C: errcode.Timeout, Op: "set_feature", Err: ctx.Err()}
	}
}

// GetFeature copies the report id and the shared buffer into report.
func (e *HIDEndpoint) GetFeature(report []byte) (int, error) {
	if !e.Attached() {
		return 0, errcode.NotOpen
	}
	e.mu.Lock()
	r := proto.Report(&e.buf)
	e.mu.Unlock()
	return copy(report, r[:]), nil
}

// Poll runs h for every queued SET_REPORT, without blocking. The handler
// runs without e.mu held, so it may query the endpoint.
func (e *HIDEndpoint) Poll(h Handler) {
	for {
		select {
		case r := <-e.reqs:
			buf := r.buf
			h(&buf)
			e.mu.Lock()
			e.buf = buf
			e.mu.Unlock()
			close(r.done)
		default:
			return
		}
	}
}
