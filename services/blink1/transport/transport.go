// Package transport delivers command packets into the device loop and carries
// replies back. A transport never runs the handler on its own goroutine: the
// handler is only ever called from Poll, which the device loop calls.
package transport

import "blink1-go/services/blink1/proto"

// Handler processes one packet in place; reply bytes are written into buf.
type Handler func(buf *proto.Buffer)

// Transport is what the device loop polls.
type Transport interface {
	// Poll handles every packet that has fully arrived, then returns.
	Poll(h Handler)
	// SessionEstablished reports whether a host has ever set up the link
	// since power-on.
	SessionEstablished() bool
}

// Multi polls several transports in order. The session counts as
// established once any of them has one.
type Multi []Transport

func (m Multi) Poll(h Handler) {
	for _, t := range m {
		t.Poll(h)
	}
}

func (m Multi) SessionEstablished() bool {
	for _, t := range m {
		if t.SessionEstablished() {
			return true
		}
	}
	return false
}
