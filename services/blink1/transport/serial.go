package transport

import (
	"context"
	"io"
	"sync/atomic"

	"blink1-go/services/blink1/proto"
	"blink1-go/x/shmring"
)

const (
	frameLen    = proto.Size + 1 // report id + payload
	serialRxBuf = 64
)

// Port is a byte stream to the host (a UART on the board).
type Port interface {
	io.Writer
	// RecvSomeContext blocks until at least one byte arrived or ctx ends.
	RecvSomeContext(ctx context.Context, buf []byte) (int, error)
}

// Serial carries the same packets as the HID channel over a byte stream:
// every frame is the report id followed by 8 payload bytes, and every frame
// is answered with the 9-byte reply. Bytes before a report id are dropped,
// which resynchronises after line noise.
type Serial struct {
	port    Port
	rx      *shmring.Ring
	session atomic.Bool
	dropped   atomic.Uint32
	writeErrs atomic.Uint32
}

func NewSerial(port Port) *Serial {
	return &Serial{port: port, rx: shmring.New(serialRxBuf)}
}

// Start launches the receive goroutine. It only fills the ring; packets are
// handled from Poll on the loop goroutine.
func (s *Serial) Start(ctx context.Context) {
	go s.rxLoop(ctx)
}

func (s *Serial) rxLoop(ctx context.Context) {
	buf := make([]byte, frameLen)
	for {
		n, err := s.port.RecvSomeContext(ctx, buf)
		if n > 0 {
			if w := s.rx.Write(buf[:n]); w < n {
				s.dropped.Add(uint32(n - w))
			}
		}
		if err != nil || ctx.Err() != nil {
			return
		}
	}
}

// Feed pushes received bytes directly, for ports that deliver by callback.
func (s *Serial) Feed(b []byte) int { return s.rx.Write(b) }

// Dropped returns the number of received bytes lost to a full ring.
func (s *Serial) Dropped() uint32 { return s.dropped.Load() }

// WriteErrors returns the number of replies the port failed to send.
func (s *Serial) WriteErrors() uint32 { return s.writeErrs.Load() }

func (s *Serial) SessionEstablished() bool { return s.session.Load() }

func (s *Serial) Poll(h Handler) {
	var f [frameLen]byte
	for {
		n := s.rx.Peek(f[:1])
		if n == 0 {
			return
		}
		if f[0] != proto.ReportID {
			s.rx.Discard(1)
			continue
		}
		if s.rx.Available() < frameLen {
			return
		}
		s.rx.Read(f[:])
		s.session.Store(true)
		buf := proto.FromReport(f[:])
		h(&buf)
		r := proto.Report(&buf)
		if _, err := s.port.Write(r[:]); err != nil {
			s.writeErrs.Add(1)
			println("[transport] serial reply write failed:", err.Error())
		}
	}
}
