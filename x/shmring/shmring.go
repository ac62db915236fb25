package shmring

import "sync/atomic"

// Ring is a single-producer, single-consumer byte ring. The producer side
// (Write, Space) and consumer side (Read, Peek, Discard, Available) may run on
// different goroutines without further locking.
type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32 // consumer index (monotonic)
	wr   atomic.Uint32 // producer index (monotonic)

	readable chan struct{} // 0->>0 available edge
}

// New returns a ring of size bytes. size must be a power of two >= 2.
func New(size int) *Ring {
	if size < 2 || (size&(size-1)) != 0 {
		panic("shmring: size must be power of two >= 2")
	}
	return &Ring{
		buf:      make([]byte, size),
		mask:     uint32(size - 1),
		readable: make(chan struct{}, 1),
	}
}

func (r *Ring) size() uint32 { return uint32(len(r.buf)) }

// Space returns the number of bytes the producer may write.
func (r *Ring) Space() int {
	return int(r.size() - (r.wr.Load() - r.rd.Load()))
}

// Available returns the number of bytes the consumer may read.
func (r *Ring) Available() int {
	return int(r.wr.Load() - r.rd.Load())
}

// Write copies as much of src as fits and returns the count written.
func (r *Ring) Write(src []byte) (n int) {
	rd := r.rd.Load()
	wr := r.wr.Load()
	before := wr - rd
	n = int(r.size() - before)
	if len(src) < n {
		n = len(src)
	}
	if n <= 0 {
		return 0
	}
	for i := 0; i < n; i++ {
		r.buf[(wr+uint32(i))&r.mask] = src[i]
	}
	r.wr.Store(wr + uint32(n)) // release

	if before == 0 {
		select {
		case r.readable <- struct{}{}:
		default:
		}
	}
	return n
}

// Peek copies up to len(dst) readable bytes without consuming them.
func (r *Ring) Peek(dst []byte) (n int) {
	rd := r.rd.Load()
	n = int(r.wr.Load() - rd) // acquire
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = r.buf[(rd+uint32(i))&r.mask]
	}
	return n
}

// Discard drops up to n readable bytes and returns the count dropped.
func (r *Ring) Discard(n int) int {
	rd := r.rd.Load()
	avail := int(r.wr.Load() - rd)
	if n > avail {
		n = avail
	}
	if n <= 0 {
		return 0
	}
	r.rd.Store(rd + uint32(n)) // release
	return n
}

// Read consumes up to len(dst) bytes.
func (r *Ring) Read(dst []byte) int {
	return r.Discard(r.Peek(dst))
}

// Readable signals the empty->non-empty transition.
func (r *Ring) Readable() <-chan struct{} { return r.readable }
