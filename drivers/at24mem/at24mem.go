// Package at24mem emulates an AT24Cxx two-wire serial EEPROM behind the
// tinygo drivers.I2C interface, so code written against the at24cx driver
// runs unchanged on a host.
//
// Protocol, as the chip implements it:
//
//	Tx(addr, []byte{hi, lo, d0, d1, ...}, nil)  // page write from hi:lo
//	Tx(addr, []byte{hi, lo}, buf)               // random read from hi:lo
//
// Page writes wrap inside their page, exactly like the part does.
package at24mem

import (
	"errors"
	"sync"
)

// Address matches the at24cx driver's default.
const Address = 0x57

// Errors returned by the emulator.
var (
	ErrNoDevice = errors.New("at24mem: no device at address")
	ErrProtocol = errors.New("at24mem: protocol error")
)

// Chip is one emulated EEPROM. The zero value is not usable; use New.
type Chip struct {
	mu       sync.Mutex
	addr     uint16
	pageSize int
	mem      []byte
	ptr      int

	writes int   // completed write transactions
	Fail   error // if set, every Tx returns it
}

// New returns an erased (0xFF) chip of size bytes with the given page size.
func New(size, pageSize int) *Chip {
	if pageSize <= 0 {
		pageSize = 32
	}
	c := &Chip{addr: Address, pageSize: pageSize, mem: make([]byte, size)}
	for i := range c.mem {
		c.mem[i] = 0xFF
	}
	return c
}

// SetAddress moves the chip to another bus address.
func (c *Chip) SetAddress(a uint16) { c.addr = a }

// Tx implements drivers.I2C.
func (c *Chip) Tx(addr uint16, w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return c.Fail
	}
	if addr != c.addr {
		return ErrNoDevice
	}
	if len(w) >= 2 {
		c.ptr = (int(w[0])<<8 | int(w[1])) % len(c.mem)
	} else if len(w) == 1 {
		return ErrProtocol
	}
	if data := w[min(len(w), 2):]; len(data) > 0 {
		page := c.ptr - c.ptr%c.pageSize
		off := c.ptr - page
		for _, b := range data {
			c.mem[page+off] = b
			off = (off + 1) % c.pageSize
		}
		c.ptr = page + off
		c.writes++
	}
	for i := range r {
		r[i] = c.mem[c.ptr]
		c.ptr = (c.ptr + 1) % len(c.mem)
	}
	return nil
}

// Writes returns the number of write transactions the chip has accepted.
func (c *Chip) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

// Image returns a copy of the memory contents.
func (c *Chip) Image() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.mem...)
}

// Load replaces the memory contents from img (truncated or 0xFF padded).
func (c *Chip) Load(img []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := copy(c.mem, img)
	for i := n; i < len(c.mem); i++ {
		c.mem[i] = 0xFF
	}
}
