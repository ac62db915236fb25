// Package nvstore is the device's non-volatile memory: one calibration byte,
// the boot-mode byte and the pattern table, on an I2C EEPROM.
package nvstore

import (
	"sync"

	"blink1-go/errcode"
	"blink1-go/services/blink1/internal/pattern"
	"blink1-go/types"
)

// Backend is the EEPROM driver. *at24cx.Device satisfies it.
type Backend interface {
	ReadByte(addr uint16) (uint8, error)
	WriteByte(addr uint16, v uint8) error
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
}

// Store serializes all access to the backend. Every write has completed on
// the part when the call returns; a second write cannot start before that.
type Store struct {
	mu sync.Mutex
	be Backend
}

func New(be Backend) *Store { return &Store{be: be} }

// ReadByte returns the byte at addr. The address is passed through as given.
func (s *Store) ReadByte(addr uint16) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.be.ReadByte(addr)
	return v, errcode.Wrap(errcode.IO, "nv_read_byte", err)
}

// WriteByte stores v at addr. The address is passed through as given.
func (s *Store) WriteByte(addr uint16, v uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errcode.Wrap(errcode.IO, "nv_write_byte", s.be.WriteByte(addr, v))
}

// Calibration returns the oscillator calibration byte.
func (s *Store) Calibration() (uint8, error) { return s.ReadByte(AddrCalibration) }

// BootMode returns the boot-mode byte.
func (s *Store) BootMode() (uint8, error) { return s.ReadByte(AddrBootMode) }

// ReadPattern returns the stored line at i (coerced into the table).
func (s *Store) ReadPattern(i uint8) (types.PatternLine, error) {
	var buf [LineSize]byte
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.be.ReadAt(buf[:], lineAddr(pattern.Index(i))); err != nil {
		return types.PatternLine{}, errcode.Wrap(errcode.IO, "nv_read_pattern", err)
	}
	return decodeLine(buf[:]), nil
}

// WritePattern stores l at i (coerced into the table).
func (s *Store) WritePattern(i uint8, l types.PatternLine) error {
	var buf [LineSize]byte
	encodeLine(buf[:], l)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.be.WriteAt(buf[:], lineAddr(pattern.Index(i)))
	return errcode.Wrap(errcode.IO, "nv_write_pattern", err)
}

// LoadPattern reads the whole stored pattern into tbl. On error tbl is left
// untouched.
func (s *Store) LoadPattern(tbl *pattern.Table) error {
	var buf [PatternLen]byte
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.be.ReadAt(buf[:], AddrPattern); err != nil {
		return errcode.Wrap(errcode.IO, "nv_load_pattern", err)
	}
	for i := range tbl {
		tbl[i] = decodeLine(buf[i*LineSize:])
	}
	return nil
}

// Format writes the factory image over the whole region.
func (s *Store) Format() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.be.WriteAt(Image(), 0)
	return errcode.Wrap(errcode.IO, "nv_format", err)
}
