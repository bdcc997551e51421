// This file is part of Gekko.
//
// Gekko is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gekko is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gekko.  If not, see <https://www.gnu.org/licenses/>.

// Package savestate provides the byte buffer through which hardware
// sub-systems save and restore their state.
//
// The Buffer type works in one of two directions. A buffer created with
// NewBuffer() records values as they are passed to the Do-style functions;
// a buffer created with NewBufferFromBytes() works the other way, replacing
// the pointed-to values with values read from the buffer. Sub-systems
// implement a single function that works in both directions:
//
//	func (sys *SubSystem) DoState(s *savestate.Buffer) error {
//		s.Int64(&sys.counter)
//		s.Bool(&sys.enabled)
//		return s.Error()
//	}
//
// Marker() inserts/verifies a labelled boundary between sections of the
// buffer. A mismatched marker on read means the buffer has been corrupted
// or that the sub-system's layout has changed.
//
// Values are stored little-endian. The Checksum() function returns a hash
// of the accumulated buffer, suitable for quick integrity comparison of two
// save states.
package savestate

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash"
	"github.com/gekkoemu/gekko/curated"
)

// Buffer is a sequence of bytes being read from or written to by the
// Do-style functions.
type Buffer struct {
	raw     []byte
	pos     int
	reading bool
	err     error
}

// NewBuffer creates a Buffer in the write direction.
func NewBuffer() *Buffer {
	return &Buffer{
		raw: make([]byte, 0, 1024),
	}
}

// NewBufferFromBytes creates a Buffer in the read direction.
func NewBufferFromBytes(raw []byte) *Buffer {
	return &Buffer{
		raw:     raw,
		reading: true,
	}
}

// Reading returns true if the buffer is in the read direction.
func (s *Buffer) Reading() bool {
	return s.reading
}

// Error returns the first error encountered by any Do-style function. Once
// an error has occurred all subsequent operations are no-ops.
func (s *Buffer) Error() error {
	return s.err
}

// Bytes returns the accumulated buffer.
func (s *Buffer) Bytes() []byte {
	return s.raw
}

// Checksum returns a hash of the accumulated buffer.
func (s *Buffer) Checksum() uint64 {
	return xxhash.Sum64(s.raw)
}

// read n bytes from the buffer. returns nil and flags an error if the
// buffer is exhausted.
func (s *Buffer) read(n int) []byte {
	if s.err != nil {
		return nil
	}
	if s.pos+n > len(s.raw) {
		s.err = curated.Errorf("savestate: unexpected end of buffer")
		return nil
	}
	b := s.raw[s.pos : s.pos+n]
	s.pos += n
	return b
}

// Uint8 reads or writes a single byte.
func (s *Buffer) Uint8(v *uint8) {
	if s.reading {
		if b := s.read(1); b != nil {
			*v = b[0]
		}
		return
	}
	s.raw = append(s.raw, *v)
}

// Bool reads or writes a boolean value.
func (s *Buffer) Bool(v *bool) {
	var b uint8
	if *v {
		b = 1
	}
	s.Uint8(&b)
	if s.reading && s.err == nil {
		*v = b != 0
	}
}

// Uint32 reads or writes a 32bit unsigned integer.
func (s *Buffer) Uint32(v *uint32) {
	if s.reading {
		if b := s.read(4); b != nil {
			*v = binary.LittleEndian.Uint32(b)
		}
		return
	}
	s.raw = binary.LittleEndian.AppendUint32(s.raw, *v)
}

// Int32 reads or writes a 32bit signed integer.
func (s *Buffer) Int32(v *int32) {
	u := uint32(*v)
	s.Uint32(&u)
	if s.reading && s.err == nil {
		*v = int32(u)
	}
}

// Uint64 reads or writes a 64bit unsigned integer.
func (s *Buffer) Uint64(v *uint64) {
	if s.reading {
		if b := s.read(8); b != nil {
			*v = binary.LittleEndian.Uint64(b)
		}
		return
	}
	s.raw = binary.LittleEndian.AppendUint64(s.raw, *v)
}

// Int64 reads or writes a 64bit signed integer.
func (s *Buffer) Int64(v *int64) {
	u := uint64(*v)
	s.Uint64(&u)
	if s.reading && s.err == nil {
		*v = int64(u)
	}
}

// Float32 reads or writes a 32bit floating point value.
func (s *Buffer) Float32(v *float32) {
	u := math.Float32bits(*v)
	s.Uint32(&u)
	if s.reading && s.err == nil {
		*v = math.Float32frombits(u)
	}
}

// Float64 reads or writes a 64bit floating point value.
func (s *Buffer) Float64(v *float64) {
	u := math.Float64bits(*v)
	s.Uint64(&u)
	if s.reading && s.err == nil {
		*v = math.Float64frombits(u)
	}
}

// String reads or writes a string, prefixed by its length.
func (s *Buffer) String(v *string) {
	l := uint32(len(*v))
	s.Uint32(&l)
	if s.reading {
		if s.err != nil {
			return
		}
		if b := s.read(int(l)); b != nil {
			*v = string(b)
		}
		return
	}
	s.raw = append(s.raw, *v...)
}

// Marker reads or verifies a labelled boundary between sections of the
// buffer. Returns an error (also available through the Error() function) if
// the marker read from the buffer does not match the label.
func (s *Buffer) Marker(label string) error {
	m := label
	s.String(&m)
	if s.err != nil {
		return s.err
	}
	if s.reading && m != label {
		s.err = curated.Errorf("savestate: marker mismatch (wanted '%s', got '%s')", label, m)
		return s.err
	}
	return nil
}
