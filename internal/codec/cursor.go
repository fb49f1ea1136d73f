// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package codec provides the fixed-width, big-endian binary I/O primitives
// shared by every performance-data blob codec: a read cursor, an append-only
// writer, and a zlib framing helper. No primitive performs a partial read or
// write; an operation that would run past the end of the buffer fails with
// ErrUnderrun instead of returning short data.
package codec

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrUnderrun is returned when a read would consume more bytes than remain
// in the cursor.
var ErrUnderrun = errors.New("codec: buffer underrun")

// Cursor reads fixed-width big-endian fields from a byte slice, advancing an
// internal offset. It never panics on short input.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for sequential reading starting at offset zero.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the number of unread bytes remaining.
func (c *Cursor) Len() int { return len(c.buf) - c.pos }

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, ErrUnderrun
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Uint8 reads one byte.
func (c *Cursor) Uint8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads a big-endian uint16.
func (c *Cursor) Uint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Uint32 reads a big-endian uint32.
func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Int32 reads a big-endian int32.
func (c *Cursor) Int32() (int32, error) {
	v, err := c.Uint32()
	return int32(v), err
}

// Uint64 reads a big-endian uint64.
func (c *Cursor) Uint64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// Double reads a big-endian IEEE-754 double.
func (c *Cursor) Double() (float64, error) {
	v, err := c.Uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Bytes reads a raw extent of n bytes.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Extent reads a 4-byte big-endian length prefix followed by that many
// bytes, as used for the waveform entry lists, the beat-grid marker lists
// and the quick-cue and loop labels. The track-data blob holds only
// fixed-width fields and contains no extents.
func (c *Cursor) Extent() ([]byte, error) {
	n, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	return c.Bytes(int(n))
}

// Remainder returns every unread byte and moves the cursor to the end
// ("take_rest"). The blob decoders check for trailing data with AtEnd.
func (c *Cursor) Remainder() []byte {
	b := c.buf[c.pos:]
	c.pos = len(c.buf)
	return b
}

// AtEnd reports whether every byte has been consumed.
func (c *Cursor) AtEnd() bool { return c.pos == len(c.buf) }
