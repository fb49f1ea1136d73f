// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codec

import (
	"encoding/binary"
	"math"
)

// Writer is the encode-side mirror of Cursor: an append-only big-endian byte
// builder.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated byte sequence.
func (w *Writer) Bytes() []byte { return w.buf }

// Uint8 appends one byte.
func (w *Writer) Uint8(v uint8) {
	w.buf = append(w.buf, v)
}

// Uint16 appends a big-endian uint16.
func (w *Writer) Uint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Uint32 appends a big-endian uint32.
func (w *Writer) Uint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Int32 appends a big-endian int32.
func (w *Writer) Int32(v int32) {
	w.Uint32(uint32(v))
}

// Uint64 appends a big-endian uint64.
func (w *Writer) Uint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Double appends a big-endian IEEE-754 double.
func (w *Writer) Double(v float64) {
	w.Uint64(math.Float64bits(v))
}

// RawBytes appends b verbatim, with no length prefix.
func (w *Writer) RawBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// Extent appends a 4-byte big-endian length prefix followed by b.
func (w *Writer) Extent(b []byte) {
	w.Uint32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}
