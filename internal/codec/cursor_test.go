// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"testing"
)

func TestWriterCursorRoundTrip(t *testing.T) {
	w := NewWriter()
	w.Uint8(0xAB)
	w.Uint16(0x1234)
	w.Uint32(0xDEADBEEF)
	w.Int32(-42)
	w.Uint64(0x0102030405060708)
	w.Double(3.14159)
	w.Extent([]byte("hello"))
	w.RawBytes([]byte{0xFF, 0xEE})

	c := NewCursor(w.Bytes())

	if v, err := c.Uint8(); err != nil || v != 0xAB {
		t.Fatalf("Uint8() = %#x, %v, want 0xab, nil", v, err)
	}
	if v, err := c.Uint16(); err != nil || v != 0x1234 {
		t.Fatalf("Uint16() = %#x, %v, want 0x1234, nil", v, err)
	}
	if v, err := c.Uint32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("Uint32() = %#x, %v, want 0xdeadbeef, nil", v, err)
	}
	if v, err := c.Int32(); err != nil || v != -42 {
		t.Fatalf("Int32() = %d, %v, want -42, nil", v, err)
	}
	if v, err := c.Uint64(); err != nil || v != 0x0102030405060708 {
		t.Fatalf("Uint64() = %#x, %v, want 0x0102030405060708, nil", v, err)
	}
	if v, err := c.Double(); err != nil || v != 3.14159 {
		t.Fatalf("Double() = %v, %v, want 3.14159, nil", v, err)
	}
	ext, err := c.Extent()
	if err != nil || !bytes.Equal(ext, []byte("hello")) {
		t.Fatalf("Extent() = %q, %v, want %q, nil", ext, err, "hello")
	}
	rest := c.Remainder()
	if !bytes.Equal(rest, []byte{0xFF, 0xEE}) {
		t.Fatalf("Remainder() = %x, want ffee", rest)
	}
	if !c.AtEnd() {
		t.Fatal("AtEnd() = false after consuming every byte")
	}
}

func TestCursorUnderrun(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		read func(*Cursor) error
	}{
		{"uint8 on empty", nil, func(c *Cursor) error { _, err := c.Uint8(); return err }},
		{"uint16 short", []byte{0x01}, func(c *Cursor) error { _, err := c.Uint16(); return err }},
		{"uint32 short", []byte{0x01, 0x02}, func(c *Cursor) error { _, err := c.Uint32(); return err }},
		{"uint64 short", []byte{0x01, 0x02, 0x03}, func(c *Cursor) error { _, err := c.Uint64(); return err }},
		{"double short", []byte{0x01, 0x02}, func(c *Cursor) error { _, err := c.Double(); return err }},
		{"bytes past end", []byte{0x01}, func(c *Cursor) error { _, err := c.Bytes(5); return err }},
		{
			"extent length exceeds remaining",
			[]byte{0x00, 0x00, 0x00, 0x0A, 0x01},
			func(c *Cursor) error { _, err := c.Extent(); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(tt.buf)
			if err := tt.read(c); err != ErrUnderrun {
				t.Fatalf("got err = %v, want ErrUnderrun", err)
			}
		})
	}
}

func TestCursorNoPartialReadOnUnderrun(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02})
	before := c.Pos()
	if _, err := c.Uint32(); err != ErrUnderrun {
		t.Fatalf("Uint32() err = %v, want ErrUnderrun", err)
	}
	if c.Pos() != before {
		t.Fatalf("Pos() advanced on a failed read: %d != %d", c.Pos(), before)
	}
}

func TestCursorBytesCopiesNotAliases(t *testing.T) {
	src := []byte{1, 2, 3, 4}
	c := NewCursor(src)
	got, err := c.Bytes(4)
	if err != nil {
		t.Fatalf("Bytes() err = %v", err)
	}
	got[0] = 0xFF
	if src[0] != 1 {
		t.Fatal("Bytes() returned a slice aliasing the source buffer")
	}
}

func TestCursorLen(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3})
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if _, err := c.Uint8(); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
}
