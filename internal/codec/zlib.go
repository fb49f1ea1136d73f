// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"io"
)

// ErrTrailingBytes is returned by ZlibUnwrap when the inflated payload's
// length differs from the 4-byte uncompressed length prefix.
var ErrTrailingBytes = errors.New("codec: trailing bytes after decoded payload")

// ZlibWrap compresses payload and prepends the 4-byte big-endian
// uncompressed length, matching the framing every performance-data blob
// column uses on disk.
func ZlibWrap(payload []byte) []byte {
	var body bytes.Buffer
	zw := zlib.NewWriter(&body)
	_, _ = zw.Write(payload)
	_ = zw.Close()

	out := make([]byte, 4, 4+body.Len())
	binary.BigEndian.PutUint32(out, uint32(len(payload)))
	out = append(out, body.Bytes()...)
	return out
}

// ZlibUnwrap reverses ZlibWrap. An empty column is legal and returns a nil
// slice with no error; the caller is responsible for substituting a default
// decoded value in that case.
func ZlibUnwrap(column []byte) ([]byte, error) {
	if len(column) == 0 {
		return nil, nil
	}
	if len(column) < 4 {
		return nil, ErrUnderrun
	}
	wantLen := binary.BigEndian.Uint32(column[:4])

	zr, err := zlib.NewReader(bytes.NewReader(column[4:]))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	if uint32(len(out)) != wantLen {
		return nil, ErrTrailingBytes
	}
	return out, nil
}
