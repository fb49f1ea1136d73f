package engineprime

import "github.com/engineprime-go/enginelib/internal/codec"

// FuzzTrackData exercises DecodeTrackData against arbitrary bytes. Kept as
// a plain func rather than a testing.F harness so it can still be driven
// by an external go-fuzz style corpus; the package has no native testing.F
// fuzz targets.
func FuzzTrackData(data []byte) int {
	if _, err := DecodeTrackData(data); err != nil {
		return 0
	}
	return 1
}

// FuzzBeatData exercises DecodeBeatData against arbitrary bytes.
func FuzzBeatData(data []byte) int {
	if _, err := DecodeBeatData(data); err != nil {
		return 0
	}
	return 1
}

// FuzzZlibUnwrap exercises the zlib length-prefixed framing directly,
// independent of any particular blob shape.
func FuzzZlibUnwrap(data []byte) int {
	if _, err := codec.ZlibUnwrap(data); err != nil {
		return 0
	}
	return 1
}
