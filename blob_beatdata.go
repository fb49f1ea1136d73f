// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"github.com/engineprime-go/enginelib/internal/codec"
)

const beatDataBlobVersion = 1

// beatMarkerSize is the fixed on-disk size, in bytes, of one BeatGridMarker:
// 8 (sample offset double) + 4 (beat number) + 4 (beats until next) +
// 1 (source flag).
const beatMarkerSize = 17

// BeatGridMarker is one point in a beat grid: the sample offset of a beat,
// its position within the bar, how many beats follow before the next
// marker, and a flag recording whether the marker came from analysis or a
// manual adjustment.
type BeatGridMarker struct {
	SampleOffset   float64
	BeatNumber     int32
	BeatsUntilNext int32
	Source         uint8
}

// BeatData is the decoded form of the PerformanceData.beatData column.
type BeatData struct {
	SampleRate float64
	Samples    float64
	// Default holds the markers produced by analysis.
	Default []BeatGridMarker
	// Adjusted holds the markers after a manual grid edit, if any.
	Adjusted []BeatGridMarker
}

// DefaultBeatData is the value PerformanceData synthesizes for a track with
// no stored blob.
var DefaultBeatData = BeatData{}

func encodeMarkers(w *codec.Writer, markers []BeatGridMarker) {
	mw := codec.NewWriter()
	for _, m := range markers {
		mw.Double(m.SampleOffset)
		mw.Int32(m.BeatNumber)
		mw.Int32(m.BeatsUntilNext)
		mw.Uint8(m.Source)
	}
	w.Extent(mw.Bytes())
}

func decodeMarkers(c *codec.Cursor) ([]BeatGridMarker, error) {
	raw, err := c.Extent()
	if err != nil {
		return nil, ErrCorruptBlob
	}
	if len(raw)%beatMarkerSize != 0 {
		return nil, ErrCorruptBlob
	}
	n := len(raw) / beatMarkerSize
	if n == 0 {
		return nil, nil
	}

	markers := make([]BeatGridMarker, n)
	mc := codec.NewCursor(raw)
	var prevOffset float64
	for i := 0; i < n; i++ {
		offset, err := mc.Double()
		if err != nil {
			return nil, ErrCorruptBlob
		}
		if i > 0 && offset <= prevOffset {
			return nil, ErrCorruptBlob
		}
		beatNum, err := mc.Int32()
		if err != nil {
			return nil, ErrCorruptBlob
		}
		untilNext, err := mc.Int32()
		if err != nil {
			return nil, ErrCorruptBlob
		}
		source, err := mc.Uint8()
		if err != nil {
			return nil, ErrCorruptBlob
		}
		markers[i] = BeatGridMarker{
			SampleOffset:   offset,
			BeatNumber:     beatNum,
			BeatsUntilNext: untilNext,
			Source:         source,
		}
		prevOffset = offset
	}
	return markers, nil
}

// EncodeBeatData serializes b into the uncompressed payload form.
func EncodeBeatData(b BeatData) []byte {
	w := codec.NewWriter()
	w.Uint32(beatDataBlobVersion)
	w.Double(b.SampleRate)
	w.Double(b.Samples)
	encodeMarkers(w, b.Default)
	encodeMarkers(w, b.Adjusted)
	return w.Bytes()
}

// DecodeBeatData parses the uncompressed payload produced by EncodeBeatData.
// Both marker lists are validated to be strictly increasing by sample
// offset.
func DecodeBeatData(payload []byte) (BeatData, error) {
	if len(payload) == 0 {
		return DefaultBeatData, nil
	}

	c := codec.NewCursor(payload)
	version, err := c.Uint32()
	if err != nil {
		return BeatData{}, ErrCorruptBlob
	}
	if version != beatDataBlobVersion {
		return BeatData{}, &UnsupportedBlobVersionError{Shape: "BeatData", Version: int(version)}
	}

	var b BeatData
	if b.SampleRate, err = c.Double(); err != nil {
		return BeatData{}, ErrCorruptBlob
	}
	if b.Samples, err = c.Double(); err != nil {
		return BeatData{}, ErrCorruptBlob
	}
	if b.Default, err = decodeMarkers(c); err != nil {
		return BeatData{}, err
	}
	if b.Adjusted, err = decodeMarkers(c); err != nil {
		return BeatData{}, err
	}
	if !c.AtEnd() {
		return BeatData{}, ErrCorruptBlob
	}
	return b, nil
}
