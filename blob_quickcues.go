// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"github.com/engineprime-go/enginelib/internal/codec"
)

const quickCuesBlobVersion = 1

// NumQuickCues is the fixed number of quick-cue slots hardware firmware
// expects, filled or not.
const NumQuickCues = 8

// UnsetCueSample is the sentinel SampleOffset meaning "this cue is unset".
const UnsetCueSample = -1.0

// PadColor is an RGBA pad-light color.
type PadColor struct {
	R, G, B, A uint8
}

// QuickCue is one hot-cue slot.
type QuickCue struct {
	Label        string
	SampleOffset float64 // negative (UnsetCueSample) means unset.
	Color        PadColor
}

// QuickCuesData is the decoded form of the PerformanceData.quickCuesData
// column.
type QuickCuesData struct {
	Cues [NumQuickCues]QuickCue

	AdjustedMainCue float64
	DefaultMainCue  float64
}

// DefaultQuickCuesData is synthesized for a track with no stored blob: every
// cue slot unset.
var DefaultQuickCuesData = newDefaultQuickCuesData()

func newDefaultQuickCuesData() QuickCuesData {
	var d QuickCuesData
	for i := range d.Cues {
		d.Cues[i].SampleOffset = UnsetCueSample
	}
	d.AdjustedMainCue = UnsetCueSample
	d.DefaultMainCue = UnsetCueSample
	return d
}

func encodeString(w *codec.Writer, s string) {
	w.Extent([]byte(s))
}

func decodeString(c *codec.Cursor) (string, error) {
	b, err := c.Extent()
	if err != nil {
		return "", ErrCorruptBlob
	}
	return string(b), nil
}

// EncodeQuickCuesData serializes q into the uncompressed payload form.
func EncodeQuickCuesData(q QuickCuesData) []byte {
	w := codec.NewWriter()
	w.Uint32(quickCuesBlobVersion)
	for _, cue := range q.Cues {
		encodeString(w, cue.Label)
		w.Double(cue.SampleOffset)
		w.Uint8(cue.Color.R)
		w.Uint8(cue.Color.G)
		w.Uint8(cue.Color.B)
		w.Uint8(cue.Color.A)
	}
	w.Double(q.AdjustedMainCue)
	w.Double(q.DefaultMainCue)
	return w.Bytes()
}

// DecodeQuickCuesData parses the uncompressed payload produced by
// EncodeQuickCuesData.
func DecodeQuickCuesData(payload []byte) (QuickCuesData, error) {
	if len(payload) == 0 {
		return DefaultQuickCuesData, nil
	}

	c := codec.NewCursor(payload)
	version, err := c.Uint32()
	if err != nil {
		return QuickCuesData{}, ErrCorruptBlob
	}
	if version != quickCuesBlobVersion {
		return QuickCuesData{}, &UnsupportedBlobVersionError{Shape: "QuickCuesData", Version: int(version)}
	}

	var q QuickCuesData
	for i := range q.Cues {
		label, err := decodeString(c)
		if err != nil {
			return QuickCuesData{}, err
		}
		offset, err := c.Double()
		if err != nil {
			return QuickCuesData{}, ErrCorruptBlob
		}
		r, err := c.Uint8()
		if err != nil {
			return QuickCuesData{}, ErrCorruptBlob
		}
		g, err := c.Uint8()
		if err != nil {
			return QuickCuesData{}, ErrCorruptBlob
		}
		b, err := c.Uint8()
		if err != nil {
			return QuickCuesData{}, ErrCorruptBlob
		}
		a, err := c.Uint8()
		if err != nil {
			return QuickCuesData{}, ErrCorruptBlob
		}
		q.Cues[i] = QuickCue{Label: label, SampleOffset: offset, Color: PadColor{r, g, b, a}}
	}

	if q.AdjustedMainCue, err = c.Double(); err != nil {
		return QuickCuesData{}, ErrCorruptBlob
	}
	if q.DefaultMainCue, err = c.Double(); err != nil {
		return QuickCuesData{}, ErrCorruptBlob
	}
	if !c.AtEnd() {
		return QuickCuesData{}, ErrCorruptBlob
	}
	return q, nil
}
