// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"github.com/engineprime-go/enginelib/internal/codec"
)

const loopsBlobVersion = 1

// NumLoops is the fixed number of saved-loop slots hardware firmware
// expects, filled or not.
const NumLoops = 8

// SavedLoop is one loop slot.
type SavedLoop struct {
	Label      string
	Start      float64
	End        float64
	IsStartSet bool
	IsEndSet   bool
	Color      PadColor
}

// LoopsData is the decoded form of the PerformanceData.loopsData column.
type LoopsData struct {
	Loops [NumLoops]SavedLoop
}

// DefaultLoopsData is synthesized for a track with no stored blob: every
// loop slot unset.
var DefaultLoopsData = LoopsData{}

func encodeBool(w *codec.Writer, b bool) {
	if b {
		w.Uint8(1)
	} else {
		w.Uint8(0)
	}
}

func decodeBool(c *codec.Cursor) (bool, error) {
	v, err := c.Uint8()
	if err != nil {
		return false, ErrCorruptBlob
	}
	return v != 0, nil
}

// EncodeLoopsData serializes l into the uncompressed payload form.
func EncodeLoopsData(l LoopsData) []byte {
	w := codec.NewWriter()
	w.Uint32(loopsBlobVersion)
	for _, loop := range l.Loops {
		encodeString(w, loop.Label)
		w.Double(loop.Start)
		w.Double(loop.End)
		encodeBool(w, loop.IsStartSet)
		encodeBool(w, loop.IsEndSet)
		w.Uint8(loop.Color.R)
		w.Uint8(loop.Color.G)
		w.Uint8(loop.Color.B)
		w.Uint8(loop.Color.A)
	}
	return w.Bytes()
}

// DecodeLoopsData parses the uncompressed payload produced by
// EncodeLoopsData.
func DecodeLoopsData(payload []byte) (LoopsData, error) {
	if len(payload) == 0 {
		return DefaultLoopsData, nil
	}

	c := codec.NewCursor(payload)
	version, err := c.Uint32()
	if err != nil {
		return LoopsData{}, ErrCorruptBlob
	}
	if version != loopsBlobVersion {
		return LoopsData{}, &UnsupportedBlobVersionError{Shape: "LoopsData", Version: int(version)}
	}

	var l LoopsData
	for i := range l.Loops {
		label, err := decodeString(c)
		if err != nil {
			return LoopsData{}, err
		}
		start, err := c.Double()
		if err != nil {
			return LoopsData{}, ErrCorruptBlob
		}
		end, err := c.Double()
		if err != nil {
			return LoopsData{}, ErrCorruptBlob
		}
		startSet, err := decodeBool(c)
		if err != nil {
			return LoopsData{}, err
		}
		endSet, err := decodeBool(c)
		if err != nil {
			return LoopsData{}, err
		}
		r, err := c.Uint8()
		if err != nil {
			return LoopsData{}, ErrCorruptBlob
		}
		g, err := c.Uint8()
		if err != nil {
			return LoopsData{}, ErrCorruptBlob
		}
		b, err := c.Uint8()
		if err != nil {
			return LoopsData{}, ErrCorruptBlob
		}
		a, err := c.Uint8()
		if err != nil {
			return LoopsData{}, ErrCorruptBlob
		}
		l.Loops[i] = SavedLoop{
			Label:      label,
			Start:      start,
			End:        end,
			IsStartSet: startSet,
			IsEndSet:   endSet,
			Color:      PadColor{r, g, b, a},
		}
	}

	if !c.AtEnd() {
		return LoopsData{}, ErrCorruptBlob
	}
	return l, nil
}
