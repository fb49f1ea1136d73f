// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"github.com/engineprime-go/enginelib/internal/codec"
)

const (
	highResWaveformBlobVersion  = 1
	overviewWaveformBlobVersion = 1

	// highResEntrySize is 3 channels (low, mid, high), each (value,
	// opacity) as one byte apiece.
	highResEntrySize = 6
	// overviewEntrySize is one channel, (value, opacity) as one byte
	// apiece.
	overviewEntrySize = 2
)

// WaveformPoint is one (value, opacity) sample of a single waveform
// channel, each in [0, 255].
type WaveformPoint struct {
	Value   uint8
	Opacity uint8
}

// HighResWaveformEntry is one column of the high-resolution waveform,
// carrying independent low/mid/high frequency channels.
type HighResWaveformEntry struct {
	Low  WaveformPoint
	Mid  WaveformPoint
	High WaveformPoint
}

// HighResWaveformData is the decoded form of the
// PerformanceData.highResolutionWaveformData column.
type HighResWaveformData struct {
	SamplesPerEntry float64
	Entries         []HighResWaveformEntry
}

// DefaultHighResWaveformData is synthesized for a track with no stored
// blob.
var DefaultHighResWaveformData = HighResWaveformData{}

// EncodeHighResWaveformData serializes w into the uncompressed payload form.
func EncodeHighResWaveformData(w HighResWaveformData) []byte {
	out := codec.NewWriter()
	out.Uint32(highResWaveformBlobVersion)
	out.Double(w.SamplesPerEntry)

	ew := codec.NewWriter()
	for _, e := range w.Entries {
		ew.Uint8(e.Low.Value)
		ew.Uint8(e.Low.Opacity)
		ew.Uint8(e.Mid.Value)
		ew.Uint8(e.Mid.Opacity)
		ew.Uint8(e.High.Value)
		ew.Uint8(e.High.Opacity)
	}
	out.Extent(ew.Bytes())
	return out.Bytes()
}

// DecodeHighResWaveformData parses the uncompressed payload produced by
// EncodeHighResWaveformData. The entry count is derived purely from the
// extent length, never from an external field.
func DecodeHighResWaveformData(payload []byte) (HighResWaveformData, error) {
	if len(payload) == 0 {
		return DefaultHighResWaveformData, nil
	}

	c := codec.NewCursor(payload)
	version, err := c.Uint32()
	if err != nil {
		return HighResWaveformData{}, ErrCorruptBlob
	}
	if version != highResWaveformBlobVersion {
		return HighResWaveformData{}, &UnsupportedBlobVersionError{Shape: "HighResWaveformData", Version: int(version)}
	}

	var w HighResWaveformData
	if w.SamplesPerEntry, err = c.Double(); err != nil {
		return HighResWaveformData{}, ErrCorruptBlob
	}

	raw, err := c.Extent()
	if err != nil {
		return HighResWaveformData{}, ErrCorruptBlob
	}
	if len(raw)%highResEntrySize != 0 {
		return HighResWaveformData{}, ErrCorruptBlob
	}
	n := len(raw) / highResEntrySize
	w.Entries = make([]HighResWaveformEntry, n)
	for i := 0; i < n; i++ {
		b := raw[i*highResEntrySize : (i+1)*highResEntrySize]
		w.Entries[i] = HighResWaveformEntry{
			Low:  WaveformPoint{Value: b[0], Opacity: b[1]},
			Mid:  WaveformPoint{Value: b[2], Opacity: b[3]},
			High: WaveformPoint{Value: b[4], Opacity: b[5]},
		}
	}

	if !c.AtEnd() {
		return HighResWaveformData{}, ErrCorruptBlob
	}
	return w, nil
}

// OverviewWaveformData is the decoded form of the
// PerformanceData.overviewWaveformData column: a coarser, single-channel
// rendering of the whole track used for scrub bars.
type OverviewWaveformData struct {
	SamplesPerEntry float64
	Entries         []WaveformPoint
}

// DefaultOverviewWaveformData is synthesized for a track with no stored
// blob.
var DefaultOverviewWaveformData = OverviewWaveformData{}

// EncodeOverviewWaveformData serializes w into the uncompressed payload
// form.
func EncodeOverviewWaveformData(w OverviewWaveformData) []byte {
	out := codec.NewWriter()
	out.Uint32(overviewWaveformBlobVersion)
	out.Double(w.SamplesPerEntry)

	ew := codec.NewWriter()
	for _, e := range w.Entries {
		ew.Uint8(e.Value)
		ew.Uint8(e.Opacity)
	}
	out.Extent(ew.Bytes())
	return out.Bytes()
}

// DecodeOverviewWaveformData parses the uncompressed payload produced by
// EncodeOverviewWaveformData.
func DecodeOverviewWaveformData(payload []byte) (OverviewWaveformData, error) {
	if len(payload) == 0 {
		return DefaultOverviewWaveformData, nil
	}

	c := codec.NewCursor(payload)
	version, err := c.Uint32()
	if err != nil {
		return OverviewWaveformData{}, ErrCorruptBlob
	}
	if version != overviewWaveformBlobVersion {
		return OverviewWaveformData{}, &UnsupportedBlobVersionError{Shape: "OverviewWaveformData", Version: int(version)}
	}

	var w OverviewWaveformData
	if w.SamplesPerEntry, err = c.Double(); err != nil {
		return OverviewWaveformData{}, ErrCorruptBlob
	}

	raw, err := c.Extent()
	if err != nil {
		return OverviewWaveformData{}, ErrCorruptBlob
	}
	if len(raw)%overviewEntrySize != 0 {
		return OverviewWaveformData{}, ErrCorruptBlob
	}
	n := len(raw) / overviewEntrySize
	w.Entries = make([]WaveformPoint, n)
	for i := 0; i < n; i++ {
		w.Entries[i] = WaveformPoint{Value: raw[i*overviewEntrySize], Opacity: raw[i*overviewEntrySize+1]}
	}

	if !c.AtEnd() {
		return OverviewWaveformData{}, ErrCorruptBlob
	}
	return w, nil
}
