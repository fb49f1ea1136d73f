// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"github.com/engineprime-go/enginelib/internal/codec"
)

// trackDataBlobVersion is the only track-data payload version this codec
// understands.
const trackDataBlobVersion = 1

// TrackData is the decoded form of the PerformanceData.trackData column:
// coarse acoustic facts about the track as a whole.
type TrackData struct {
	// SampleRate is the analyzed sample rate in Hz.
	SampleRate float64
	// Samples is the total sample count of the track.
	Samples float64
	// AverageLoudness is a normalized loudness estimate in [0, 1].
	AverageLoudness float64
	// Key is the detected musical key code.
	Key int32
}

// DefaultTrackData is the value PerformanceData synthesizes for a track with
// no stored blob.
var DefaultTrackData = TrackData{}

// EncodeTrackData serializes t into the uncompressed payload form (the
// caller wraps it with codec.ZlibWrap before storing).
func EncodeTrackData(t TrackData) []byte {
	w := codec.NewWriter()
	w.Uint32(trackDataBlobVersion)
	w.Double(t.SampleRate)
	w.Double(t.Samples)
	w.Double(t.AverageLoudness)
	w.Int32(t.Key)
	return w.Bytes()
}

// DecodeTrackData parses the uncompressed payload produced by
// EncodeTrackData. An empty payload decodes to DefaultTrackData.
func DecodeTrackData(payload []byte) (TrackData, error) {
	if len(payload) == 0 {
		return DefaultTrackData, nil
	}

	c := codec.NewCursor(payload)
	version, err := c.Uint32()
	if err != nil {
		return TrackData{}, ErrCorruptBlob
	}
	if version != trackDataBlobVersion {
		return TrackData{}, &UnsupportedBlobVersionError{Shape: "TrackData", Version: int(version)}
	}

	var t TrackData
	if t.SampleRate, err = c.Double(); err != nil {
		return TrackData{}, ErrCorruptBlob
	}
	if t.Samples, err = c.Double(); err != nil {
		return TrackData{}, ErrCorruptBlob
	}
	if t.AverageLoudness, err = c.Double(); err != nil {
		return TrackData{}, ErrCorruptBlob
	}
	if t.Key, err = c.Int32(); err != nil {
		return TrackData{}, ErrCorruptBlob
	}
	if !c.AtEnd() {
		return TrackData{}, ErrCorruptBlob
	}
	return t, nil
}
