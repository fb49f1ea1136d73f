// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"database/sql"

	"github.com/engineprime-go/enginelib/internal/codec"
)

// PerformanceData is the decoded form of one perfdata.PerformanceData row:
// the blob columns plus the boolean flags recording which other consoles'
// analyses the row carries.
type PerformanceData struct {
	TrackID int64

	IsAnalyzed bool
	IsRendered bool

	TrackData              TrackData
	HighResolutionWaveform HighResWaveformData
	OverviewWaveform       OverviewWaveformData
	BeatData               BeatData
	QuickCues              QuickCuesData
	Loops                  LoopsData

	HasSeratoValues    bool
	HasRekordboxValues bool
	HasTraktorValues   bool
}

// DefaultPerformanceData is what GetPerformanceData returns for a track
// with no stored row: every blob at its decoded-empty default and every
// flag false.
func DefaultPerformanceData(trackID int64) PerformanceData {
	return PerformanceData{
		TrackID:                trackID,
		TrackData:              DefaultTrackData,
		HighResolutionWaveform: DefaultHighResWaveformData,
		OverviewWaveform:       DefaultOverviewWaveformData,
		BeatData:               DefaultBeatData,
		QuickCues:              DefaultQuickCuesData,
		Loops:                  DefaultLoopsData,
	}
}

// GetPerformanceData reads and decodes the PerformanceData row for
// trackID. A missing row is not an error: it decodes to
// DefaultPerformanceData(trackID), the state of a track that has not been
// analyzed yet (spec §4.F).
func (l *Library) GetPerformanceData(trackID int64) (PerformanceData, error) {
	if err := l.checkOpen(); err != nil {
		return PerformanceData{}, err
	}

	hasRekordbox := l.hasColumn("perfdata", "PerformanceData", "hasRekordboxValues")
	hasTraktor := l.hasColumn("perfdata", "PerformanceData", "hasTraktorValues")

	cols := []string{"isAnalyzed", "isRendered", "trackData", "highResolutionWaveformData",
		"overviewWaveformData", "beatData", "quickCuesData", "loopsData", "hasSeratoValues"}
	if hasRekordbox {
		cols = append(cols, "hasRekordboxValues")
	}
	if hasTraktor {
		cols = append(cols, "hasTraktorValues")
	}

	query := "SELECT " + joinColumns(cols) + " FROM perfdata.PerformanceData WHERE trackId = ?"
	row := l.conn().QueryRow(query, trackID)

	var isAnalyzed, isRendered, hasSerato int
	var trackDataCol, highResCol, overviewCol, beatCol, quickCuesCol, loopsCol []byte
	targets := []interface{}{&isAnalyzed, &isRendered, &trackDataCol, &highResCol, &overviewCol, &beatCol, &quickCuesCol, &loopsCol, &hasSerato}

	var hasRekordboxVal, hasTraktorVal int
	if hasRekordbox {
		targets = append(targets, &hasRekordboxVal)
	}
	if hasTraktor {
		targets = append(targets, &hasTraktorVal)
	}

	err := row.Scan(targets...)
	if err == sql.ErrNoRows {
		l.logger.Debugf("no PerformanceData row for track %d, returning default", trackID)
		return DefaultPerformanceData(trackID), nil
	}
	if err != nil {
		return PerformanceData{}, wrapStorage("get performance data", err)
	}

	p := PerformanceData{
		TrackID:            trackID,
		IsAnalyzed:         isAnalyzed != 0,
		IsRendered:         isRendered != 0,
		HasSeratoValues:    hasSerato != 0,
		HasRekordboxValues: hasRekordboxVal != 0,
		HasTraktorValues:   hasTraktorVal != 0,
	}

	if p.TrackData, err = decodeBlobColumn(trackDataCol, DecodeTrackData); err != nil {
		return PerformanceData{}, err
	}
	if p.HighResolutionWaveform, err = decodeBlobColumn(highResCol, DecodeHighResWaveformData); err != nil {
		return PerformanceData{}, err
	}
	if p.OverviewWaveform, err = decodeBlobColumn(overviewCol, DecodeOverviewWaveformData); err != nil {
		return PerformanceData{}, err
	}
	if p.BeatData, err = decodeBlobColumn(beatCol, DecodeBeatData); err != nil {
		return PerformanceData{}, err
	}
	if p.QuickCues, err = decodeBlobColumn(quickCuesCol, DecodeQuickCuesData); err != nil {
		return PerformanceData{}, err
	}
	if p.Loops, err = decodeBlobColumn(loopsCol, DecodeLoopsData); err != nil {
		return PerformanceData{}, err
	}
	return p, nil
}

// decodeBlobColumn unwraps the zlib length-prefixed framing, then decodes
// the payload with decode. An empty or absent column decodes via decode's
// own empty-payload handling (every blob codec returns its documented
// default for a zero-length payload).
func decodeBlobColumn[T any](column []byte, decode func([]byte) (T, error)) (T, error) {
	payload, err := codec.ZlibUnwrap(column)
	if err != nil {
		var zero T
		return zero, ErrCorruptBlob
	}
	return decode(payload)
}

// SetPerformanceData writes an INSERT OR REPLACE of the complete row for
// p.TrackID, zlib-wrapping every blob column. Columns not present in the
// active schema version (hasRekordboxValues, hasTraktorValues) are
// silently omitted.
func (l *Library) SetPerformanceData(p PerformanceData) error {
	if err := l.checkOpen(); err != nil {
		return err
	}

	hasRekordbox := l.hasColumn("perfdata", "PerformanceData", "hasRekordboxValues")
	hasTraktor := l.hasColumn("perfdata", "PerformanceData", "hasTraktorValues")

	cols := []string{"trackId", "isAnalyzed", "isRendered", "trackData", "highResolutionWaveformData",
		"overviewWaveformData", "beatData", "quickCuesData", "loopsData", "hasSeratoValues"}
	args := []interface{}{
		p.TrackID,
		boolToInt(p.IsAnalyzed),
		boolToInt(p.IsRendered),
		codec.ZlibWrap(EncodeTrackData(p.TrackData)),
		codec.ZlibWrap(EncodeHighResWaveformData(p.HighResolutionWaveform)),
		codec.ZlibWrap(EncodeOverviewWaveformData(p.OverviewWaveform)),
		codec.ZlibWrap(EncodeBeatData(p.BeatData)),
		codec.ZlibWrap(EncodeQuickCuesData(p.QuickCues)),
		codec.ZlibWrap(EncodeLoopsData(p.Loops)),
		boolToInt(p.HasSeratoValues),
	}
	if hasRekordbox {
		cols = append(cols, "hasRekordboxValues")
		args = append(args, boolToInt(p.HasRekordboxValues))
	}
	if hasTraktor {
		cols = append(cols, "hasTraktorValues")
		args = append(args, boolToInt(p.HasTraktorValues))
	}

	placeholders := make([]string, len(cols))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	query := "INSERT OR REPLACE INTO perfdata.PerformanceData (" + joinColumns(cols) + ") VALUES (" + joinColumns(placeholders) + ")"
	if _, err := l.conn().Exec(query, args...); err != nil {
		return wrapStorage("set performance data", err)
	}
	return nil
}

// ClearPerformanceData deletes the PerformanceData row for trackID, if any.
func (l *Library) ClearPerformanceData(trackID int64) error {
	if err := l.checkOpen(); err != nil {
		return err
	}
	if _, err := l.conn().Exec("DELETE FROM perfdata.PerformanceData WHERE trackId = ?", trackID); err != nil {
		return wrapStorage("clear performance data", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func joinColumns(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
