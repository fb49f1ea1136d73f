// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"database/sql"
	"fmt"
	"strings"
)

// Track is the union of every Track column across all known schema
// versions. Fields introduced after the active version are left nil on
// read and silently ignored on write (spec Design Notes: field-projection
// is a storage-facade concern, not a type-system one).
type Track struct {
	ID int64

	PlayOrder          *int64
	Length             *int64
	LengthCalculated   *int64
	BPM                *int64
	Year               *int64
	Path               *string
	Filename           *string
	Bitrate            *int64
	BPMAnalyzed        *float64
	TrackType          *int64
	IsExternalTrack    *bool
	ExternalDatabaseID *string
	ExternalTrackID    *int64
	AlbumArtID         *int64

	// FileBytes, PdbImportKey, URI and IsBeatgridLocked were added in
	// later schema versions; nil on a library older than their
	// introduction.
	FileBytes        *int64
	PdbImportKey     *int64
	URI              *string
	IsBeatgridLocked *bool
}

// trackField pairs one optional Track field with its column name;
// trackFields lists them in declaration order, so CreateTrack/UpdateTrack/
// GetTrack can all walk
// the same table keyed by the active schema's column set. hasDefault marks
// the columns declared NOT NULL DEFAULT <literal> (trackType,
// isExternalTrack, idAlbumArt, isBeatgridLocked): CreateTrack omits these
// from the INSERT entirely when the caller leaves the field nil, letting
// SQLite apply the column default, rather than binding an explicit NULL a
// NOT NULL column would reject.
type trackField struct {
	column     string
	hasDefault bool
	isNil      func(*Track) bool
	bind       func(*Track) interface{}
	target     func(*Track) interface{}
}

func trackFields() []trackField {
	return []trackField{
		{"playOrder", false, func(t *Track) bool { return t.PlayOrder == nil }, func(t *Track) interface{} { return nullInt64(t.PlayOrder) }, func(t *Track) interface{} { return &t.PlayOrder }},
		{"length", false, func(t *Track) bool { return t.Length == nil }, func(t *Track) interface{} { return nullInt64(t.Length) }, func(t *Track) interface{} { return &t.Length }},
		{"lengthCalculated", false, func(t *Track) bool { return t.LengthCalculated == nil }, func(t *Track) interface{} { return nullInt64(t.LengthCalculated) }, func(t *Track) interface{} { return &t.LengthCalculated }},
		{"bpm", false, func(t *Track) bool { return t.BPM == nil }, func(t *Track) interface{} { return nullInt64(t.BPM) }, func(t *Track) interface{} { return &t.BPM }},
		{"year", false, func(t *Track) bool { return t.Year == nil }, func(t *Track) interface{} { return nullInt64(t.Year) }, func(t *Track) interface{} { return &t.Year }},
		{"path", false, func(t *Track) bool { return t.Path == nil }, func(t *Track) interface{} { return nullString(t.Path) }, func(t *Track) interface{} { return &t.Path }},
		{"filename", false, func(t *Track) bool { return t.Filename == nil }, func(t *Track) interface{} { return nullString(t.Filename) }, func(t *Track) interface{} { return &t.Filename }},
		{"bitrate", false, func(t *Track) bool { return t.Bitrate == nil }, func(t *Track) interface{} { return nullInt64(t.Bitrate) }, func(t *Track) interface{} { return &t.Bitrate }},
		{"bpmAnalyzed", false, func(t *Track) bool { return t.BPMAnalyzed == nil }, func(t *Track) interface{} { return nullFloat64(t.BPMAnalyzed) }, func(t *Track) interface{} { return &t.BPMAnalyzed }},
		{"trackType", true, func(t *Track) bool { return t.TrackType == nil }, func(t *Track) interface{} { return nullInt64(t.TrackType) }, func(t *Track) interface{} { return &t.TrackType }},
		{"isExternalTrack", true, func(t *Track) bool { return t.IsExternalTrack == nil }, func(t *Track) interface{} { return nullBool(t.IsExternalTrack) }, func(t *Track) interface{} { return &t.IsExternalTrack }},
		{"uuidOfExternalDatabase", false, func(t *Track) bool { return t.ExternalDatabaseID == nil }, func(t *Track) interface{} { return nullString(t.ExternalDatabaseID) }, func(t *Track) interface{} { return &t.ExternalDatabaseID }},
		{"idTrackInExternalDatabase", false, func(t *Track) bool { return t.ExternalTrackID == nil }, func(t *Track) interface{} { return nullInt64(t.ExternalTrackID) }, func(t *Track) interface{} { return &t.ExternalTrackID }},
		{"idAlbumArt", true, func(t *Track) bool { return t.AlbumArtID == nil }, func(t *Track) interface{} { return nullInt64(t.AlbumArtID) }, func(t *Track) interface{} { return &t.AlbumArtID }},
		{"fileBytes", false, func(t *Track) bool { return t.FileBytes == nil }, func(t *Track) interface{} { return nullInt64(t.FileBytes) }, func(t *Track) interface{} { return &t.FileBytes }},
		{"pdbImportKey", false, func(t *Track) bool { return t.PdbImportKey == nil }, func(t *Track) interface{} { return nullInt64(t.PdbImportKey) }, func(t *Track) interface{} { return &t.PdbImportKey }},
		{"uri", false, func(t *Track) bool { return t.URI == nil }, func(t *Track) interface{} { return nullString(t.URI) }, func(t *Track) interface{} { return &t.URI }},
		{"isBeatgridLocked", true, func(t *Track) bool { return t.IsBeatgridLocked == nil }, func(t *Track) interface{} { return nullBool(t.IsBeatgridLocked) }, func(t *Track) interface{} { return &t.IsBeatgridLocked }},
	}
}

func (l *Library) presentTrackFields() []trackField {
	var present []trackField
	for _, f := range trackFields() {
		if l.hasColumn("music", "Track", f.column) {
			present = append(present, f)
		}
	}
	return present
}

// CreateTrack inserts a new Track row, binding only the columns that exist
// in the active schema version, and returns the assigned id.
func (l *Library) CreateTrack(t Track) (int64, error) {
	if err := l.checkOpen(); err != nil {
		return 0, err
	}

	fields := l.presentTrackFields()
	cols := make([]string, 0, len(fields))
	placeholders := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		if f.hasDefault && f.isNil(&t) {
			continue
		}
		cols = append(cols, f.column)
		placeholders = append(placeholders, "?")
		args = append(args, f.bind(&t))
	}

	query := fmt.Sprintf("INSERT INTO music.Track (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	res, err := l.conn().Exec(query, args...)
	if err != nil {
		return 0, wrapStorage("create track", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrapStorage("create track: last insert id", err)
	}
	return id, nil
}

// UpdateTrack overwrites every present-in-schema column of the row with
// t.ID. It does not create a row.
func (l *Library) UpdateTrack(t Track) error {
	if err := l.checkOpen(); err != nil {
		return err
	}

	fields := l.presentTrackFields()
	sets := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(fields)+1)
	for _, f := range fields {
		sets = append(sets, f.column+" = ?")
		args = append(args, f.bind(&t))
	}
	args = append(args, t.ID)

	query := fmt.Sprintf("UPDATE music.Track SET %s WHERE id = ?", strings.Join(sets, ", "))
	res, err := l.conn().Exec(query, args...)
	if err != nil {
		return wrapStorage("update track", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapStorage("update track: rows affected", err)
	}
	if n == 0 {
		return ErrTrackDeleted
	}
	return nil
}

// GetTrack reads the Track row for id. It returns ErrTrackDeleted if no row
// exists, and a *TrackDatabaseInconsistencyError if more than one does.
func (l *Library) GetTrack(id int64) (Track, error) {
	if err := l.checkOpen(); err != nil {
		return Track{}, err
	}

	fields := l.presentTrackFields()
	cols := make([]string, 0, len(fields)+1)
	cols = append(cols, "id")
	for _, f := range fields {
		cols = append(cols, f.column)
	}

	query := fmt.Sprintf("SELECT %s FROM music.Track WHERE id = ?", strings.Join(cols, ", "))
	rows, err := l.conn().Query(query, id)
	if err != nil {
		return Track{}, wrapStorage("get track", err)
	}
	defer rows.Close()

	var t Track
	found := false
	for rows.Next() {
		if found {
			return Track{}, &TrackDatabaseInconsistencyError{TrackID: id, Reason: "multiple Track rows for one id"}
		}
		targets := make([]interface{}, 0, len(fields)+1)
		targets = append(targets, &t.ID)
		for _, f := range fields {
			targets = append(targets, f.target(&t))
		}
		if err := rows.Scan(targets...); err != nil {
			return Track{}, wrapStorage("get track: scan", err)
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return Track{}, wrapStorage("get track: rows", err)
	}
	if !found {
		return Track{}, ErrTrackDeleted
	}
	return t, nil
}

// DeleteTrack removes the Track row for id along with any PerformanceData
// and MetaData rows referencing it — the relational schema does not
// enforce this cascade, so the storage facade does (spec §3 Lifecycles).
func (l *Library) DeleteTrack(id int64) error {
	if err := l.checkOpen(); err != nil {
		return err
	}
	return l.WithTransaction(func(l *Library) error {
		if _, err := l.conn().Exec("DELETE FROM perfdata.PerformanceData WHERE trackId = ?", id); err != nil {
			return wrapStorage("delete track: performance data", err)
		}
		if _, err := l.conn().Exec("DELETE FROM music.MetaData WHERE id = ?", id); err != nil {
			return wrapStorage("delete track: metadata", err)
		}
		if _, err := l.conn().Exec("DELETE FROM music.MetaDataInteger WHERE id = ?", id); err != nil {
			return wrapStorage("delete track: metadata integer", err)
		}
		if _, err := l.conn().Exec("DELETE FROM music.Track WHERE id = ?", id); err != nil {
			return wrapStorage("delete track", err)
		}
		return nil
	})
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullFloat64(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullBool(p *bool) sql.NullBool {
	if p == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *p, Valid: true}
}
