// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"database/sql"
	"strings"
)

// MetaDataType enumerates the closed set of string-typed metadata slots.
// Values 11-15 are the hardware-required "unknown" slots: their presence
// and literal values are empirical and must not be "cleaned up" (spec
// Design Notes Open Question).
type MetaDataType int

// String metadata type tags.
const (
	MetaTitle MetaDataType = iota + 1
	MetaArtist
	MetaAlbum
	MetaGenre
	MetaComment
	MetaPublisher
	MetaComposer
	MetaDurationMMSS
	MetaEverPlayed
	MetaFileExtension
	MetaUnknown11
	MetaUnknown12
	MetaUnknown13
	MetaUnknown14
	MetaUnknown15
)

// canonicalStringOrder lists every string metadata slot in the order the
// canonical bulk write binds them. Order has no semantic effect (the
// primary key is (id, type)) but keeps the generated SQL stable and
// reviewable.
var canonicalStringOrder = []MetaDataType{
	MetaTitle, MetaArtist, MetaAlbum, MetaGenre, MetaComment,
	MetaPublisher, MetaComposer, MetaDurationMMSS, MetaEverPlayed, MetaFileExtension,
	MetaUnknown11, MetaUnknown12, MetaUnknown13, MetaUnknown14, MetaUnknown15,
}

// unknownStringLiterals are the hardware-required literal values (or
// explicit NULL, modeled as a nil *string) for the five unknown string
// slots. Callers never supply these; SetCanonicalMetaData always writes
// them verbatim.
var unknownStringLiterals = map[MetaDataType]*string{
	MetaUnknown11: nil,
	MetaUnknown12: strPtr("1"),
	MetaUnknown13: nil,
	MetaUnknown14: strPtr("1"),
	MetaUnknown15: strPtr("1"),
}

func strPtr(s string) *string { return &s }

// CanonicalStringMetaData is the caller-supplied subset of the 15 canonical
// string rows; unknown slots are filled in by SetCanonicalMetaData and are
// not settable here.
type CanonicalStringMetaData struct {
	Title         *string
	Artist        *string
	Album         *string
	Genre         *string
	Comment       *string
	Publisher     *string
	Composer      *string
	DurationMMSS  *string
	EverPlayed    *string
	FileExtension *string
}

func (c CanonicalStringMetaData) value(t MetaDataType) *string {
	switch t {
	case MetaTitle:
		return c.Title
	case MetaArtist:
		return c.Artist
	case MetaAlbum:
		return c.Album
	case MetaGenre:
		return c.Genre
	case MetaComment:
		return c.Comment
	case MetaPublisher:
		return c.Publisher
	case MetaComposer:
		return c.Composer
	case MetaDurationMMSS:
		return c.DurationMMSS
	case MetaEverPlayed:
		return c.EverPlayed
	case MetaFileExtension:
		return c.FileExtension
	default:
		return unknownStringLiterals[t]
	}
}

// GetMetaData reads the single (trackID, metaType) string row. A nil
// result with no error means the row exists with a NULL text value; a
// non-existent row also returns (nil, nil) — callers distinguish presence
// with GetAllMetaData when that matters.
func (l *Library) GetMetaData(trackID int64, metaType MetaDataType) (*string, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}
	var text *string
	err := l.conn().QueryRow(
		"SELECT text FROM music.MetaData WHERE id = ? AND type = ?", trackID, int(metaType),
	).Scan(&text)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStorage("get metadata", err)
	}
	return text, nil
}

// SetMetaData writes (or replaces) the single (trackID, metaType) string
// row.
func (l *Library) SetMetaData(trackID int64, metaType MetaDataType, text *string) error {
	if err := l.checkOpen(); err != nil {
		return err
	}
	_, err := l.conn().Exec(
		"INSERT OR REPLACE INTO music.MetaData (id, type, text) VALUES (?, ?, ?)",
		trackID, int(metaType), nullString(text))
	if err != nil {
		return wrapStorage("set metadata", err)
	}
	return nil
}

// GetAllMetaData returns every string metadata row for trackID that has a
// non-null text value, keyed by type.
func (l *Library) GetAllMetaData(trackID int64) (map[MetaDataType]string, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}
	rows, err := l.conn().Query(
		"SELECT type, text FROM music.MetaData WHERE id = ? AND text IS NOT NULL", trackID)
	if err != nil {
		return nil, wrapStorage("get all metadata", err)
	}
	defer rows.Close()

	out := map[MetaDataType]string{}
	for rows.Next() {
		var t int
		var text string
		if err := rows.Scan(&t, &text); err != nil {
			return nil, wrapStorage("get all metadata: scan", err)
		}
		out[MetaDataType(t)] = text
	}
	return out, rows.Err()
}

// SetCanonicalMetaData writes the complete hardware-expected 15-row string
// metadata set for trackID in a single statement: the caller's named
// fields plus the five unknown slots with their hardware-required literals
// (or explicit NULL).
func (l *Library) SetCanonicalMetaData(trackID int64, data CanonicalStringMetaData) error {
	if err := l.checkOpen(); err != nil {
		return err
	}

	placeholders := make([]string, 0, len(canonicalStringOrder))
	args := make([]interface{}, 0, len(canonicalStringOrder)*3)
	for _, t := range canonicalStringOrder {
		placeholders = append(placeholders, "(?, ?, ?)")
		args = append(args, trackID, int(t), nullString(data.value(t)))
	}

	query := "INSERT OR REPLACE INTO music.MetaData (id, type, text) VALUES " + strings.Join(placeholders, ", ")
	if _, err := l.conn().Exec(query, args...); err != nil {
		return wrapStorage("set canonical metadata", err)
	}
	return nil
}

// MetaDataIntegerType enumerates the closed set of integer-typed metadata
// slots. Slots 11 and 12 are hardware-required unknown slots that must
// always carry the literal 1.
type MetaDataIntegerType int

// Integer metadata type tags.
const (
	MetaIntMusicalKey MetaDataIntegerType = iota + 1
	MetaIntRating
	MetaIntLastPlayedTimestamp
	MetaIntLastModifiedTimestamp
	MetaIntLastAccessedTimestamp
	MetaIntLastPlayHash
	MetaIntUnknown7
	MetaIntUnknown8
	MetaIntUnknown9
	MetaIntUnknown10
	MetaIntUnknown11
	MetaIntUnknown12
)

// canonicalIntegerOrder is the hardware-observed insertion order for the
// 12-slot canonical integer metadata write (spec §4.E): 4,5,1,2,3,6,8,7,
// 9,10,11, then 12.
var canonicalIntegerOrder = []MetaDataIntegerType{
	MetaIntLastModifiedTimestamp,
	MetaIntLastAccessedTimestamp,
	MetaIntMusicalKey,
	MetaIntRating,
	MetaIntLastPlayedTimestamp,
	MetaIntLastPlayHash,
	MetaIntUnknown8,
	MetaIntUnknown7,
	MetaIntUnknown9,
	MetaIntUnknown10,
	MetaIntUnknown11,
	MetaIntUnknown12,
}

// CanonicalIntegerMetaData is the caller-supplied subset of the 12
// canonical integer rows; unknown slots 11/12 are always 1 and are not
// settable here.
type CanonicalIntegerMetaData struct {
	MusicalKey            *int64
	Rating                *int64
	LastPlayedTimestamp   *int64
	LastModifiedTimestamp *int64
	LastAccessedTimestamp *int64
	LastPlayHash          *int64
	Unknown7              *int64
	Unknown8              *int64
	Unknown9              *int64
	Unknown10             *int64
}

func (c CanonicalIntegerMetaData) value(t MetaDataIntegerType) *int64 {
	switch t {
	case MetaIntMusicalKey:
		return c.MusicalKey
	case MetaIntRating:
		return c.Rating
	case MetaIntLastPlayedTimestamp:
		return c.LastPlayedTimestamp
	case MetaIntLastModifiedTimestamp:
		return c.LastModifiedTimestamp
	case MetaIntLastAccessedTimestamp:
		return c.LastAccessedTimestamp
	case MetaIntLastPlayHash:
		return c.LastPlayHash
	case MetaIntUnknown7:
		return c.Unknown7
	case MetaIntUnknown8:
		return c.Unknown8
	case MetaIntUnknown9:
		return c.Unknown9
	case MetaIntUnknown10:
		return c.Unknown10
	default:
		one := int64(1)
		return &one
	}
}

// GetMetaDataInteger reads the single (trackID, metaType) integer row.
func (l *Library) GetMetaDataInteger(trackID int64, metaType MetaDataIntegerType) (*int64, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}
	var value *int64
	err := l.conn().QueryRow(
		"SELECT value FROM music.MetaDataInteger WHERE id = ? AND type = ?", trackID, int(metaType),
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStorage("get metadata integer", err)
	}
	return value, nil
}

// SetMetaDataInteger writes (or replaces) the single (trackID, metaType)
// integer row.
func (l *Library) SetMetaDataInteger(trackID int64, metaType MetaDataIntegerType, value *int64) error {
	if err := l.checkOpen(); err != nil {
		return err
	}
	_, err := l.conn().Exec(
		"INSERT OR REPLACE INTO music.MetaDataInteger (id, type, value) VALUES (?, ?, ?)",
		trackID, int(metaType), nullInt64(value))
	if err != nil {
		return wrapStorage("set metadata integer", err)
	}
	return nil
}

// SetCanonicalMetaDataInteger writes the complete hardware-expected
// 12-row integer metadata set for trackID in a single statement, in the
// hardware-observed insertion order, with unknown slots 11 and 12 always
// set to 1.
func (l *Library) SetCanonicalMetaDataInteger(trackID int64, data CanonicalIntegerMetaData) error {
	if err := l.checkOpen(); err != nil {
		return err
	}

	placeholders := make([]string, 0, len(canonicalIntegerOrder))
	args := make([]interface{}, 0, len(canonicalIntegerOrder)*3)
	for _, t := range canonicalIntegerOrder {
		placeholders = append(placeholders, "(?, ?, ?)")
		args = append(args, trackID, int(t), nullInt64(data.value(t)))
	}

	query := "INSERT OR REPLACE INTO music.MetaDataInteger (id, type, value) VALUES " + strings.Join(placeholders, ", ")
	if _, err := l.conn().Exec(query, args...); err != nil {
		return wrapStorage("set canonical metadata integer", err)
	}
	return nil
}
