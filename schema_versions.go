// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"database/sql"
	"fmt"
)

// features captures the per-version presence of optional Track/
// PerformanceData columns. Table-driven rather than a version type switch,
// per the registry's "pure table of values keyed by version tag" design.
type features struct {
	hasFileBytes       bool // Track.fileBytes
	hasPdbImportKey    bool // Track.pdbImportKey
	hasURI             bool // Track.uri
	hasBeatgridLocked  bool // Track.isBeatgridLocked
	hasRekordboxValues bool // PerformanceData.hasRekordboxValues, >= 1.7.1
	hasTraktorValues   bool // PerformanceData.hasTraktorValues, >= 1.11.1
	// isExternalTrackType is the declared SQL type of the version-
	// disambiguating Track.isExternalTrack column: NUMERIC for the
	// firmware variant, INTEGER for every other known version including
	// the desktop 1.18.0 variant.
	isExternalTrackType string
}

func featuresFor(v Version) features {
	f := features{isExternalTrackType: "INTEGER"}
	if v.Compare(Version1_7_1) >= 0 {
		f.hasRekordboxValues = true
	}
	if v.Compare(Version1_11_1) >= 0 {
		f.hasTraktorValues = true
	}
	if v.Compare(Version1_15_0) >= 0 {
		f.hasFileBytes = true
		f.hasPdbImportKey = true
	}
	if v.Compare(Version1_17_0) >= 0 {
		f.hasURI = true
		f.hasBeatgridLocked = true
	}
	if v.Variant == VariantFirmware {
		f.isExternalTrackType = "NUMERIC"
	}
	return f
}

func informationTable(store string) TableDef {
	return TableDef{
		Store: store,
		Name:  "Information",
		Columns: []ColumnDef{
			{Name: "id", SQLType: "INTEGER", NotNull: true, PKRank: 1},
			{Name: "uuid", SQLType: "TEXT", NotNull: true},
			{Name: "schemaVersionMajor", SQLType: "INTEGER", NotNull: true},
			{Name: "schemaVersionMinor", SQLType: "INTEGER", NotNull: true},
			{Name: "schemaVersionPatch", SQLType: "INTEGER", NotNull: true},
			{Name: "currentPlayedIndiciator", SQLType: "INTEGER", NotNull: true, HasDefault: true, Default: "0"},
			{Name: "lastRekordBoxLibraryImportReadCounter", SQLType: "INTEGER", NotNull: true, HasDefault: true, Default: "0"},
		},
	}
}

func trackTable(f features) TableDef {
	cols := []ColumnDef{
		{Name: "id", SQLType: "INTEGER", NotNull: true, PKRank: 1},
		{Name: "playOrder", SQLType: "INTEGER"},
		{Name: "length", SQLType: "INTEGER"},
		{Name: "lengthCalculated", SQLType: "INTEGER"},
		{Name: "bpm", SQLType: "INTEGER"},
		{Name: "year", SQLType: "INTEGER"},
		{Name: "path", SQLType: "TEXT"},
		{Name: "filename", SQLType: "TEXT"},
		{Name: "bitrate", SQLType: "INTEGER"},
		{Name: "bpmAnalyzed", SQLType: "REAL"},
		{Name: "trackType", SQLType: "INTEGER", NotNull: true, HasDefault: true, Default: "1"},
		{Name: "isExternalTrack", SQLType: f.isExternalTrackType, NotNull: true, HasDefault: true, Default: "0"},
		{Name: "uuidOfExternalDatabase", SQLType: "TEXT"},
		{Name: "idTrackInExternalDatabase", SQLType: "INTEGER"},
		{Name: "idAlbumArt", SQLType: "INTEGER", NotNull: true, HasDefault: true, Default: "0"},
	}
	if f.hasFileBytes {
		cols = append(cols, ColumnDef{Name: "fileBytes", SQLType: "INTEGER"})
	}
	if f.hasPdbImportKey {
		cols = append(cols, ColumnDef{Name: "pdbImportKey", SQLType: "INTEGER"})
	}
	if f.hasURI {
		cols = append(cols, ColumnDef{Name: "uri", SQLType: "TEXT"})
	}
	if f.hasBeatgridLocked {
		cols = append(cols, ColumnDef{Name: "isBeatgridLocked", SQLType: "INTEGER", NotNull: true, HasDefault: true, Default: "0"})
	}

	return TableDef{
		Store:   "music",
		Name:    "Track",
		Columns: cols,
		Indexes: []IndexDef{
			{
				Name:    "index_Track_path",
				Origin:  "c",
				Columns: []IndexColumn{{Name: "path", Rank: 0}},
			},
		},
	}
}

func metaDataTable() TableDef {
	return TableDef{
		Store: "music",
		Name:  "MetaData",
		Columns: []ColumnDef{
			{Name: "id", SQLType: "INTEGER", NotNull: true, PKRank: 1},
			{Name: "type", SQLType: "INTEGER", NotNull: true, PKRank: 2},
			{Name: "text", SQLType: "TEXT"},
		},
	}
}

func metaDataIntegerTable() TableDef {
	return TableDef{
		Store: "music",
		Name:  "MetaDataInteger",
		Columns: []ColumnDef{
			{Name: "id", SQLType: "INTEGER", NotNull: true, PKRank: 1},
			{Name: "type", SQLType: "INTEGER", NotNull: true, PKRank: 2},
			{Name: "value", SQLType: "INTEGER"},
		},
	}
}

func albumArtTable() TableDef {
	return TableDef{
		Store: "music",
		Name:  "AlbumArt",
		Columns: []ColumnDef{
			{Name: "id", SQLType: "INTEGER", NotNull: true, PKRank: 1},
			{Name: "hash", SQLType: "TEXT", NotNull: true, HasDefault: true, Default: "''"},
			{Name: "albumArt", SQLType: "BLOB"},
		},
		Indexes: []IndexDef{
			{Name: "index_AlbumArt_hash", Unique: true, Origin: "c", Columns: []IndexColumn{{Name: "hash", Rank: 0}}},
		},
	}
}

func crateTable() TableDef {
	return TableDef{
		Store: "music",
		Name:  "Crate",
		Columns: []ColumnDef{
			{Name: "id", SQLType: "INTEGER", NotNull: true, PKRank: 1},
			{Name: "title", SQLType: "TEXT", NotNull: true, HasDefault: true, Default: "''"},
			{Name: "path", SQLType: "TEXT", NotNull: true, HasDefault: true, Default: "''"},
		},
	}
}

func crateTrackListTable() TableDef {
	return TableDef{
		Store: "music",
		Name:  "CrateTrackList",
		Columns: []ColumnDef{
			{Name: "crateId", SQLType: "INTEGER", NotNull: true, PKRank: 1},
			{Name: "trackId", SQLType: "INTEGER", NotNull: true, PKRank: 2},
			{Name: "trackNumber", SQLType: "INTEGER", NotNull: true, HasDefault: true, Default: "0"},
		},
	}
}

func performanceDataTable(f features) TableDef {
	cols := []ColumnDef{
		{Name: "trackId", SQLType: "INTEGER", NotNull: true, PKRank: 1},
		{Name: "isAnalyzed", SQLType: "INTEGER", NotNull: true, HasDefault: true, Default: "0"},
		{Name: "isRendered", SQLType: "INTEGER", NotNull: true, HasDefault: true, Default: "0"},
		{Name: "trackData", SQLType: "BLOB"},
		{Name: "highResolutionWaveformData", SQLType: "BLOB"},
		{Name: "overviewWaveformData", SQLType: "BLOB"},
		{Name: "beatData", SQLType: "BLOB"},
		{Name: "quickCuesData", SQLType: "BLOB"},
		{Name: "loopsData", SQLType: "BLOB"},
		{Name: "hasSeratoValues", SQLType: "INTEGER", NotNull: true, HasDefault: true, Default: "0"},
	}
	if f.hasRekordboxValues {
		cols = append(cols, ColumnDef{Name: "hasRekordboxValues", SQLType: "INTEGER", NotNull: true, HasDefault: true, Default: "0"})
	}
	if f.hasTraktorValues {
		cols = append(cols, ColumnDef{Name: "hasTraktorValues", SQLType: "INTEGER", NotNull: true, HasDefault: true, Default: "0"})
	}
	return TableDef{Store: "perfdata", Name: "PerformanceData", Columns: cols}
}

// buildSchema assembles the complete table set for v.
func buildSchema(v Version) SchemaDef {
	f := featuresFor(v)
	return SchemaDef{
		Version: v,
		Tables: []TableDef{
			informationTable("music"),
			trackTable(f),
			metaDataTable(),
			metaDataIntegerTable(),
			albumArtTable(),
			crateTable(),
			crateTrackListTable(),
			informationTable("perfdata"),
			performanceDataTable(f),
		},
		Seed: seedInformation,
	}
}

func seedInformation(tx *sql.Tx, uuid string, v Version) error {
	for _, store := range []string{"music", "perfdata"} {
		_, err := tx.Exec(fmt.Sprintf(
			`INSERT INTO %s.Information
				(id, uuid, schemaVersionMajor, schemaVersionMinor, schemaVersionPatch,
				 currentPlayedIndiciator, lastRekordBoxLibraryImportReadCounter)
			 VALUES (1, ?, ?, ?, ?, 0, 0)`, store),
			uuid, v.Major, v.Minor, v.Patch)
		if err != nil {
			return wrapStorage("schema seed: "+store+".Information", err)
		}
	}
	return nil
}

// Registry maps a recognized Version to its SchemaDef. Built once, from a
// pure table of values; there is no mutable global state.
type Registry struct {
	byVersion map[Version]SchemaDef
}

// NewRegistry constructs the registry covering every version in
// KnownVersions.
func NewRegistry() *Registry {
	r := &Registry{byVersion: make(map[Version]SchemaDef, len(KnownVersions))}
	for _, v := range KnownVersions {
		r.byVersion[v] = buildSchema(v)
	}
	return r
}

// Lookup returns the SchemaDef for v, or an *UnsupportedSchemaError if v is
// not recognized.
func (r *Registry) Lookup(v Version) (SchemaDef, error) {
	s, ok := r.byVersion[v]
	if !ok {
		return SchemaDef{}, &UnsupportedSchemaError{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
	}
	return s, nil
}
