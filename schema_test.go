// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

func newAttachedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := openAttached(":memory:", ":memory:")
	if err != nil {
		t.Fatalf("openAttached() err = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSchemaCreateThenValidate is the universal schema round-trip property:
// for every registered version, Create-on-empty then Validate succeeds.
func TestSchemaCreateThenValidate(t *testing.T) {
	for _, v := range KnownVersions {
		v := v
		t.Run(v.String(), func(t *testing.T) {
			db := newAttachedDB(t)
			schema := buildSchema(v)
			if err := schema.Create(db, uuid.NewString()); err != nil {
				t.Fatalf("Create() err = %v", err)
			}
			if err := schema.Validate(db); err != nil {
				t.Fatalf("Validate() after Create() err = %v", err)
			}
		})
	}
}

func TestSchemaValidateMissingTable(t *testing.T) {
	db := newAttachedDB(t)
	schema := buildSchema(Version1_15_0)
	if err := schema.Create(db, uuid.NewString()); err != nil {
		t.Fatalf("Create() err = %v", err)
	}
	if _, err := db.Exec("DROP TABLE music.AlbumArt"); err != nil {
		t.Fatalf("DROP TABLE err = %v", err)
	}

	err := schema.Validate(db)
	var dbErr *DatabaseInconsistencyError
	if !errors.As(err, &dbErr) {
		t.Fatalf("Validate() err = %v, want *DatabaseInconsistencyError", err)
	}
	if dbErr.Object != "music.AlbumArt" {
		t.Fatalf("Object = %q, want %q", dbErr.Object, "music.AlbumArt")
	}
}

func TestSchemaValidateExtraTable(t *testing.T) {
	db := newAttachedDB(t)
	schema := buildSchema(Version1_15_0)
	if err := schema.Create(db, uuid.NewString()); err != nil {
		t.Fatalf("Create() err = %v", err)
	}
	if _, err := db.Exec("CREATE TABLE music.NotInSchema (id INTEGER)"); err != nil {
		t.Fatalf("CREATE TABLE err = %v", err)
	}

	err := schema.Validate(db)
	var dbErr *DatabaseInconsistencyError
	if !errors.As(err, &dbErr) {
		t.Fatalf("Validate() err = %v, want *DatabaseInconsistencyError", err)
	}
	if dbErr.Object != "music.NotInSchema" {
		t.Fatalf("Object = %q, want %q", dbErr.Object, "music.NotInSchema")
	}
}

func TestSchemaValidateExtraColumn(t *testing.T) {
	db := newAttachedDB(t)
	schema := buildSchema(Version1_13_0)
	if err := schema.Create(db, uuid.NewString()); err != nil {
		t.Fatalf("Create() err = %v", err)
	}
	if _, err := db.Exec("ALTER TABLE music.Track ADD COLUMN notInSchema TEXT"); err != nil {
		t.Fatalf("ALTER TABLE err = %v", err)
	}

	err := schema.Validate(db)
	var dbErr *DatabaseInconsistencyError
	if !errors.As(err, &dbErr) {
		t.Fatalf("Validate() err = %v, want *DatabaseInconsistencyError", err)
	}
	if dbErr.Object != "music.Track" {
		t.Fatalf("Object = %q, want %q", dbErr.Object, "music.Track")
	}
}

func TestSchemaValidateMissingIndex(t *testing.T) {
	db := newAttachedDB(t)
	schema := buildSchema(Version1_17_0)
	if err := schema.Create(db, uuid.NewString()); err != nil {
		t.Fatalf("Create() err = %v", err)
	}
	if _, err := db.Exec("DROP INDEX music.index_Track_path"); err != nil {
		t.Fatalf("DROP INDEX err = %v", err)
	}

	err := schema.Validate(db)
	var dbErr *DatabaseInconsistencyError
	if !errors.As(err, &dbErr) {
		t.Fatalf("Validate() err = %v, want *DatabaseInconsistencyError", err)
	}
}

func TestSchemaValidateWrongColumnType(t *testing.T) {
	// The firmware/desktop 1.18.0 variants are schema-identical except for
	// isExternalTrack's declared type: validating the firmware schema
	// against a desktop-created store must fail on that column.
	db := newAttachedDB(t)
	epSchema := buildSchema(Version1_18_0EP)
	if err := epSchema.Create(db, uuid.NewString()); err != nil {
		t.Fatalf("Create() err = %v", err)
	}

	fwSchema := buildSchema(Version1_18_0FW)
	err := fwSchema.Validate(db)
	var dbErr *DatabaseInconsistencyError
	if !errors.As(err, &dbErr) {
		t.Fatalf("Validate() err = %v, want *DatabaseInconsistencyError", err)
	}
	if dbErr.Object != "music.Track.isExternalTrack" {
		t.Fatalf("Object = %q, want %q", dbErr.Object, "music.Track.isExternalTrack")
	}
}

func TestSeedInformationRow(t *testing.T) {
	db := newAttachedDB(t)
	schema := buildSchema(Version1_15_0)
	id := uuid.NewString()
	if err := schema.Create(db, id); err != nil {
		t.Fatalf("Create() err = %v", err)
	}

	for _, store := range []string{"music", "perfdata"} {
		var gotUUID string
		var major, minor, patch int
		err := db.QueryRow(
			"SELECT uuid, schemaVersionMajor, schemaVersionMinor, schemaVersionPatch FROM " + store + ".Information WHERE id = 1",
		).Scan(&gotUUID, &major, &minor, &patch)
		if err != nil {
			t.Fatalf("%s.Information query err = %v", store, err)
		}
		if gotUUID != id {
			t.Fatalf("%s.Information.uuid = %q, want %q", store, gotUUID, id)
		}
		if major != 1 || minor != 15 || patch != 0 {
			t.Fatalf("%s.Information version = %d.%d.%d, want 1.15.0", store, major, minor, patch)
		}
	}
}
