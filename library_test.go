// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

// TestOpenInMemoryThenValidate is S2: create a new in-memory library at
// 1.18.0-fw, confirm validate-after-create succeeds (implicitly, via a
// successful Open), the UUID is well-formed, and the version tuple matches.
func TestOpenInMemoryThenValidate(t *testing.T) {
	lib, err := OpenInMemory(Version1_18_0FW, nil)
	if err != nil {
		t.Fatalf("OpenInMemory() err = %v", err)
	}
	defer lib.Close()

	if _, err := uuid.Parse(lib.UUID()); err != nil {
		t.Fatalf("UUID() = %q is not a well-formed UUID: %v", lib.UUID(), err)
	}
	major, minor, patch := lib.Version().Tuple()
	if major != 1 || minor != 18 || patch != 0 {
		t.Fatalf("Version().Tuple() = (%d, %d, %d), want (1, 18, 0)", major, minor, patch)
	}
	if lib.Version().Variant != VariantFirmware {
		t.Fatalf("Version().Variant = %q, want %q", lib.Version().Variant, VariantFirmware)
	}
}

func TestOpenNewThenReopen(t *testing.T) {
	dir := t.TempDir()
	lib, err := OpenNew(dir, Version1_15_0, nil)
	if err != nil {
		t.Fatalf("OpenNew() err = %v", err)
	}
	wantUUID := lib.UUID()
	if err := lib.Close(); err != nil {
		t.Fatalf("Close() err = %v", err)
	}

	for _, name := range []string{musicFileName, perfFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}

	reopened, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open() err = %v", err)
	}
	defer reopened.Close()

	if reopened.UUID() != wantUUID {
		t.Fatalf("reopened UUID() = %q, want %q", reopened.UUID(), wantUUID)
	}
	if reopened.Version() != Version1_15_0 {
		t.Fatalf("reopened Version() = %v, want %v", reopened.Version(), Version1_15_0)
	}
}

func TestOpenMissingDirectory(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	if !errors.Is(err, ErrLibraryNotFound) {
		t.Fatalf("Open() err = %v, want ErrLibraryNotFound", err)
	}
}

func TestOpenMissingDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	lib, err := OpenNew(dir, Version1_15_0, nil)
	if err != nil {
		t.Fatalf("OpenNew() err = %v", err)
	}
	if err := lib.Close(); err != nil {
		t.Fatalf("Close() err = %v", err)
	}
	if err := os.Remove(filepath.Join(dir, perfFileName)); err != nil {
		t.Fatalf("Remove() err = %v", err)
	}

	_, err = Open(dir, nil)
	if !errors.Is(err, ErrLibraryNotFound) {
		t.Fatalf("Open() err = %v, want ErrLibraryNotFound", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	lib, err := OpenInMemory(Version1_15_0, nil)
	if err != nil {
		t.Fatalf("OpenInMemory() err = %v", err)
	}
	if err := lib.Close(); err != nil {
		t.Fatalf("first Close() err = %v", err)
	}
	if err := lib.Close(); err != nil {
		t.Fatalf("second Close() err = %v", err)
	}
}

func TestOperationsAfterCloseFail(t *testing.T) {
	lib, err := OpenInMemory(Version1_15_0, nil)
	if err != nil {
		t.Fatalf("OpenInMemory() err = %v", err)
	}
	if err := lib.Close(); err != nil {
		t.Fatalf("Close() err = %v", err)
	}

	if _, err := lib.GetTrack(1); !errors.Is(err, ErrClosed) {
		t.Fatalf("GetTrack() after Close() err = %v, want ErrClosed", err)
	}
	if _, err := lib.CreateTrack(Track{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("CreateTrack() after Close() err = %v, want ErrClosed", err)
	}
}

func TestOpenUnsupportedSchema(t *testing.T) {
	db, err := openAttached(":memory:", ":memory:")
	if err != nil {
		t.Fatalf("openAttached() err = %v", err)
	}
	defer db.Close()

	schema := buildSchema(Version1_15_0)
	schema.Version = Version{9, 9, 9, ""}
	if err := schema.Create(db, uuid.NewString()); err != nil {
		t.Fatalf("Create() err = %v", err)
	}
	if _, err := db.Exec("UPDATE music.Information SET schemaVersionMajor = 9, schemaVersionMinor = 9, schemaVersionPatch = 9"); err != nil {
		t.Fatalf("UPDATE err = %v", err)
	}
	if _, err := db.Exec("UPDATE perfdata.Information SET schemaVersionMajor = 9, schemaVersionMinor = 9, schemaVersionPatch = 9"); err != nil {
		t.Fatalf("UPDATE err = %v", err)
	}

	_, err = finishOpen(db, nil)
	var unsupported *UnsupportedSchemaError
	if !errors.As(err, &unsupported) {
		t.Fatalf("finishOpen() err = %v, want *UnsupportedSchemaError", err)
	}
}
