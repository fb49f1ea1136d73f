// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"errors"
	"fmt"
)

// Sentinel errors. These propagate unchanged to the caller; the library
// never catches and hides one (spec §7).
var (
	// ErrLibraryNotFound is returned opening an existing library whose
	// directory or database files are absent.
	ErrLibraryNotFound = errors.New("engineprime: library not found")

	// ErrTrackDeleted is returned reading a track id that has no row.
	ErrTrackDeleted = errors.New("engineprime: track deleted")

	// ErrCorruptBlob is returned by a blob decoder on a framing or length
	// violation, an inflate failure, or unexpected trailing bytes.
	ErrCorruptBlob = errors.New("engineprime: corrupt performance blob")

	// ErrClosed is returned by any operation on a Library handle after
	// Close has been called.
	ErrClosed = errors.New("engineprime: library handle closed")
)

// UnsupportedSchemaError is returned when a library's (major, minor, patch)
// tuple is not in the schema registry.
type UnsupportedSchemaError struct {
	Major, Minor, Patch int
}

func (e *UnsupportedSchemaError) Error() string {
	return fmt.Sprintf("engineprime: unsupported schema version %d.%d.%d", e.Major, e.Minor, e.Patch)
}

// UnsupportedBlobVersionError is returned when a blob's leading version tag
// is not one this codec understands.
type UnsupportedBlobVersionError struct {
	Shape   string
	Version int
}

func (e *UnsupportedBlobVersionError) Error() string {
	return fmt.Sprintf("engineprime: unsupported %s blob version %d", e.Shape, e.Version)
}

// DatabaseInconsistencyError reports a catalog mismatch, a disagreeing
// cross-store schema version, or a duplicate singleton row, naming the
// object that failed to match.
type DatabaseInconsistencyError struct {
	Object string
	Reason string
}

func (e *DatabaseInconsistencyError) Error() string {
	return fmt.Sprintf("engineprime: database inconsistency in %s: %s", e.Object, e.Reason)
}

// TrackDatabaseInconsistencyError reports multiple rows where at most one
// is allowed for a given track id. GetTrack returns it when more than one
// Track row matches; the PerformanceData and metadata readers do not
// return it.
type TrackDatabaseInconsistencyError struct {
	TrackID int64
	Reason  string
}

func (e *TrackDatabaseInconsistencyError) Error() string {
	return fmt.Sprintf("engineprime: track %d database inconsistency: %s", e.TrackID, e.Reason)
}

// StorageError wraps a lower-level database/sql or driver I/O failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("engineprime: storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
