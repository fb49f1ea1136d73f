// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"errors"
	"testing"
)

func openInMemoryLibrary(t *testing.T, v Version) *Library {
	t.Helper()
	lib, err := OpenInMemory(v, nil)
	if err != nil {
		t.Fatalf("OpenInMemory(%v) err = %v", v, err)
	}
	t.Cleanup(func() { lib.Close() })
	return lib
}

func int64p(v int64) *int64     { return &v }
func float64p(v float64) *float64 { return &v }
func stringp(v string) *string  { return &v }

// TestTrackLifecycle is S3: create, read, update length, read again.
func TestTrackLifecycle(t *testing.T) {
	lib := openInMemoryLibrary(t, Version1_17_0)

	id, err := lib.CreateTrack(Track{
		PlayOrder:   int64p(1),
		Length:      int64p(240),
		BPM:         int64p(128),
		Year:        int64p(2020),
		Path:        stringp("/a/b.mp3"),
		Filename:    stringp("b.mp3"),
		Bitrate:     int64p(320000),
		BPMAnalyzed: float64p(127.96),
	})
	if err != nil {
		t.Fatalf("CreateTrack() err = %v", err)
	}

	got, err := lib.GetTrack(id)
	if err != nil {
		t.Fatalf("GetTrack() err = %v", err)
	}
	if got.Length == nil || *got.Length != 240 {
		t.Fatalf("Length = %v, want 240", got.Length)
	}
	if got.BPMAnalyzed == nil || (*got.BPMAnalyzed-127.96) > 1e-9 || (*got.BPMAnalyzed-127.96) < -1e-9 {
		t.Fatalf("BPMAnalyzed = %v, want ~127.96", got.BPMAnalyzed)
	}

	got.Length = int64p(241)
	if err := lib.UpdateTrack(got); err != nil {
		t.Fatalf("UpdateTrack() err = %v", err)
	}

	reread, err := lib.GetTrack(id)
	if err != nil {
		t.Fatalf("GetTrack() after update err = %v", err)
	}
	if reread.Length == nil || *reread.Length != 241 {
		t.Fatalf("Length after update = %v, want 241", reread.Length)
	}
}

func TestGetTrackDeleted(t *testing.T) {
	lib := openInMemoryLibrary(t, Version1_15_0)
	_, err := lib.GetTrack(999)
	if !errors.Is(err, ErrTrackDeleted) {
		t.Fatalf("GetTrack(999) err = %v, want ErrTrackDeleted", err)
	}
}

func TestUpdateTrackMissingRow(t *testing.T) {
	lib := openInMemoryLibrary(t, Version1_15_0)
	err := lib.UpdateTrack(Track{ID: 42, Length: int64p(1)})
	if !errors.Is(err, ErrTrackDeleted) {
		t.Fatalf("UpdateTrack() err = %v, want ErrTrackDeleted", err)
	}
}

// TestTrackFieldProjection is the universal track CRUD round-trip property:
// fields introduced after a version are nil on read from an older library.
func TestTrackFieldProjection(t *testing.T) {
	lib := openInMemoryLibrary(t, Version1_9_1)

	id, err := lib.CreateTrack(Track{
		Length:           int64p(100),
		FileBytes:        int64p(12345), // introduced in 1.15.0, absent here
		URI:              stringp("engine://track/1"),
		IsBeatgridLocked: boolp(true),
	})
	if err != nil {
		t.Fatalf("CreateTrack() err = %v", err)
	}

	got, err := lib.GetTrack(id)
	if err != nil {
		t.Fatalf("GetTrack() err = %v", err)
	}
	if got.Length == nil || *got.Length != 100 {
		t.Fatalf("Length = %v, want 100", got.Length)
	}
	if got.FileBytes != nil {
		t.Fatalf("FileBytes = %v, want nil on a pre-1.15.0 library", got.FileBytes)
	}
	if got.URI != nil {
		t.Fatalf("URI = %v, want nil on a pre-1.17.0 library", got.URI)
	}
	if got.IsBeatgridLocked != nil {
		t.Fatalf("IsBeatgridLocked = %v, want nil on a pre-1.17.0 library", got.IsBeatgridLocked)
	}
}

func TestDeleteTrackCascades(t *testing.T) {
	lib := openInMemoryLibrary(t, Version1_15_0)

	id, err := lib.CreateTrack(Track{Length: int64p(100)})
	if err != nil {
		t.Fatalf("CreateTrack() err = %v", err)
	}
	title := "cascaded"
	if err := lib.SetMetaData(id, MetaTitle, &title); err != nil {
		t.Fatalf("SetMetaData() err = %v", err)
	}
	if err := lib.SetPerformanceData(PerformanceData{TrackID: id, IsAnalyzed: true}); err != nil {
		t.Fatalf("SetPerformanceData() err = %v", err)
	}

	if err := lib.DeleteTrack(id); err != nil {
		t.Fatalf("DeleteTrack() err = %v", err)
	}

	if _, err := lib.GetTrack(id); !errors.Is(err, ErrTrackDeleted) {
		t.Fatalf("GetTrack() after delete err = %v, want ErrTrackDeleted", err)
	}
	md, err := lib.GetAllMetaData(id)
	if err != nil {
		t.Fatalf("GetAllMetaData() err = %v", err)
	}
	if len(md) != 0 {
		t.Fatalf("GetAllMetaData() after delete = %v, want empty", md)
	}
	pd, err := lib.GetPerformanceData(id)
	if err != nil {
		t.Fatalf("GetPerformanceData() err = %v", err)
	}
	if pd.IsAnalyzed {
		t.Fatal("GetPerformanceData() after delete still reports IsAnalyzed, want the synthesized default")
	}
}

func boolp(v bool) *bool { return &v }
