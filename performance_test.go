// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import "testing"

// TestGetPerformanceDataAbsentRow is S6: a fresh library with no stored row
// returns a default, not an error.
func TestGetPerformanceDataAbsentRow(t *testing.T) {
	lib := openInMemoryLibrary(t, Version1_15_0)

	got, err := lib.GetPerformanceData(999)
	if err != nil {
		t.Fatalf("GetPerformanceData(999) err = %v", err)
	}
	want := DefaultPerformanceData(999)
	if got.TrackID != want.TrackID || got.IsAnalyzed != want.IsAnalyzed || got.IsRendered != want.IsRendered {
		t.Fatalf("got = %+v, want %+v", got, want)
	}
	if got.TrackData != want.TrackData {
		t.Fatalf("TrackData = %+v, want %+v", got.TrackData, want.TrackData)
	}
	if len(got.BeatData.Default) != 0 || len(got.BeatData.Adjusted) != 0 {
		t.Fatalf("BeatData = %+v, want empty", got.BeatData)
	}
}

// TestPerformanceDataRoundTrip is S5 driven through the storage facade: a
// BeatData blob with two strictly increasing default markers survives a
// Set/Get round trip.
func TestPerformanceDataRoundTrip(t *testing.T) {
	lib := openInMemoryLibrary(t, Version1_17_0)
	id, err := lib.CreateTrack(Track{Length: int64p(1)})
	if err != nil {
		t.Fatalf("CreateTrack() err = %v", err)
	}

	p := PerformanceData{
		TrackID:    id,
		IsAnalyzed: true,
		IsRendered: true,
		TrackData:  TrackData{SampleRate: 44100, Samples: 1.764e6, AverageLoudness: 0.7, Key: 3},
		BeatData: BeatData{
			SampleRate: 44100,
			Samples:    1e7,
			Default: []BeatGridMarker{
				{SampleOffset: 0, BeatNumber: 0, BeatsUntilNext: 4, Source: 0},
				{SampleOffset: 22050, BeatNumber: 1, BeatsUntilNext: 4, Source: 0},
			},
		},
		HasSeratoValues:    true,
		HasRekordboxValues: true,
		HasTraktorValues:   true,
	}
	if err := lib.SetPerformanceData(p); err != nil {
		t.Fatalf("SetPerformanceData() err = %v", err)
	}

	got, err := lib.GetPerformanceData(id)
	if err != nil {
		t.Fatalf("GetPerformanceData() err = %v", err)
	}
	if got.TrackData != p.TrackData {
		t.Fatalf("TrackData = %+v, want %+v", got.TrackData, p.TrackData)
	}
	if len(got.BeatData.Default) != 2 {
		t.Fatalf("len(BeatData.Default) = %d, want 2", len(got.BeatData.Default))
	}
	for i := 1; i < len(got.BeatData.Default); i++ {
		if got.BeatData.Default[i].SampleOffset <= got.BeatData.Default[i-1].SampleOffset {
			t.Fatalf("markers not strictly increasing at index %d", i)
		}
	}
	if !got.HasSeratoValues || !got.HasRekordboxValues || !got.HasTraktorValues {
		t.Fatalf("got flags = %+v, want all true", got)
	}
}

// TestPerformanceDataFlagProjection confirms hasRekordboxValues/
// hasTraktorValues are silently dropped on a library older than their
// introduction rather than causing an error.
func TestPerformanceDataFlagProjection(t *testing.T) {
	lib := openInMemoryLibrary(t, Version1_6_0)
	id, err := lib.CreateTrack(Track{Length: int64p(1)})
	if err != nil {
		t.Fatalf("CreateTrack() err = %v", err)
	}

	p := PerformanceData{TrackID: id, HasSeratoValues: true, HasRekordboxValues: true, HasTraktorValues: true}
	if err := lib.SetPerformanceData(p); err != nil {
		t.Fatalf("SetPerformanceData() err = %v", err)
	}

	got, err := lib.GetPerformanceData(id)
	if err != nil {
		t.Fatalf("GetPerformanceData() err = %v", err)
	}
	if !got.HasSeratoValues {
		t.Fatal("HasSeratoValues = false, want true")
	}
	if got.HasRekordboxValues || got.HasTraktorValues {
		t.Fatalf("got = %+v, want Rekordbox/Traktor flags false on a 1.6.0 library", got)
	}
}

func TestClearPerformanceData(t *testing.T) {
	lib := openInMemoryLibrary(t, Version1_15_0)
	id, err := lib.CreateTrack(Track{Length: int64p(1)})
	if err != nil {
		t.Fatalf("CreateTrack() err = %v", err)
	}
	if err := lib.SetPerformanceData(PerformanceData{TrackID: id, IsAnalyzed: true}); err != nil {
		t.Fatalf("SetPerformanceData() err = %v", err)
	}
	if err := lib.ClearPerformanceData(id); err != nil {
		t.Fatalf("ClearPerformanceData() err = %v", err)
	}

	got, err := lib.GetPerformanceData(id)
	if err != nil {
		t.Fatalf("GetPerformanceData() after clear err = %v", err)
	}
	if got.IsAnalyzed {
		t.Fatal("IsAnalyzed = true after ClearPerformanceData, want the synthesized default")
	}
}

func TestClearPerformanceDataNoRowIsNotAnError(t *testing.T) {
	lib := openInMemoryLibrary(t, Version1_15_0)
	if err := lib.ClearPerformanceData(12345); err != nil {
		t.Fatalf("ClearPerformanceData() on an absent row err = %v, want nil", err)
	}
}
