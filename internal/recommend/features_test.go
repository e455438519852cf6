// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package recommend

import (
	"reflect"
	"testing"
)

func TestFeatureRecord(t *testing.T) {
	var r FeatureRecord

	if r.Get(FeatureTemporal) != 0 || r.Has(FeatureTemporal) {
		t.Error("zero record should read 0 and report unset")
	}

	r.Set(FeatureTemporal, 0.7)
	r.Set(FeatureFollowingClub, 0)

	if r.Get(FeatureTemporal) != 0.7 {
		t.Errorf("Get() = %f, want 0.7", r.Get(FeatureTemporal))
	}
	if !r.Has(FeatureFollowingClub) {
		t.Error("explicit zero should be reported as set")
	}

	want := map[string]float64{"temporal_score": 0.7, "is_following_club": 0}
	if got := r.Map(); !reflect.DeepEqual(got, want) {
		t.Errorf("Map() = %v, want %v", got, want)
	}

	// Out-of-range features are ignored.
	r.Set(Feature(-1), 1)
	r.Set(featureCount, 1)
	if r.Get(featureCount) != 0 || r.Has(Feature(-1)) {
		t.Error("out-of-range feature should be ignored")
	}
	if Feature(99).String() != "unknown" {
		t.Errorf("String() = %q, want unknown", Feature(99).String())
	}
}

func table(name string, rows ...FeatureRow) FeatureTable {
	return FeatureTable{Name: name, Rows: rows}
}

func row(eventID int, set map[Feature]float64) FeatureRow {
	r := FeatureRow{EventID: eventID, ClubID: eventID * 10}
	for f, v := range set {
		r.Features.Set(f, v)
	}
	return r
}

func TestMergeFeatures(t *testing.T) {
	base := table("candidates", row(1, nil), row(2, nil), row(3, nil))
	temporal := table("temporal",
		row(3, map[Feature]float64{FeatureTemporal: 0.3}),
		row(1, map[Feature]float64{FeatureTemporal: 0.9}),
	)
	affinity := table("affinity",
		row(2, map[Feature]float64{FeatureFollowingClub: 1}),
		row(99, map[Feature]float64{FeatureFollowingClub: 1}),
	)

	merged := MergeFeatures(base, temporal, affinity)

	if len(merged) != 3 {
		t.Fatalf("len = %d, want 3 (base universe only)", len(merged))
	}
	for i, want := range []int{1, 2, 3} {
		if merged[i].EventID != want {
			t.Errorf("merged[%d].EventID = %d, want %d", i, merged[i].EventID, want)
		}
	}
	if merged[0].Features.Get(FeatureTemporal) != 0.9 {
		t.Errorf("event 1 temporal = %f, want 0.9", merged[0].Features.Get(FeatureTemporal))
	}
	if merged[1].Features.Get(FeatureTemporal) != 0 || merged[1].Features.Has(FeatureTemporal) {
		t.Error("event 2 missing from temporal table should read 0")
	}
	if merged[1].Features.Get(FeatureFollowingClub) != 1 {
		t.Error("event 2 should carry affinity features")
	}
	if merged[2].ClubID != 30 {
		t.Errorf("ClubID = %d, want 30", merged[2].ClubID)
	}
}

func TestMergeFeatures_OrderInvariant(t *testing.T) {
	base := table("candidates", row(1, nil), row(2, nil))
	a := table("a", row(1, map[Feature]float64{FeatureTemporal: 0.4, FeatureDaysUntil: 3}))
	b := table("b", row(2, map[Feature]float64{FeaturePopularity: 0.2}), row(1, map[Feature]float64{FeaturePopularity: 0.8}))
	c := table("c", row(2, map[Feature]float64{FeatureContentSimilarity: 0.5}))

	orders := [][]FeatureTable{
		{base, a, b, c},
		{base, c, b, a},
		{base, b, a, c},
	}

	want := MergeFeatures(orders[0]...)
	for i, tables := range orders[1:] {
		got := MergeFeatures(tables...)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("order %d: MergeFeatures() = %+v, want %+v", i+1, got, want)
		}
	}
}

func TestMergeFeatures_Empty(t *testing.T) {
	if got := MergeFeatures(); got == nil || len(got) != 0 {
		t.Errorf("MergeFeatures() = %v, want empty non-nil", got)
	}
}

func TestFeatureTable_Add(t *testing.T) {
	tbl := NewFeatureTable("test", 1)
	e1 := Event{ID: 1, ClubID: 5}
	e2 := Event{ID: 2, ClubID: 6}

	tbl.Add(&e1).Set(FeatureTemporal, 0.5)
	tbl.Add(&e2).Set(FeatureTemporal, 0.25)

	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tbl.Rows))
	}
	if tbl.Rows[0].Features.Get(FeatureTemporal) != 0.5 || tbl.Rows[1].ClubID != 6 {
		t.Errorf("rows = %+v", tbl.Rows)
	}
}
