// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package algorithms

import (
	"testing"
	"time"

	"github.com/tomtom215/campusrec/internal/recommend"
	"github.com/tomtom215/campusrec/internal/recommend/textindex"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var testClubs = []recommend.Club{
	{ID: 1, Name: "Robotics Club", Description: "robots drones autonomous vehicles", Purpose: "build robots and compete"},
	{ID: 2, Name: "Drone Society", Description: "drones aerial robots flight", Purpose: "fly drones and build robots"},
	{ID: 3, Name: "Chess Club", Description: "chess openings tournaments", Purpose: "play chess every week"},
	{ID: 4, Name: "Poetry Circle", Description: "poems readings literature", Purpose: "share poems"},
}

// newSnapshot fits a catalog snapshot over clubs.
func newSnapshot(t *testing.T, clubs []recommend.Club) *recommend.CatalogSnapshot {
	t.Helper()

	snap := &recommend.CatalogSnapshot{Clubs: make(map[int]recommend.Club, len(clubs)), BuiltAt: testNow}
	docs := make([]textindex.Document, 0, len(clubs))
	for i := range clubs {
		snap.Clubs[clubs[i].ID] = clubs[i]
		docs = append(docs, textindex.Document{ID: clubs[i].ID, Text: clubs[i].IndexText()})
	}
	snap.Index, snap.IndexErr = textindex.Fit(docs, textindex.Options{MaxFeatures: 200, NGramMax: 2})
	return snap
}

// event builds a public event of club starting days from testNow.
func event(id, club int, days float64, title string) recommend.Event {
	return recommend.Event{
		ID:       id,
		ClubID:   club,
		Title:    title,
		StartAt:  testNow.Add(time.Duration(days * 24 * float64(time.Hour))),
		IsPublic: true,
	}
}

// rowByEvent indexes a feature table by event ID.
func rowByEvent(table recommend.FeatureTable) map[int]*recommend.FeatureRecord {
	out := make(map[int]*recommend.FeatureRecord, len(table.Rows))
	for i := range table.Rows {
		out[table.Rows[i].EventID] = &table.Rows[i].Features
	}
	return out
}

func assertUnit(t *testing.T, name string, v float64) {
	t.Helper()
	if v < 0 || v > 1 {
		t.Errorf("%s = %f, want within [0,1]", name, v)
	}
}
