// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package recommend

// Feature names a scalar in a FeatureRecord.
type Feature int

const (
	// FeatureContentSimilarity blends club and event-text similarity.
	FeatureContentSimilarity Feature = iota
	// FeatureTitleMatch is the event-text similarity alone.
	FeatureTitleMatch
	// FeatureTemporal is the start-time decay score.
	FeatureTemporal
	// FeatureDaysUntil is the raw number of days until the event starts.
	FeatureDaysUntil
	// FeatureFollowingClub is 1 when the user follows the owning club.
	FeatureFollowingClub
	// FeaturePastAttendance is the raw attended-event count for the club.
	FeaturePastAttendance
	// FeatureUserAffinity blends following and normalized attendance.
	FeatureUserAffinity
	// FeatureClubMemberCount is the raw club member count.
	FeatureClubMemberCount
	// FeatureClubEventCount is the raw recent event count for the club.
	FeatureClubEventCount
	// FeaturePopularity blends normalized member and event counts.
	FeaturePopularity

	featureCount
)

var featureNames = [featureCount]string{
	FeatureContentSimilarity: "content_similarity",
	FeatureTitleMatch:        "title_match_score",
	FeatureTemporal:          "temporal_score",
	FeatureDaysUntil:         "days_until_event",
	FeatureFollowingClub:     "is_following_club",
	FeaturePastAttendance:    "past_club_attendance",
	FeatureUserAffinity:      "user_affinity_score",
	FeatureClubMemberCount:   "club_member_count",
	FeatureClubEventCount:    "club_event_count",
	FeaturePopularity:        "popularity_score",
}

// String returns the feature's wire name.
func (f Feature) String() string {
	if f < 0 || f >= featureCount {
		return "unknown"
	}
	return featureNames[f]
}

// FeatureRecord is a fixed-shape set of named features. Unset features
// read as 0.
type FeatureRecord struct {
	values [featureCount]float64
	set    uint32
}

// Get returns the value of f, or 0 if unset.
func (r *FeatureRecord) Get(f Feature) float64 {
	if f < 0 || f >= featureCount {
		return 0
	}
	return r.values[f]
}

// Set assigns v to f and marks it present.
func (r *FeatureRecord) Set(f Feature, v float64) {
	if f < 0 || f >= featureCount {
		return
	}
	r.values[f] = v
	r.set |= 1 << uint(f)
}

// Has reports whether f was explicitly set.
func (r *FeatureRecord) Has(f Feature) bool {
	if f < 0 || f >= featureCount {
		return false
	}
	return r.set&(1<<uint(f)) != 0
}

// merge copies every feature set in other into r.
func (r *FeatureRecord) merge(other *FeatureRecord) {
	for f := Feature(0); f < featureCount; f++ {
		if other.Has(f) {
			r.Set(f, other.values[f])
		}
	}
}

// Map returns the set features keyed by wire name.
func (r *FeatureRecord) Map() map[string]float64 {
	out := make(map[string]float64)
	for f := Feature(0); f < featureCount; f++ {
		if r.Has(f) {
			out[f.String()] = r.values[f]
		}
	}
	return out
}

// FeatureRow is one event's merged features.
type FeatureRow struct {
	EventID  int
	ClubID   int
	Features FeatureRecord
}

// FeatureTable is the output of one scorer: rows in candidate order.
type FeatureTable struct {
	// Name identifies the producing scorer.
	Name string

	// Rows holds one entry per scored event.
	Rows []FeatureRow
}

// NewFeatureTable allocates a table with capacity for n rows.
func NewFeatureTable(name string, n int) FeatureTable {
	return FeatureTable{Name: name, Rows: make([]FeatureRow, 0, n)}
}

// Add appends a row for event e and returns a pointer to its record. The
// pointer is valid until the next call to Add.
func (t *FeatureTable) Add(e *Event) *FeatureRecord {
	t.Rows = append(t.Rows, FeatureRow{EventID: e.ID, ClubID: e.ClubID})
	return &t.Rows[len(t.Rows)-1].Features
}

// MergeFeatures left-joins tables on event ID. The first table fixes the
// event universe and its order; later tables only contribute features they
// set, and events missing from them keep zero values. Scorers emit disjoint
// feature sets, so the merged records do not depend on table order after
// the first.
func MergeFeatures(tables ...FeatureTable) []FeatureRow {
	if len(tables) == 0 {
		return []FeatureRow{}
	}

	base := tables[0].Rows
	rows := make([]FeatureRow, len(base))
	pos := make(map[int]int, len(base))
	for i, row := range base {
		rows[i] = row
		pos[row.EventID] = i
	}

	for _, t := range tables[1:] {
		for i := range t.Rows {
			idx, ok := pos[t.Rows[i].EventID]
			if !ok {
				continue
			}
			rows[idx].Features.merge(&t.Rows[i].Features)
		}
	}

	return rows
}
