// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package algorithms

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/tomtom215/campusrec/internal/recommend"
)

func TestTemporalScore(t *testing.T) {
	s := recommend.DefaultConfig().Temporal

	tests := []struct {
		name string
		days float64
		want float64
	}{
		{"past event", -0.5, 0},
		{"long past event", -30, 0},
		{"starting now", 0, 0.7 + 0.15},
		{"in 30 days", 30, math.Exp(-1)*0.7 + 0.15},
		{"at horizon", 90, math.Exp(-3)*0.7 + 0.15},
		{"beyond horizon", 90.01, 0.1},
		{"unscheduled", UnscheduledDays, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TemporalScore(tt.days, s); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TemporalScore(%v) = %f, want %f", tt.days, got, tt.want)
			}
		})
	}
}

func TestTemporalScore_NonIncreasing(t *testing.T) {
	s := recommend.DefaultConfig().Temporal

	prev := TemporalScore(0, s)
	for d := 0.25; d <= s.MaxDaysAhead; d += 0.25 {
		cur := TemporalScore(d, s)
		if cur > prev {
			t.Fatalf("score increased from %f to %f at day %v", prev, cur, d)
		}
		assertUnit(t, "temporal_score", cur)
		prev = cur
	}
}

func TestDaysUntil(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		want  float64
	}{
		{"zero start", time.Time{}, UnscheduledDays},
		{"in 36 hours", testNow.Add(36 * time.Hour), 1.5},
		{"12 hours ago", testNow.Add(-12 * time.Hour), -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntil(tt.start, testNow); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DaysUntil() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestTemporal_Score(t *testing.T) {
	events := []recommend.Event{
		event(1, 1, 2, "soon"),
		event(2, 1, 40, "later"),
		{ID: 3, ClubID: 1, IsPublic: true},
	}
	in := &recommend.ScoringInput{Now: testNow, Events: events, Config: recommend.DefaultConfig()}

	table, err := NewTemporal().Score(context.Background(), in)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	rows := rowByEvent(table)

	if rows[1].Get(recommend.FeatureTemporal) <= rows[2].Get(recommend.FeatureTemporal) {
		t.Error("sooner event should score higher")
	}
	if got := rows[1].Get(recommend.FeatureDaysUntil); math.Abs(got-2) > 1e-9 {
		t.Errorf("days_until_event = %f, want 2", got)
	}
	if got := rows[3].Get(recommend.FeatureDaysUntil); got != UnscheduledDays {
		t.Errorf("unscheduled days_until_event = %f, want %d", got, UnscheduledDays)
	}
	if got := rows[3].Get(recommend.FeatureTemporal); got != 0.1 {
		t.Errorf("unscheduled temporal_score = %f, want 0.1", got)
	}
}
