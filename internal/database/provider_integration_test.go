// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

//go:build integration

package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/campusrec/internal/config"
	"github.com/tomtom215/campusrec/internal/database"
	"github.com/tomtom215/campusrec/internal/recommend"
	"github.com/tomtom215/campusrec/internal/testinfra"
)

const seedSQL = `
INSERT INTO clubs (club_id, name, description, purpose, founded_date) VALUES
  (1, 'Chess Club', 'Weekly chess', 'Strategy games', '2019-09-01'),
  (2, 'Robotics', 'Build robots', NULL, NULL);

INSERT INTO club_members (club_id, user_id) VALUES (1, 7), (1, 8), (2, 8);

INSERT INTO events (event_id, title, description, start_at, club_id, is_cancelled, is_public) VALUES
  (10, 'Blitz Night', 'Fast games', now() + interval '2 days', 1, FALSE, TRUE),
  (11, 'Robot Expo', NULL, now() + interval '5 days', 2, FALSE, TRUE),
  (12, 'Cancelled Meetup', NULL, now() + interval '3 days', 1, TRUE, TRUE),
  (13, 'Board Meeting', NULL, now() + interval '4 days', 1, FALSE, FALSE),
  (14, 'Past Tournament', NULL, now() - interval '10 days', 1, FALSE, TRUE);

INSERT INTO event_attendees (event_id, user_id) VALUES (14, 7);
INSERT INTO favorite_events (event_id, user_id) VALUES (14, 7), (11, 7);
`

func setupDB(t *testing.T) *database.DB {
	t.Helper()
	pg := testinfra.StartPostgres(t)
	ctx := context.Background()

	db, err := database.Open(ctx, &config.DatabaseConfig{URL: pg.DSN, QueryTimeout: 10 * time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if _, err := db.Conn().ExecContext(ctx, seedSQL); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func TestProvider_Postgres(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	db := setupDB(t)
	p := database.NewProvider(db)
	ctx := context.Background()

	t.Run("followed clubs", func(t *testing.T) {
		got, err := p.FollowedClubs(ctx, 8)
		if err != nil {
			t.Fatalf("FollowedClubs() error = %v", err)
		}
		if len(got) != 2 || got[0] != 1 || got[1] != 2 {
			t.Errorf("FollowedClubs(8) = %v, want [1 2]", got)
		}
	})

	t.Run("clubs", func(t *testing.T) {
		got, err := p.Clubs(ctx)
		if err != nil {
			t.Fatalf("Clubs() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len(Clubs()) = %d, want 2", len(got))
		}
		if got[1].Purpose != "" || !got[1].FoundedDate.IsZero() {
			t.Errorf("NULL columns not mapped to zero values: %+v", got[1])
		}
	})

	t.Run("events skip cancelled and private", func(t *testing.T) {
		got, err := p.Events(ctx, recommend.EventFilter{MinDate: now})
		if err != nil {
			t.Fatalf("Events() error = %v", err)
		}
		if len(got) != 2 || got[0].ID != 10 || got[1].ID != 11 {
			t.Fatalf("Events() = %+v, want events 10 and 11", got)
		}
		if got[0].ClubName != "Chess Club" {
			t.Errorf("ClubName = %q, want Chess Club", got[0].ClubName)
		}
	})

	t.Run("events exclusions and max date", func(t *testing.T) {
		got, err := p.Events(ctx, recommend.EventFilter{
			MinDate:         now,
			MaxDate:         now.Add(7 * 24 * time.Hour),
			ExcludeEventIDs: []int{10},
		})
		if err != nil {
			t.Fatalf("Events() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != 11 {
			t.Errorf("Events() = %+v, want only event 11", got)
		}
	})

	t.Run("history", func(t *testing.T) {
		got, err := p.UserHistory(ctx, 7, now.AddDate(0, 0, -30))
		if err != nil {
			t.Fatalf("UserHistory() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len(UserHistory()) = %d, want 2", len(got))
		}
		byEvent := map[int]recommend.Interaction{}
		for _, h := range got {
			byEvent[h.EventID] = h
		}
		if h := byEvent[14]; !h.Attended || !h.Favorited {
			t.Errorf("event 14 = %+v, want attended and favorited", h)
		}
		if h := byEvent[11]; h.Attended || !h.Favorited {
			t.Errorf("event 11 = %+v, want favorited only", h)
		}
	})

	t.Run("counts", func(t *testing.T) {
		members, err := p.ClubMemberCounts(ctx)
		if err != nil {
			t.Fatalf("ClubMemberCounts() error = %v", err)
		}
		if members[1] != 2 || members[2] != 1 {
			t.Errorf("ClubMemberCounts() = %v", members)
		}
		events, err := p.ClubEventCounts(ctx, now.AddDate(0, 0, -30))
		if err != nil {
			t.Fatalf("ClubEventCounts() error = %v", err)
		}
		if events[1] != 3 || events[2] != 1 {
			t.Errorf("ClubEventCounts() = %v, want club 1: 3, club 2: 1", events)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := p.Ping(ctx); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})
}
