// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/campusrec/internal/database/query"
	"github.com/tomtom215/campusrec/internal/recommend"
	"github.com/tomtom215/campusrec/internal/tracing"
)

// Provider reads recommender inputs from PostgreSQL. It implements
// recommend.DataProvider.
type Provider struct {
	db *DB
}

var _ recommend.DataProvider = (*Provider)(nil)

// NewProvider creates a provider over db.
func NewProvider(db *DB) *Provider {
	return &Provider{db: db}
}

const (
	followedClubsSQL = `SELECT club_id FROM club_members WHERE user_id = $1 ORDER BY club_id`

	clubsSQL = `SELECT club_id, name, COALESCE(description, ''), COALESCE(purpose, ''), founded_date, COALESCE(manager_id, 0)
FROM clubs
ORDER BY club_id`

	eventsSelectSQL = `SELECT e.event_id, e.title, COALESCE(e.description, ''), COALESCE(e.location, ''),
       e.start_at, COALESCE(e.end_at, e.start_at), COALESCE(e.quota, 0), e.club_id,
       e.is_cancelled, e.is_public, COALESCE(e.created_by_user_id, 0), e.created_at,
       COALESCE(c.name, '')
FROM events e
LEFT JOIN clubs c ON e.club_id = c.club_id`

	historySQL = `SELECT DISTINCT e.event_id, e.club_id, e.start_at,
       ea.user_id IS NOT NULL AS attended,
       fe.user_id IS NOT NULL AS favorited,
       ea.created_at, fe.created_at
FROM events e
LEFT JOIN event_attendees ea ON e.event_id = ea.event_id AND ea.user_id = $1
LEFT JOIN favorite_events fe ON e.event_id = fe.event_id AND fe.user_id = $1
WHERE (ea.user_id IS NOT NULL OR fe.user_id IS NOT NULL)
  AND e.start_at >= $2
ORDER BY e.start_at DESC`

	memberCountsSQL = `SELECT club_id, COUNT(*) FROM club_members GROUP BY club_id`

	eventCountsSQL = `SELECT club_id, COUNT(*) FROM events
WHERE start_at >= $1 AND is_cancelled = FALSE
GROUP BY club_id`
)

// buildEventsQuery returns the candidate event query for filter.
//
//nolint:gocritic // hugeParam: filter passed by value like the interface
func buildEventsQuery(filter recommend.EventFilter) (string, []interface{}) {
	wb := query.NewWhereBuilder().
		AddClause("e.is_cancelled = FALSE").
		AddClause("e.is_public = TRUE").
		AddMinTime("e.start_at", filter.MinDate).
		AddMaxTime("e.start_at", filter.MaxDate).
		AddExcludeIDs("e.event_id", filter.ExcludeEventIDs)
	where, args := wb.Build()
	return eventsSelectSQL + "\n" + where + "\nORDER BY e.start_at, e.event_id", args
}

// FollowedClubs returns the clubs the user is a member of.
func (p *Provider) FollowedClubs(ctx context.Context, userID int) ([]int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.db.queryTimeout())
	defer cancel()
	ctx, end := tracing.StartDBSpan(ctx, "club_members", "select")

	start := time.Now()
	ids, err := p.queryIDs(ctx, followedClubsSQL, userID)
	p.db.record("select", "club_members", start, err)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("followed clubs for user %d: %w", userID, err)
	}
	return ids, nil
}

func (p *Provider) queryIDs(ctx context.Context, q string, args ...interface{}) ([]int, error) {
	rows, err := p.db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, p.db.logger, "rows")

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Clubs returns every club.
func (p *Provider) Clubs(ctx context.Context) ([]recommend.Club, error) {
	ctx, cancel := context.WithTimeout(ctx, p.db.queryTimeout())
	defer cancel()
	ctx, end := tracing.StartDBSpan(ctx, "clubs", "select")

	start := time.Now()
	clubs, err := p.queryClubs(ctx)
	p.db.record("select", "clubs", start, err)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("clubs: %w", err)
	}
	return clubs, nil
}

func (p *Provider) queryClubs(ctx context.Context) ([]recommend.Club, error) {
	rows, err := p.db.conn.QueryContext(ctx, clubsSQL)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, p.db.logger, "rows")

	clubs := make([]recommend.Club, 0)
	for rows.Next() {
		var c recommend.Club
		var founded sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Purpose, &founded, &c.ManagerID); err != nil {
			return nil, err
		}
		if founded.Valid {
			c.FoundedDate = founded.Time.UTC()
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

// Events returns non-cancelled public events matching filter, ordered by
// start time.
//
//nolint:gocritic // hugeParam: filter passed by value per the interface
func (p *Provider) Events(ctx context.Context, filter recommend.EventFilter) ([]recommend.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, p.db.queryTimeout())
	defer cancel()
	ctx, end := tracing.StartDBSpan(ctx, "events", "select")

	start := time.Now()
	events, err := p.queryEvents(ctx, filter)
	p.db.record("select", "events", start, err)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	return events, nil
}

//nolint:gocritic // hugeParam: filter passed by value per the interface
func (p *Provider) queryEvents(ctx context.Context, filter recommend.EventFilter) ([]recommend.Event, error) {
	q, args := buildEventsQuery(filter)
	rows, err := p.db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, p.db.logger, "rows")

	events := make([]recommend.Event, 0)
	for rows.Next() {
		var e recommend.Event
		var startAt, endAt sql.NullTime
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.Location,
			&startAt, &endAt, &e.Quota, &e.ClubID,
			&e.IsCancelled, &e.IsPublic, &e.CreatedByUserID, &e.CreatedAt,
			&e.ClubName,
		); err != nil {
			return nil, err
		}
		if startAt.Valid {
			e.StartAt = startAt.Time.UTC()
		}
		if endAt.Valid {
			e.EndAt = endAt.Time.UTC()
		}
		e.CreatedAt = e.CreatedAt.UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

// UserHistory returns the user's attended and favorited events starting at
// or after since, newest first.
func (p *Provider) UserHistory(ctx context.Context, userID int, since time.Time) ([]recommend.Interaction, error) {
	ctx, cancel := context.WithTimeout(ctx, p.db.queryTimeout())
	defer cancel()
	ctx, end := tracing.StartDBSpan(ctx, "event_attendees", "select")

	start := time.Now()
	history, err := p.queryHistory(ctx, userID, since)
	p.db.record("select", "event_attendees", start, err)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("history for user %d: %w", userID, err)
	}
	return history, nil
}

func (p *Provider) queryHistory(ctx context.Context, userID int, since time.Time) ([]recommend.Interaction, error) {
	rows, err := p.db.conn.QueryContext(ctx, historySQL, userID, since.UTC())
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, p.db.logger, "rows")

	history := make([]recommend.Interaction, 0)
	for rows.Next() {
		it := recommend.Interaction{UserID: userID}
		var startAt, attendedAt, favoritedAt sql.NullTime
		if err := rows.Scan(&it.EventID, &it.ClubID, &startAt, &it.Attended, &it.Favorited, &attendedAt, &favoritedAt); err != nil {
			return nil, err
		}
		if startAt.Valid {
			it.StartAt = startAt.Time.UTC()
		}
		if attendedAt.Valid {
			it.AttendedAt = attendedAt.Time.UTC()
		}
		if favoritedAt.Valid {
			it.FavoritedAt = favoritedAt.Time.UTC()
		}
		history = append(history, it)
	}
	return history, rows.Err()
}

// ClubMemberCounts returns member counts keyed by club.
func (p *Provider) ClubMemberCounts(ctx context.Context) (map[int]int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.db.queryTimeout())
	defer cancel()
	ctx, end := tracing.StartDBSpan(ctx, "club_members", "count")

	start := time.Now()
	counts, err := p.queryCounts(ctx, memberCountsSQL)
	p.db.record("count", "club_members", start, err)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("club member counts: %w", err)
	}
	return counts, nil
}

// ClubEventCounts returns non-cancelled event counts since the given time,
// keyed by club.
func (p *Provider) ClubEventCounts(ctx context.Context, since time.Time) (map[int]int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.db.queryTimeout())
	defer cancel()
	ctx, end := tracing.StartDBSpan(ctx, "events", "count")

	start := time.Now()
	counts, err := p.queryCounts(ctx, eventCountsSQL, since.UTC())
	p.db.record("count", "events", start, err)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("club event counts: %w", err)
	}
	return counts, nil
}

func (p *Provider) queryCounts(ctx context.Context, q string, args ...interface{}) (map[int]int, error) {
	rows, err := p.db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, p.db.logger, "rows")

	counts := make(map[int]int)
	for rows.Next() {
		var club, n int
		if err := rows.Scan(&club, &n); err != nil {
			return nil, err
		}
		counts[club] = n
	}
	return counts, rows.Err()
}

// Ping verifies connectivity.
func (p *Provider) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}
