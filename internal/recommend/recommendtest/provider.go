// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

// Package recommendtest provides an in-memory recommend.DataProvider for
// tests of the engine and its callers.
package recommendtest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/campusrec/internal/recommend"
)

// Membership is a (user, club) follow row.
type Membership struct {
	UserID int
	ClubID int
}

// Provider serves data from slices with the same filtering rules as the SQL
// provider. Error fields make the matching method fail.
type Provider struct {
	mu sync.RWMutex

	ClubList     []recommend.Club
	EventList    []recommend.Event
	Memberships  []Membership
	History      []recommend.Interaction
	MemberCounts map[int]int
	EventCounts  map[int]int

	FollowedErr    error
	ClubsErr       error
	EventsErr      error
	HistoryErr     error
	MemberCountErr error
	EventCountErr  error
	PingErr        error

	// EventsErrAfter makes Events fail once it has been called this many
	// times. Zero disables it.
	EventsErrAfter int

	clubCalls  atomic.Int32
	eventCalls atomic.Int32
}

var _ recommend.DataProvider = (*Provider)(nil)

var errEventsAfter = errors.New("recommendtest: events unavailable")

// Update runs fn with the write lock held.
func (p *Provider) Update(fn func(p *Provider)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

// ClubCalls returns how many times Clubs was called.
func (p *Provider) ClubCalls() int {
	return int(p.clubCalls.Load())
}

// EventCalls returns how many times Events was called.
func (p *Provider) EventCalls() int {
	return int(p.eventCalls.Load())
}

// FollowedClubs returns the clubs userID is a member of.
func (p *Provider) FollowedClubs(_ context.Context, userID int) ([]int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.FollowedErr != nil {
		return nil, p.FollowedErr
	}
	out := []int{}
	for _, m := range p.Memberships {
		if m.UserID == userID {
			out = append(out, m.ClubID)
		}
	}
	return out, nil
}

// Clubs returns every club.
func (p *Provider) Clubs(_ context.Context) ([]recommend.Club, error) {
	p.clubCalls.Add(1)
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.ClubsErr != nil {
		return nil, p.ClubsErr
	}
	return append([]recommend.Club(nil), p.ClubList...), nil
}

// Events returns non-cancelled public events matching filter, by start time.
func (p *Provider) Events(_ context.Context, filter recommend.EventFilter) ([]recommend.Event, error) {
	n := int(p.eventCalls.Add(1))
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.EventsErr != nil {
		return nil, p.EventsErr
	}
	if p.EventsErrAfter > 0 && n > p.EventsErrAfter {
		return nil, errEventsAfter
	}

	excl := make(map[int]struct{}, len(filter.ExcludeEventIDs))
	for _, id := range filter.ExcludeEventIDs {
		excl[id] = struct{}{}
	}

	out := []recommend.Event{}
	for _, e := range p.EventList {
		if !e.IsCandidate() {
			continue
		}
		if !filter.MinDate.IsZero() && e.StartAt.Before(filter.MinDate) {
			continue
		}
		if !filter.MaxDate.IsZero() && e.StartAt.After(filter.MaxDate) {
			continue
		}
		if _, skip := excl[e.ID]; skip {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

// UserHistory returns userID's interactions with events starting at or after since.
func (p *Provider) UserHistory(_ context.Context, userID int, since time.Time) ([]recommend.Interaction, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.HistoryErr != nil {
		return nil, p.HistoryErr
	}
	out := []recommend.Interaction{}
	for _, h := range p.History {
		if h.UserID == userID && !h.StartAt.Before(since) {
			out = append(out, h)
		}
	}
	return out, nil
}

// ClubMemberCounts returns the configured member counts.
func (p *Provider) ClubMemberCounts(_ context.Context) (map[int]int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.MemberCountErr != nil {
		return nil, p.MemberCountErr
	}
	return copyCounts(p.MemberCounts), nil
}

// ClubEventCounts returns the configured event counts.
func (p *Provider) ClubEventCounts(_ context.Context, _ time.Time) (map[int]int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.EventCountErr != nil {
		return nil, p.EventCountErr
	}
	return copyCounts(p.EventCounts), nil
}

// Ping returns PingErr.
func (p *Provider) Ping(_ context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.PingErr
}

func copyCounts(in map[int]int) map[int]int {
	out := make(map[int]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
