// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package recommend

import (
	"context"
	"strings"
	"time"
)

// Club is a student club from the catalog.
type Club struct {
	// ID is the club identifier.
	ID int `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Description is free text, possibly empty.
	Description string `json:"description,omitempty"`

	// Purpose is the stated mission, possibly empty.
	Purpose string `json:"purpose,omitempty"`

	// FoundedDate is when the club was founded. Zero if unknown.
	FoundedDate time.Time `json:"founded_date,omitempty"`

	// ManagerID is the user managing the club.
	ManagerID int `json:"manager_id,omitempty"`
}

// IndexText returns the document used to fit the club index. The name is
// repeated so it carries double weight.
func (c *Club) IndexText() string {
	return joinText(c.Name, c.Name, c.Description, c.Purpose)
}

// InterestText returns the text contributed by a followed club to the
// user's interest profile.
func (c *Club) InterestText() string {
	return joinText(c.Name, c.Description, c.Purpose)
}

// Event is a scheduled club event.
type Event struct {
	// ID is the event identifier.
	ID int `json:"id"`

	// Title is the event title.
	Title string `json:"title"`

	// Description is free text, possibly empty.
	Description string `json:"description,omitempty"`

	// Location is where the event takes place.
	Location string `json:"location,omitempty"`

	// StartAt is when the event begins. Zero means unscheduled.
	StartAt time.Time `json:"start_at"`

	// EndAt is when the event ends. Defaults to StartAt when unknown.
	EndAt time.Time `json:"end_at"`

	// Quota is the attendee cap, 0 if unlimited.
	Quota int `json:"quota,omitempty"`

	// ClubID is the owning club.
	ClubID int `json:"club_id"`

	// ClubName is the owning club's name, joined for display.
	ClubName string `json:"club_name,omitempty"`

	// IsCancelled marks cancelled events.
	IsCancelled bool `json:"is_cancelled"`

	// IsPublic marks events visible to every user.
	IsPublic bool `json:"is_public"`

	// CreatedByUserID is the event author.
	CreatedByUserID int `json:"created_by_user_id,omitempty"`

	// CreatedAt is when the event row was created.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// IsCandidate reports whether the event may be recommended at all.
func (e *Event) IsCandidate() bool {
	return !e.IsCancelled && e.IsPublic
}

// WeightedText returns the event text compared against user interests. The
// title is repeated so it carries double weight.
func (e *Event) WeightedText() string {
	return joinText(e.Title, e.Title, e.Description, e.Location)
}

// Interaction is a user's attendance or favorite on a past event.
type Interaction struct {
	UserID      int       `json:"user_id"`
	EventID     int       `json:"event_id"`
	ClubID      int       `json:"club_id"`
	StartAt     time.Time `json:"start_at"`
	Attended    bool      `json:"attended"`
	Favorited   bool      `json:"favorited"`
	AttendedAt  time.Time `json:"attended_at,omitempty"`
	FavoritedAt time.Time `json:"favorited_at,omitempty"`
}

// ClubMetrics holds raw per-club popularity counts.
type ClubMetrics struct {
	// MemberCounts maps club ID to member count.
	MemberCounts map[int]int

	// EventCounts maps club ID to the number of events in the lookback window.
	EventCounts map[int]int
}

// EventFilter narrows the candidate event query.
type EventFilter struct {
	// MinDate excludes events starting before it. Defaults to now.
	MinDate time.Time `json:"min_date,omitempty"`

	// MaxDate excludes events starting after it. Zero means no bound.
	MaxDate time.Time `json:"max_date,omitempty"`

	// ExcludeEventIDs are removed from the candidate set.
	ExcludeEventIDs []int `json:"exclude_event_ids,omitempty"`
}

// ScoredEvent is a ranked candidate with the features that produced its score.
type ScoredEvent struct {
	// EventID is the candidate event.
	EventID int `json:"event_id"`

	// ClubID is the owning club, used for diversity capping.
	ClubID int `json:"club_id"`

	// Score is the weighted, possibly boosted score. It has no upper bound.
	Score float64 `json:"score"`

	// Features is the record the score was computed from.
	Features FeatureRecord `json:"-"`
}

// Reason explains why an event was recommended.
type Reason struct {
	// Primary is the rule that matched first.
	Primary ReasonCategory `json:"primary"`

	// Details is a human-readable sentence.
	Details string `json:"details"`

	// Features is a rounded snapshot of the headline features.
	Features map[string]float64 `json:"features"`
}

// Recommendation is a single recommended event.
type Recommendation struct {
	EventID int     `json:"eventId"`
	Score   float64 `json:"score"`
	Reason  Reason  `json:"reason"`
}

// Request is a recommendation request for a single user.
type Request struct {
	// UserID is the user to recommend for.
	UserID int `json:"user_id"`

	// Limit is the requested result count. Defaults to
	// Config.Ranking.DefaultLimit and is capped at Config.Ranking.MaxLimit.
	Limit int `json:"limit,omitempty"`

	// Filter narrows the candidate set.
	Filter EventFilter `json:"filter"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Response is the result of a recommendation request.
type Response struct {
	// Recommendations is the ordered result list, never nil.
	Recommendations []Recommendation `json:"recommendations"`

	// Metadata describes how the result was produced.
	Metadata ResponseMetadata `json:"metadata"`

	// State is the terminal pipeline state.
	State PipelineState `json:"-"`
}

// ResponseMetadata carries diagnostic information. Fallback and Error
// distinguish the three result kinds without failing the request.
type ResponseMetadata struct {
	ModelVersion      string    `json:"modelVersion"`
	ComputedAt        time.Time `json:"computedAt"`
	TotalCandidates   int       `json:"totalCandidates"`
	ComputationTimeMS float64   `json:"computationTimeMs"`
	UserFollowsClubs  int       `json:"userFollowsClubs"`
	Fallback          bool      `json:"fallback,omitempty"`
	Error             bool      `json:"error,omitempty"`
	Reason            string    `json:"reason,omitempty"`
	SelectionMode     string    `json:"selectionMode,omitempty"`
	CacheHit          bool      `json:"cacheHit,omitempty"`
	RequestID         string    `json:"requestId,omitempty"`
}

// ScoringInput is everything a FeatureScorer may read for one request.
// Scorers must treat it as read-only.
type ScoringInput struct {
	// Now is the reference time for temporal features.
	Now time.Time

	// UserID is the requesting user.
	UserID int

	// FollowedClubs is the user's followed club IDs in provider order.
	FollowedClubs []int

	// Events are the candidate events after exclusions.
	Events []Event

	// Catalog is the club catalog snapshot, including the fitted index.
	Catalog *CatalogSnapshot

	// History is the user's interaction history within the lookback window.
	History []Interaction

	// Metrics holds the raw popularity counts.
	Metrics ClubMetrics

	// Config is the configuration snapshot in effect for this request.
	Config *Config
}

// FollowingSet returns FollowedClubs as a set.
func (in *ScoringInput) FollowingSet() map[int]struct{} {
	set := make(map[int]struct{}, len(in.FollowedClubs))
	for _, id := range in.FollowedClubs {
		set[id] = struct{}{}
	}
	return set
}

// DataProvider is the read contract of the relational store.
// All event reads return only non-cancelled public events.
type DataProvider interface {
	// FollowedClubs returns the club IDs a user is a member of.
	FollowedClubs(ctx context.Context, userID int) ([]int, error)

	// Clubs returns the full club catalog.
	Clubs(ctx context.Context) ([]Club, error)

	// Events returns candidate events matching filter, ordered by start time.
	Events(ctx context.Context, filter EventFilter) ([]Event, error)

	// UserHistory returns the user's interactions with events starting at or after since.
	UserHistory(ctx context.Context, userID int, since time.Time) ([]Interaction, error)

	// ClubMemberCounts returns member counts keyed by club ID.
	ClubMemberCounts(ctx context.Context) (map[int]int, error)

	// ClubEventCounts returns non-cancelled event counts since the given time.
	ClubEventCounts(ctx context.Context, since time.Time) (map[int]int, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}

// FeatureScorer computes one group of per-event features.
type FeatureScorer interface {
	// Name returns the scorer identifier (e.g., "content", "temporal").
	Name() string

	// Score returns a feature table over in.Events. An empty table is valid.
	Score(ctx context.Context, in *ScoringInput) (FeatureTable, error)
}

// Selector picks the final results from a ranked list.
type Selector interface {
	// Name returns the selector identifier (e.g., "top", "diversity").
	Name() string

	// Select returns at most limit events from ranked, which is sorted by
	// descending score.
	Select(ranked []ScoredEvent, limit int) []ScoredEvent
}

// ResponseCache stores personalized responses between requests.
type ResponseCache interface {
	// Get returns a cached response for key.
	Get(ctx context.Context, key string) (*Response, bool)

	// Set stores resp under key.
	Set(ctx context.Context, key string, resp *Response)
}

func joinText(parts ...string) string {
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
