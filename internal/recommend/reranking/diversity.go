// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package reranking

import (
	"github.com/tomtom215/campusrec/internal/recommend"
)

// maxSelectSize bounds allocations; limit is also bounded by len(ranked).
const maxSelectSize = 10000

// Diversity limits how many selected events may come from the same club.
//
// Events are visited in rank order. An event is taken when its club is
// still under the cap, or while fewer than limit/2 slots are filled. If the
// pass ends short of limit, the highest-ranked events not yet taken are
// appended regardless of club.
type Diversity struct {
	factor func() float64
}

// NewDiversity creates a selector with a fixed diversity factor.
func NewDiversity(factor float64) *Diversity {
	return &Diversity{factor: func() float64 { return factor }}
}

// NewDiversityFunc creates a selector that reads the factor on every call,
// so it follows configuration reloads.
func NewDiversityFunc(factor func() float64) *Diversity {
	return &Diversity{factor: factor}
}

// NewDiversityFromStore creates a selector reading the factor from the live
// configuration.
func NewDiversityFromStore(store *recommend.ConfigStore) *Diversity {
	return NewDiversityFunc(func() float64 {
		return store.Get().Ranking.DiversityFactor
	})
}

// Name returns the selector identifier.
func (d *Diversity) Name() string {
	return recommend.DiversitySelectorName
}

// PerClubCap returns max(1, floor(limit * factor)).
func PerClubCap(limit int, factor float64) int {
	c := int(float64(limit) * factor)
	if c < 1 {
		return 1
	}
	return c
}

// Select picks up to limit events from ranked.
func (d *Diversity) Select(ranked []recommend.ScoredEvent, limit int) []recommend.ScoredEvent {
	if len(ranked) == 0 || limit <= 0 {
		return []recommend.ScoredEvent{}
	}
	if limit > maxSelectSize {
		limit = maxSelectSize
	}

	capPerClub := PerClubCap(limit, d.factor())
	half := limit / 2

	selected := make([]recommend.ScoredEvent, 0, min(limit, len(ranked)))
	taken := make([]bool, len(ranked))
	perClub := make(map[int]int)

	for i := range ranked {
		if len(selected) >= limit {
			break
		}
		club := ranked[i].ClubID
		if perClub[club] < capPerClub || len(selected) < half {
			selected = append(selected, ranked[i])
			taken[i] = true
			perClub[club]++
		}
	}

	for i := range ranked {
		if len(selected) >= limit {
			break
		}
		if !taken[i] {
			selected = append(selected, ranked[i])
		}
	}

	return selected
}
