// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package recommend

// DiversitySelectorName is the name the engine looks up for SelectDiverse.
const DiversitySelectorName = "diversity"

// TopSelector returns the first limit events of a ranked list.
type TopSelector struct{}

// Name returns the selector identifier.
func (TopSelector) Name() string { return "top" }

// Select returns a copy of the first limit events.
func (TopSelector) Select(ranked []ScoredEvent, limit int) []ScoredEvent {
	if limit <= 0 {
		return []ScoredEvent{}
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]ScoredEvent, limit)
	copy(out, ranked[:limit])
	return out
}

// selectEvents applies the configured selection mode. SelectDiverse falls
// back to top-N when no diversity selector is registered.
func (e *Engine) selectEvents(mode SelectionMode, ranked []ScoredEvent, limit int) ([]ScoredEvent, string) {
	switch mode {
	case SelectTopN:
		return TopSelector{}.Select(ranked, limit), string(SelectTopN)
	case SelectDiverse:
		if sel := e.selector(DiversitySelectorName); sel != nil {
			return sel.Select(ranked, limit), string(SelectDiverse)
		}
		e.logger.Warn().Msg("diversity selector not registered, using top_n")
		return TopSelector{}.Select(ranked, limit), string(SelectTopN)
	default:
		return TopSelector{}.Select(ranked, 1), string(SelectTop1)
	}
}
