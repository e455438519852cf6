// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package algorithms

import (
	"context"
	"math"

	"github.com/tomtom215/campusrec/internal/recommend"
)

// BaseScorer provides the name shared by every scorer.
type BaseScorer struct {
	name string
}

// NewBaseScorer creates a base scorer with the given name.
func NewBaseScorer(name string) BaseScorer {
	return BaseScorer{name: name}
}

// Name returns the scorer identifier.
func (b *BaseScorer) Name() string {
	return b.name
}

// checkContext returns the context error, if any, before expensive work.
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// clamp01 bounds x to [0, 1], mapping NaN to 0.
func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// maxCount returns the largest value in counts, or floor if larger.
func maxCount(counts map[int]int, floor int) int {
	m := floor
	for _, c := range counts {
		if c > m {
			m = c
		}
	}
	return m
}

// Interface checks.
var (
	_ recommend.FeatureScorer = (*Content)(nil)
	_ recommend.FeatureScorer = (*Temporal)(nil)
	_ recommend.FeatureScorer = (*Affinity)(nil)
	_ recommend.FeatureScorer = (*Popularity)(nil)
)
