// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package textindex

import (
	"math"
	"strings"
)

// Blend weights for TextSimilarity.
const (
	cosineBlend  = 0.7
	jaccardBlend = 0.3
)

// Dot returns the sparse dot product of a and b.
func Dot(a, b Vector) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var sum float64
	for k, w := range a {
		sum += w * b[k]
	}
	return sum
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// normalized scales v to unit length in place and returns it.
func (v Vector) normalized() Vector {
	n := v.Norm()
	if n == 0 {
		return v
	}
	for k := range v {
		v[k] /= n
	}
	return v
}

// Cosine returns the cosine similarity of a and b, or 0 if either is empty.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// Jaccard returns |a ∩ b| / |a ∪ b| over two token sets. Empty input yields 0.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}

	intersection := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// TextSimilarity compares two free texts with a throwaway two-document
// index: 0.7 x cosine + 0.3 x Jaccard over the lowercase whitespace tokens,
// clamped to [0, 1]. Either text being blank yields 0.
func TextSimilarity(a, b string, maxFeatures int) float64 {
	a, b = collapse(a), collapse(b)
	if a == "" || b == "" {
		return 0
	}

	var cosine float64
	ix, err := Fit([]Document{{ID: 0, Text: a}, {ID: 1, Text: b}}, Options{MaxFeatures: maxFeatures})
	if err == nil {
		va, _ := ix.Vector(0)
		vb, _ := ix.Vector(1)
		cosine = Cosine(va, vb)
	}

	jaccard := Jaccard(strings.Fields(a), strings.Fields(b))
	return clamp01(cosineBlend*cosine + jaccardBlend*jaccard)
}

// collapse lowercases and collapses whitespace without stripping accents,
// matching how raw token sets are compared.
func collapse(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
