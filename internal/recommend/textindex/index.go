// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package textindex

import (
	"errors"
	"math"
	"sort"
)

// ErrEmptyCorpus is returned by Fit when there is nothing to index, either
// because no documents were supplied or because every document was reduced
// to zero terms.
var ErrEmptyCorpus = errors.New("textindex: empty corpus")

// Options controls vectorization.
type Options struct {
	// MaxFeatures caps the vocabulary to the most frequent terms across the
	// corpus. Zero means unlimited.
	MaxFeatures int

	// Stopwords are removed from the token stream before n-grams are formed.
	Stopwords []string

	// NGramMax is the largest n-gram size. Default: 2.
	NGramMax int
}

// Document is a single text to index, keyed by an integer identifier.
type Document struct {
	ID   int
	Text string
}

// Vector is a sparse, L2-normalized term-weight vector keyed by term index.
type Vector map[int]float64

// Index is a fitted TF-IDF vector space. The zero value and a nil *Index
// both report Available() == false.
type Index struct {
	vocab   map[string]int
	idf     []float64
	vectors map[int]Vector
}

// Fit builds an index over docs. Documents with duplicate IDs keep the last
// occurrence.
func Fit(docs []Document, opts Options) (*Index, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}

	an := newAnalyzer(opts)
	docTerms := make([]map[string]int, len(docs))
	totals := make(map[string]int)
	for i, d := range docs {
		counts := make(map[string]int)
		for _, term := range an.terms(d.Text) {
			counts[term]++
			totals[term]++
		}
		docTerms[i] = counts
	}

	if len(totals) == 0 {
		return nil, ErrEmptyCorpus
	}

	vocab := buildVocabulary(totals, opts.MaxFeatures)

	df := make([]int, len(vocab))
	for _, counts := range docTerms {
		for term := range counts {
			if idx, ok := vocab[term]; ok {
				df[idx]++
			}
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for i, f := range df {
		idf[i] = math.Log((1+n)/(1+float64(f))) + 1
	}

	ix := &Index{
		vocab:   vocab,
		idf:     idf,
		vectors: make(map[int]Vector, len(docs)),
	}
	for i, d := range docs {
		ix.vectors[d.ID] = ix.weigh(docTerms[i])
	}

	return ix, nil
}

// buildVocabulary keeps the maxFeatures most frequent terms. Ties are broken
// alphabetically so the result is deterministic. Term indices follow
// alphabetical order.
func buildVocabulary(totals map[string]int, maxFeatures int) map[string]int {
	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}

	if maxFeatures > 0 && len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if totals[terms[i]] != totals[terms[j]] {
				return totals[terms[i]] > totals[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}

	sort.Strings(terms)
	vocab := make(map[string]int, len(terms))
	for i, term := range terms {
		vocab[term] = i
	}
	return vocab
}

// weigh converts raw term counts into a normalized TF-IDF vector.
func (ix *Index) weigh(counts map[string]int) Vector {
	v := make(Vector, len(counts))
	for term, c := range counts {
		idx, ok := ix.vocab[term]
		if !ok {
			continue
		}
		v[idx] = float64(c) * ix.idf[idx]
	}
	return v.normalized()
}

// Available reports whether the index holds at least one document vector.
func (ix *Index) Available() bool {
	return ix != nil && len(ix.vectors) > 0
}

// VocabularySize returns the number of terms kept after the feature cap.
func (ix *Index) VocabularySize() int {
	if ix == nil {
		return 0
	}
	return len(ix.vocab)
}

// Vector returns the stored vector for id.
func (ix *Index) Vector(id int) (Vector, bool) {
	if ix == nil {
		return nil, false
	}
	v, ok := ix.vectors[id]
	return v, ok
}

// MeanVector averages the vectors of the given IDs. IDs that are not indexed
// are skipped; nil is returned if none are.
func (ix *Index) MeanVector(ids []int) Vector {
	if !ix.Available() {
		return nil
	}

	sum := make(Vector)
	n := 0
	for _, id := range ids {
		v, ok := ix.vectors[id]
		if !ok {
			continue
		}
		n++
		for k, w := range v {
			sum[k] += w
		}
	}
	if n == 0 {
		return nil
	}
	for k := range sum {
		sum[k] /= float64(n)
	}
	return sum
}

// Similarity returns the cosine similarity between v and the vector stored
// for id, clamped to [0, 1]. Unseen IDs score 0.
func (ix *Index) Similarity(v Vector, id int) float64 {
	target, ok := ix.Vector(id)
	if !ok {
		return 0
	}
	return clamp01(Cosine(v, target))
}
