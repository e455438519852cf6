// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

// Package textindex implements a small TF-IDF vector space used to compare
// club and event descriptions.
//
// # Pipeline
//
// Text goes through four stages before it is weighted:
//
//   - Normalization: lowercase, diacritics stripped, whitespace collapsed
//   - Tokenization: runs of two or more letters or digits
//   - Stopword removal (optional, applied to unigrams)
//   - N-gram expansion: unigrams and bigrams by default
//
// Terms are weighted with raw term frequency times a smoothed inverse
// document frequency, idf(t) = ln((1+n)/(1+df(t))) + 1, and every document
// vector is L2-normalized so a dot product equals cosine similarity.
//
// # Usage
//
//	ix, err := textindex.Fit(docs, textindex.Options{MaxFeatures: 200})
//	if err != nil {
//	    // ErrEmptyCorpus: treat every similarity as 0
//	}
//	avg := ix.MeanVector(followedClubIDs)
//	sim := ix.Similarity(avg, eventClubID)
//
// # Thread Safety
//
// An Index is immutable once Fit returns and is safe for concurrent reads.
// Callers that need to refresh an index build a new one and swap the
// reference.
package textindex
