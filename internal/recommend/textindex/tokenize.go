// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package textindex

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minTokenRunes is the shortest token kept by the tokenizer.
const minTokenRunes = 2

// Normalize lowercases text, strips diacritics and collapses whitespace.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	lowered := strings.ToLower(text)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, lowered)
	if err != nil {
		stripped = lowered
	}
	return strings.Join(strings.Fields(stripped), " ")
}

// Tokenize splits normalized text into word tokens of at least two runes.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minTokenRunes {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// NGrams expands tokens into all n-grams with min <= n <= max, joined by a
// single space. Unigrams come first, then bigrams, and so on.
func NGrams(tokens []string, minN, maxN int) []string {
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}

	out := make([]string, 0, len(tokens)*(maxN-minN+1))
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// analyzer turns raw text into weighted-term candidates.
type analyzer struct {
	stopwords map[string]struct{}
	ngramMax  int
}

func newAnalyzer(opts Options) *analyzer {
	a := &analyzer{ngramMax: opts.NGramMax}
	if a.ngramMax <= 0 {
		a.ngramMax = 2
	}
	if len(opts.Stopwords) > 0 {
		a.stopwords = make(map[string]struct{}, len(opts.Stopwords))
		for _, w := range opts.Stopwords {
			if n := Normalize(w); n != "" {
				a.stopwords[n] = struct{}{}
			}
		}
	}
	return a
}

// terms returns the unigram and n-gram terms of text. Stopwords are removed
// before n-grams are formed.
func (a *analyzer) terms(text string) []string {
	tokens := Tokenize(text)
	if len(a.stopwords) > 0 {
		kept := tokens[:0]
		for _, tok := range tokens {
			if _, stop := a.stopwords[tok]; !stop {
				kept = append(kept, tok)
			}
		}
		tokens = kept
	}
	return NGrams(tokens, 1, a.ngramMax)
}
