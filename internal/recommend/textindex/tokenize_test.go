// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package textindex

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "lowercases", in: "Robotics CLUB", want: "robotics club"},
		{name: "collapses whitespace", in: "  chess \t\n  club  ", want: "chess club"},
		{name: "strips diacritics", in: "Müzik Şenliği", want: "muzik senligi"},
		{name: "strips accents", in: "café résumé", want: "cafe resume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "drops single runes", in: "a go b py", want: []string{"go", "py"}},
		{name: "splits punctuation", in: "hack-a-thon, 2024!", want: []string{"hack", "thon", "2024"}},
		{name: "keeps underscores", in: "snake_case word", want: []string{"snake_case", "word"}},
		{name: "empty", in: "   ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNGrams(t *testing.T) {
	got := NGrams([]string{"open", "source", "day"}, 1, 2)
	want := []string{"open", "source", "day", "open source", "source day"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NGrams() = %v, want %v", got, want)
	}

	if got := NGrams(nil, 1, 2); len(got) != 0 {
		t.Errorf("NGrams(nil) = %v, want empty", got)
	}
}

func TestAnalyzer_StopwordsRemovedBeforeBigrams(t *testing.T) {
	an := newAnalyzer(Options{Stopwords: []string{"ve", "İçin"}})
	got := an.terms("kodlama ve tasarım için atölye")
	// Dotless ı has no decomposition and survives normalization.
	want := []string{"kodlama", "tasarım", "atolye", "kodlama tasarım", "tasarım atolye"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("terms() = %v, want %v", got, want)
	}
}
