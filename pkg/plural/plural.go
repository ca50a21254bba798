// Copyright 2024-2026 Aiku AI

// Package plural decides whether a substitution lands on the end of a plural
// word and inflects the substitute to match.
package plural

import (
	"strings"

	"github.com/gertd/go-pluralize"
	"github.com/rs/zerolog"

	"github.com/aiku/buttbot/pkg/syllable"
)

// Inflector answers plural questions about single English words.
type Inflector interface {
	IsPlural(word string) bool
	Plural(word string) string
}

// NewEnglishInflector returns the rule-based English inflector.
func NewEnglishInflector() Inflector {
	return pluralize.NewClient()
}

// Pluralizer inflects substitution words for the position they replace.
type Pluralizer struct {
	inflector Inflector
	log       zerolog.Logger
}

// New creates a Pluralizer. A nil inflector selects the English rules.
func New(inflector Inflector, log zerolog.Logger) *Pluralizer {
	if inflector == nil {
		inflector = NewEnglishInflector()
	}
	return &Pluralizer{inflector: inflector, log: log}
}

// Substitute returns replacement, pluralized when tokens[index] is the last
// letter token of a plural word span. The span is the run of letter tokens
// (and inner apostrophes) around index, bounded by punctuation.
func (p *Pluralizer) Substitute(replacement string, tokens []string, index int) string {
	if index < 0 || index >= len(tokens) {
		return replacement
	}
	if !p.ShouldPluralize(tokens, index) {
		return replacement
	}
	plural, ok := p.plural(replacement)
	if !ok {
		return replacement
	}
	return plural
}

// ShouldPluralize reports whether a replacement at index must be plural.
func (p *Pluralizer) ShouldPluralize(tokens []string, index int) bool {
	view := StripPunctuation(tokens)
	start, end := span(view, index)
	if end-1 != index {
		return false
	}
	probe := strings.Join(view[start:end], "")
	if probe == "" {
		return false
	}
	return p.isPlural(probe)
}

// StripPunctuation replaces every punctuation token with "". An apostrophe
// strictly between two tokens is kept so contractions stay one span.
func StripPunctuation(tokens []string) []string {
	view := make([]string, len(tokens))
	for i, tok := range tokens {
		switch {
		case i > 0 && i < len(tokens)-1 && syllable.IsApostropheToken(tok):
			view[i] = tok
		case syllable.IsLetters(tok):
			view[i] = tok
		default:
			view[i] = ""
		}
	}
	return view
}

// span finds the boundaries of the word segment around index: start is the
// last "" at or before index (or 0), end is the first "" at or after index
// (or len(view)).
func span(view []string, index int) (start, end int) {
	for i := index; i >= 0; i-- {
		if view[i] == "" {
			start = i
			break
		}
	}
	end = len(view)
	for i := index; i < len(view); i++ {
		if view[i] == "" {
			end = i
			break
		}
	}
	return start, end
}

func (p *Pluralizer) isPlural(word string) (plural bool) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn().Interface("panic", r).Str("word", word).Msg("Plural check failed, treating as singular")
			plural = false
		}
	}()
	return p.inflector.IsPlural(word)
}

func (p *Pluralizer) plural(word string) (out string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn().Interface("panic", r).Str("word", word).Msg("Pluralization failed, keeping word")
			out, ok = word, false
		}
	}()
	return p.inflector.Plural(word), true
}
