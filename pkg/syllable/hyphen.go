// Copyright 2024-2026 Aiku AI

package syllable

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/speedata/hyphenation"
)

// enUSPatterns are the hyph-utf8 en-US TeX hyphenation patterns.
//
//go:embed patterns/hyph-en-us.pat.txt
var enUSPatterns string

// Hyphenator breaks a single word into hyphenation segments. Joining the
// returned segments must give back the word unchanged.
type Hyphenator interface {
	Hyphenate(word string) []string
}

// PatternHyphenator hyphenates words with Liang's algorithm over a TeX
// pattern set.
type PatternHyphenator struct {
	lang *hyphenation.Lang
}

var _ Hyphenator = (*PatternHyphenator)(nil)

// NewPatternHyphenator loads TeX patterns from r. At least two runes are kept
// on each side of every break.
func NewPatternHyphenator(r io.Reader) (*PatternHyphenator, error) {
	lang, err := hyphenation.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load hyphenation patterns: %w", err)
	}
	// hyphenation counts Leftmin from the word boundary marker, so 1 here
	// already means two leading runes.
	lang.Leftmin = 1
	lang.Rightmin = 2
	return &PatternHyphenator{lang: lang}, nil
}

// NewEnglishHyphenator returns a hyphenator using the embedded en-US patterns.
func NewEnglishHyphenator() *PatternHyphenator {
	h, err := NewPatternHyphenator(strings.NewReader(enUSPatterns))
	if err != nil {
		// The embedded file is part of the build.
		panic(err)
	}
	return h
}

// MaxHyphenatedRunes is the longest word that is hyphenated. Pattern
// matching time grows much faster than word length, so longer words are
// kept as one segment.
const MaxHyphenatedRunes = 64

// Hyphenate implements Hyphenator. Words that are not valid UTF-8 or longer
// than MaxHyphenatedRunes come back as a single segment.
func (h *PatternHyphenator) Hyphenate(word string) []string {
	if word == "" {
		return nil
	}
	if !utf8.ValidString(word) || utf8.RuneCountInString(word) > MaxHyphenatedRunes {
		return []string{word}
	}
	// offsets[i] is the byte index of rune i.
	offsets := make([]int, 0, len(word)+1)
	for i := range word {
		offsets = append(offsets, i)
	}
	runeCount := len(offsets)
	offsets = append(offsets, len(word))

	breaks := h.lang.Hyphenate(word)
	segments := make([]string, 0, len(breaks)+1)
	last := 0
	for _, pos := range breaks {
		if pos <= last || pos >= runeCount {
			continue
		}
		segments = append(segments, word[offsets[last]:offsets[pos]])
		last = pos
	}
	return append(segments, word[offsets[last]:])
}

// HyphenatorFunc adapts a function to the Hyphenator interface.
type HyphenatorFunc func(word string) []string

// Hyphenate implements Hyphenator.
func (f HyphenatorFunc) Hyphenate(word string) []string {
	return f(word)
}
