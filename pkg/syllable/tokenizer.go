// Copyright 2024-2026 Aiku AI

package syllable

import (
	"strings"
	"unicode/utf8"
)

// Sentinel is the invisible tag character some chat clients append to
// messages to get around duplicate-message filters. Words made only of it
// are dropped.
const Sentinel = '\U000E0000'

// hyphenPlaceholder stands in for explicit hyphens while a word is
// hyphenated, so the hyphenator cannot swallow them. Words never contain
// spaces after strings.Fields.
const hyphenPlaceholder = " "

// Tokenizer turns messages into sentences.
type Tokenizer struct {
	hyphenator Hyphenator
}

// NewTokenizer creates a tokenizer. A nil hyphenator selects the embedded
// English patterns.
func NewTokenizer(h Hyphenator) *Tokenizer {
	if h == nil {
		h = NewEnglishHyphenator()
	}
	return &Tokenizer{hyphenator: h}
}

// Tokenize splits a message into words and every word into tokens. An empty
// or whitespace-only message yields an empty sentence.
func (t *Tokenizer) Tokenize(sentence string) Sentence {
	fields := strings.Fields(sentence)
	out := make(Sentence, 0, len(fields))
	for _, field := range fields {
		if isSentinelWord(field) {
			continue
		}
		word := t.TokenizeWord(field)
		if len(word) == 0 {
			continue
		}
		out = append(out, word)
	}
	return out
}

// TokenizeWord splits one word (no whitespace) into tokens. Words longer
// than MaxHyphenatedRunes are only split into letter and punctuation runs.
func (t *Tokenizer) TokenizeWord(word string) Word {
	masked := strings.ReplaceAll(word, "-", hyphenPlaceholder)
	segments := []string{masked}
	if utf8.RuneCountInString(masked) <= MaxHyphenatedRunes {
		segments = t.hyphenator.Hyphenate(masked)
	}
	var tokens Word
	for _, segment := range segments {
		segment = strings.ReplaceAll(segment, hyphenPlaceholder, "-")
		if segment == "" {
			continue
		}
		tokens = append(tokens, splitRuns(segment)...)
	}
	return tokens
}

func isSentinelWord(word string) bool {
	for _, r := range word {
		if r != Sentinel {
			return false
		}
	}
	return word != ""
}

type runClass int

const (
	classLetter runClass = iota
	classPunct
	classApostrophe
)

func classify(r rune) runClass {
	switch {
	case IsLetter(r):
		return classLetter
	case IsApostrophe(r):
		return classApostrophe
	default:
		return classPunct
	}
}

// splitRuns cuts a segment into maximal letter runs and maximal punctuation
// runs. Every apostrophe becomes its own token.
func splitRuns(segment string) []string {
	var out []string
	start := 0
	prev := classPunct
	first := true
	for i, r := range segment {
		class := classify(r)
		if !first && (class != prev || class == classApostrophe) {
			out = append(out, segment[start:i])
			start = i
		}
		prev = class
		first = false
	}
	if start < len(segment) {
		out = append(out, segment[start:])
	}
	return out
}
