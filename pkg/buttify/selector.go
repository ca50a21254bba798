// Copyright 2024-2026 Aiku AI

package buttify

import (
	"github.com/aiku/buttbot/pkg/syllable"
)

const (
	// WordsPerSite is how many words earn one substitution.
	WordsPerSite = 10

	maxWordAttempts     = 10
	maxSyllableAttempts = 5
	// A lone word needs at least this many syllables to be worth mangling.
	minSingleWordSyllables = 3
)

// Site identifies the token at sentence[Word][Syllable]. It is only valid
// for the sentence it was selected from.
type Site struct {
	Word     int
	Syllable int
}

// SiteCount is the number of substitutions requested for a message of
// words words.
func SiteCount(words int) int {
	return (words + WordsPerSite - 1) / WordsPerSite
}

// Selector picks replacement sites at random.
type Selector struct {
	rng Rand
}

// NewSelector creates a selector drawing from rng.
func NewSelector(rng Rand) *Selector {
	if rng == nil {
		rng = DefaultRand
	}
	return &Selector{rng: rng}
}

// Select returns up to SiteCount(len(s)) sites. Every site is drawn on its
// own, so the same site may come up twice. An empty result means the message
// should be left alone.
func (sel *Selector) Select(s syllable.Sentence, ignore IgnoreSet) []Site {
	if len(s) == 0 {
		return nil
	}
	if len(s) == 1 && s[0].LetterTokens() < minSingleWordSyllables {
		return nil
	}
	var sites []Site
	for range SiteCount(len(s)) {
		site, ok := sel.pick(s, ignore)
		if ok {
			sites = append(sites, site)
		}
	}
	return sites
}

func (sel *Selector) pick(s syllable.Sentence, ignore IgnoreSet) (Site, bool) {
	wordIdx, ok := attempt(maxWordAttempts, func() (int, bool) {
		i := sel.rng.IntN(len(s))
		return i, eligibleWord(s[i], ignore)
	})
	if !ok {
		return Site{}, false
	}
	word := s[wordIdx]
	sylIdx, ok := attempt(maxSyllableAttempts, func() (int, bool) {
		i := sel.rng.IntN(len(word))
		return i, eligibleSyllable(word[i])
	})
	if !ok {
		return Site{}, false
	}
	return Site{Word: wordIdx, Syllable: sylIdx}, true
}

func eligibleWord(w syllable.Word, ignore IgnoreSet) bool {
	return !ignore.Has(w.Letters()) && !looksLikeLink(w.Text())
}

func eligibleSyllable(tok string) bool {
	return len(tok) > 1 && syllable.IsLetters(tok)
}

// attempt calls draw up to budget times and returns the first accepted value.
func attempt[T any](budget int, draw func() (T, bool)) (T, bool) {
	for range budget {
		if v, ok := draw(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
