// Copyright 2024-2026 Aiku AI

package buttify

import "strings"

// DefaultIgnoreWords are short function words that read badly when replaced.
var DefaultIgnoreWords = []string{
	"a", "an", "the", "and", "or", "but", "nor", "so", "yet", "if", "of", "to",
	"in", "on", "at", "by", "for", "as", "is", "am", "are", "was", "were", "be",
	"been", "it", "its", "i", "im", "me", "my", "we", "us", "our", "you", "your",
	"he", "him", "his", "she", "her", "they", "them", "their", "this", "that",
	"these", "those", "there", "then", "than", "with", "from", "up", "not", "no",
	"do", "does", "did", "dont", "has", "have", "had", "will", "can", "just",
	"oh", "ok", "okay", "lol", "lmao", "what", "who", "how", "why", "when",
}

// linkMarkers flag words that look like links or handles of a domain.
var linkMarkers = []string{"http", "www.", "://", ".com", ".net", ".org", ".tv", ".gg", ".io"}

// IgnoreSet holds lowercased words that are never replaced.
type IgnoreSet map[string]struct{}

// NewIgnoreSet builds a set from words, lowercasing them.
func NewIgnoreSet(words ...string) IgnoreSet {
	set := make(IgnoreSet, len(words))
	set.Add(words...)
	return set
}

// DefaultIgnoreSet returns a fresh set of DefaultIgnoreWords.
func DefaultIgnoreSet() IgnoreSet {
	return NewIgnoreSet(DefaultIgnoreWords...)
}

// Add inserts words into the set.
func (s IgnoreSet) Add(words ...string) {
	for _, w := range words {
		s[strings.ToLower(w)] = struct{}{}
	}
}

// Has reports whether word is ignored. A nil set ignores nothing.
func (s IgnoreSet) Has(word string) bool {
	_, ok := s[word]
	return ok
}

func looksLikeLink(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range linkMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
