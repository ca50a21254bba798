// Copyright 2024-2026 Aiku AI

package syllable

import "strings"

// Word is the ordered list of tokens of one whitespace-separated word.
type Word []string

// Sentence is the ordered list of words of a message.
type Sentence []Word

// Text joins the tokens of the word.
func (w Word) Text() string {
	return strings.Join(w, "")
}

// LetterTokens returns the number of letter-run tokens in the word.
func (w Word) LetterTokens() int {
	n := 0
	for _, tok := range w {
		if IsLetters(tok) {
			n++
		}
	}
	return n
}

// Letters returns the lowercased alphabetic content of the word with all
// punctuation removed.
func (w Word) Letters() string {
	var b strings.Builder
	for _, tok := range w {
		if IsLetters(tok) {
			b.WriteString(strings.ToLower(tok))
		}
	}
	return b.String()
}

// Clone returns a deep copy so replacements do not touch the original.
func (s Sentence) Clone() Sentence {
	out := make(Sentence, len(s))
	for i, w := range s {
		out[i] = append(Word(nil), w...)
	}
	return out
}

// Render reassembles a sentence: tokens are concatenated and words are
// joined with single spaces.
func Render(s Sentence) string {
	words := make([]string, len(s))
	for i, w := range s {
		words[i] = w.Text()
	}
	return strings.Join(words, " ")
}

// IsLetter reports whether r is an ASCII letter. Hyphenation patterns and
// plural rules are English only, so nothing else counts as a letter.
func IsLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// IsApostrophe reports whether r is one of the apostrophes kept inside words.
func IsApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

// IsLetters reports whether tok is a non-empty run of letters.
func IsLetters(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !IsLetter(r) {
			return false
		}
	}
	return true
}

// IsPunctuation reports whether tok is a non-empty token without letters.
func IsPunctuation(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if IsLetter(r) {
			return false
		}
	}
	return true
}

// IsApostropheToken reports whether tok is a single apostrophe.
func IsApostropheToken(tok string) bool {
	r := []rune(tok)
	return len(r) == 1 && IsApostrophe(r[0])
}
