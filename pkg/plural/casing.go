// Copyright 2024-2026 Aiku AI

package plural

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MatchCase shapes replacement after the casing of the token it replaces:
// upper case stays upper, capitalized stays capitalized, anything else is
// lowered.
func MatchCase(original, replacement string) string {
	switch {
	case isUpper(original):
		return strings.ToUpper(replacement)
	case isCapitalized(original):
		return capitalize(replacement)
	default:
		return strings.ToLower(replacement)
	}
}

func isUpper(s string) bool {
	return s != strings.ToLower(s) && s == strings.ToUpper(s)
}

func isCapitalized(s string) bool {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError || !unicode.IsUpper(first) {
		return false
	}
	rest := s[size:]
	return rest == strings.ToLower(rest)
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
