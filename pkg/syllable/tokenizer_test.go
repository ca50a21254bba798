// Copyright 2024-2026 Aiku AI

package syllable

import (
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

var english = NewTokenizer(nil)

func TestTokenizeWord(t *testing.T) {
	t.Parallel()
	tests := []struct {
		word string
		want Word
	}{
		{"the", Word{"the"}},
		{"cats", Word{"cats"}},
		{"happy", Word{"hap", "py"}},
		{"hello!!!", Word{"hel", "lo", "!!!"}},
		{"well-known", Word{"well", "-", "known"}},
		{"re-enter", Word{"re", "-", "en", "ter"}},
		{"don't", Word{"don", "'", "t"}},
		{"yesterday's", Word{"yes", "ter", "day", "'", "s"}},
		{"'quoted'", Word{"'", "quot", "ed", "'"}},
		{"hyphenation.", Word{"hy", "phen", "ation", "."}},
		{"Hello,", Word{"Hel", "lo", ","}},
		{"BUTTERFLIES", Word{"BUT", "TER", "FLIES"}},
		{"computers", Word{"com", "put", "ers"}},
		{"x--y", Word{"x", "--", "y"}},
		{"...", Word{"..."}},
		{"https://twitch.tv/foo", Word{"http", "s", "://", "twitch", ".", "tv", "/", "foo"}},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			t.Parallel()
			got := english.TokenizeWord(tt.word)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TokenizeWord(%q): got %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestTokenizeSentence(t *testing.T) {
	t.Parallel()
	got := english.Tokenize("the cats   are happy")
	want := Sentence{{"the"}, {"cats"}, {"are"}, {"hap", "py"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize: got %q, want %q", got, want)
	}
	if Render(got) != "the cats are happy" {
		t.Errorf("Render: got %q", Render(got))
	}
}

func TestTokenizeEmpty(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "   ", "\t\n"} {
		if got := english.Tokenize(in); len(got) != 0 {
			t.Errorf("Tokenize(%q): got %q, want empty", in, got)
		}
	}
}

func TestTokenizeDropsSentinel(t *testing.T) {
	t.Parallel()
	sentinel := string(Sentinel)
	got := english.Tokenize("hello " + sentinel + " there " + sentinel + sentinel)
	if len(got) != 2 {
		t.Fatalf("expected 2 words, got %d: %q", len(got), got)
	}
	if Render(got) != "hello there" {
		t.Errorf("Render: got %q", Render(got))
	}
}

func TestTokenizeKeepsAttachedSentinel(t *testing.T) {
	t.Parallel()
	// Only words made entirely of the sentinel are noise.
	word := "hey" + string(Sentinel)
	got := english.TokenizeWord(word)
	if got.Text() != word {
		t.Errorf("round trip: got %q, want %q", got.Text(), word)
	}
}

func TestTokenizeWithCustomHyphenator(t *testing.T) {
	t.Parallel()
	var seen []string
	tok := NewTokenizer(HyphenatorFunc(func(word string) []string {
		seen = append(seen, word)
		return []string{word[:2], "", word[2:]}
	}))
	got := tok.TokenizeWord("ab-cd")
	want := Word{"ab", "-", "cd"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TokenizeWord: got %q, want %q", got, want)
	}
	if len(seen) != 1 || strings.Contains(seen[0], "-") {
		t.Errorf("hyphenator should see the word without explicit hyphens, saw %q", seen)
	}
}

func TestTokenizeIdempotent(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"the cats are happy",
		"Hello,   world!!! don't   stop-believing",
		"https://twitch.tv/foo is a link...",
	}
	for _, in := range inputs {
		first := english.Tokenize(in)
		second := english.Tokenize(Render(first))
		if !reflect.DeepEqual(first, second) {
			t.Errorf("re-tokenizing %q: got %q, want %q", in, second, first)
		}
	}
}

func TestWordHelpers(t *testing.T) {
	t.Parallel()
	w := Word{"Don", "'", "t", "!!"}
	if got := w.Letters(); got != "dont" {
		t.Errorf("Letters: got %q, want %q", got, "dont")
	}
	if got := w.LetterTokens(); got != 2 {
		t.Errorf("LetterTokens: got %d, want 2", got)
	}
	if got := w.Text(); got != "Don't!!" {
		t.Errorf("Text: got %q", got)
	}
}

func TestClassifiers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		tok            string
		letters, punct bool
	}{
		{"abc", true, false},
		{"!!", false, true},
		{"'", false, true},
		{"", false, false},
		{"é", false, true},
	}
	for _, tt := range tests {
		if got := IsLetters(tt.tok); got != tt.letters {
			t.Errorf("IsLetters(%q): got %v", tt.tok, got)
		}
		if got := IsPunctuation(tt.tok); got != tt.punct {
			t.Errorf("IsPunctuation(%q): got %v", tt.tok, got)
		}
	}
	if !IsApostropheToken("'") || !IsApostropheToken("’") || IsApostropheToken("''") {
		t.Error("IsApostropheToken misclassified")
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()
	s := Sentence{{"hap", "py"}}
	c := s.Clone()
	c[0][1] = "BUTT"
	if s[0][1] != "py" {
		t.Errorf("Clone shares token storage: original is now %q", s)
	}
}

func TestTokenizeWordInvalidUTF8(t *testing.T) {
	t.Parallel()
	word := "\xff\xfehello"
	got := english.TokenizeWord(word)
	if got.Text() != word {
		t.Fatalf("round trip: got %q", got)
	}
}

func TestTokenizeLongWordSkipsHyphenator(t *testing.T) {
	t.Parallel()
	longest := 0
	tok := NewTokenizer(HyphenatorFunc(func(word string) []string {
		longest = max(longest, utf8.RuneCountInString(word))
		return []string{word}
	}))
	word := strings.Repeat("a", 16000) + "!!"
	got := tok.TokenizeWord(word)
	if longest != 0 {
		t.Errorf("hyphenator called with %d runes", longest)
	}
	if !reflect.DeepEqual(got, Word{strings.Repeat("a", 16000), "!!"}) {
		t.Errorf("TokenizeWord: got %d tokens", len(got))
	}

	tok.TokenizeWord(strings.Repeat("a", MaxHyphenatedRunes))
	if longest != MaxHyphenatedRunes {
		t.Errorf("word at the limit: hyphenator saw %d runes", longest)
	}
}

func TestTokenizeLongMessageIsFast(t *testing.T) {
	t.Parallel()
	text := "look at this " + strings.Repeat("a", 16000) + " " + strings.Repeat("abcdefgh", 500)
	start := time.Now()
	got := english.Tokenize(text)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Tokenize took %v", elapsed)
	}
	if Render(got) != text {
		t.Error("round trip changed the message")
	}
}
