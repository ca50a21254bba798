// Copyright 2024-2026 Aiku AI

package syllable

import (
	"reflect"
	"strings"
	"testing"
)

func TestEnglishHyphenator(t *testing.T) {
	t.Parallel()
	h := NewEnglishHyphenator()
	tests := []struct {
		word string
		want []string
	}{
		{"happy", []string{"hap", "py"}},
		{"cats", []string{"cats"}},
		{"developers", []string{"de", "vel", "op", "ers"}},
		{"hyphenation", []string{"hy", "phen", "ation"}},
		{"butterfly", []string{"but", "ter", "fly"}},
		{"wonderful", []string{"won", "der", "ful"}},
		{"everyone", []string{"every", "one"}},
		{"Hello", []string{"Hel", "lo"}},
		{"hi", []string{"hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			t.Parallel()
			got := h.Hyphenate(tt.word)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Hyphenate(%q): got %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestHyphenateEmpty(t *testing.T) {
	t.Parallel()
	if got := NewEnglishHyphenator().Hyphenate(""); len(got) != 0 {
		t.Errorf("Hyphenate(\"\"): got %q", got)
	}
}

func TestPatternHyphenatorCustomPatterns(t *testing.T) {
	t.Parallel()
	// Patterns from the hyphenation package's own tests.
	patterns := "1co\n4m1p\npu2t\n5pute\nput3er\n"
	h, err := NewPatternHyphenator(strings.NewReader(patterns))
	if err != nil {
		t.Fatalf("NewPatternHyphenator: %v", err)
	}
	got := h.Hyphenate("computer")
	want := []string{"com", "put", "er"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Hyphenate(computer): got %q, want %q", got, want)
	}
}

func TestHyphenateKeepsBytes(t *testing.T) {
	t.Parallel()
	h := NewEnglishHyphenator()
	tests := []struct {
		name string
		word string
		want []string
	}{
		{"invalid utf-8", "\xff\xfehello", []string{"\xff\xfehello"}},
		{"too long", strings.Repeat("ab", MaxHyphenatedRunes), []string{strings.Repeat("ab", MaxHyphenatedRunes)}},
		{"multibyte", "héllo", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := h.Hyphenate(tt.word)
			if strings.Join(got, "") != tt.word {
				t.Fatalf("Hyphenate(%q): segments %q do not join back", tt.word, got)
			}
			if tt.want != nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Hyphenate(%q): got %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}
