// Copyright 2024-2026 Aiku AI

// Package syllable splits chat messages into words and each word into
// syllable-like tokens, and reassembles them.
//
// A [Sentence] is an ordered list of [Word] values and a Word is an ordered
// list of tokens. A token is either a run of ASCII letters (a syllable as
// produced by the hyphenation patterns) or a run of punctuation. Apostrophes
// are always tokens of their own so "don't" becomes don, ', t.
//
// The split is lossless: joining the tokens of a word gives back the word,
// so [Render] of an unmodified [Tokenizer.Tokenize] result is the input with
// its whitespace normalized to single spaces.
package syllable
