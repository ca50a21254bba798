// Copyright 2024-2026 Aiku AI

// Package buttify decides when a chat message gets rewritten and rewrites
// it by replacing randomly chosen syllables with a substitution word.
//
// A message first passes a rate gate whose odds grow the longer a channel
// goes without a substitution. Messages that pass are tokenized into
// syllables, a few replacement sites are picked, and each site is replaced
// with the channel's word, pluralized and cased to fit its position.
package buttify
