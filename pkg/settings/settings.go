// Copyright 2024-2026 Aiku AI

// Package settings persists per-channel bot configuration.
package settings

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

const (
	DefaultRate = 30
	DefaultWord = "BUTT"

	MinRate = 5
	MaxRate = 1000
)

var (
	// ErrRateOutOfRange is returned for rates outside [MinRate, MaxRate].
	ErrRateOutOfRange = errors.New("rate out of range")
	// ErrChannelNotFound is returned when a channel has no stored settings.
	ErrChannelNotFound = errors.New("channel not found")
	ErrEmptyWord       = errors.New("word must not be empty")
)

// Channel is the stored configuration of one channel.
type Channel struct {
	Rate               int      `json:"rate" mapstructure:"rate"`
	Word               string   `json:"word" mapstructure:"word"`
	RandomWordsEnabled bool     `json:"random_words_enabled" mapstructure:"random_words_enabled"`
	RandomWords        []string `json:"random_words" mapstructure:"-"`
}

// Default returns the settings given to newly joined channels.
func Default() Channel {
	return Channel{
		Rate:        DefaultRate,
		Word:        DefaultWord,
		RandomWords: []string{},
	}
}

// ValidateRate checks that n can be used as a trigger rate.
func ValidateRate(n int) error {
	if n < MinRate || n > MaxRate {
		return fmt.Errorf("%w: %d is not between %d and %d", ErrRateOutOfRange, n, MinRate, MaxRate)
	}
	return nil
}

// Validate checks every field of c.
func (c Channel) Validate() error {
	if err := ValidateRate(c.Rate); err != nil {
		return err
	}
	if c.Word == "" {
		return ErrEmptyWord
	}
	return nil
}

// Clone returns a copy that does not share the word pool.
func (c Channel) Clone() Channel {
	c.RandomWords = slices.Clone(c.RandomWords)
	if c.RandomWords == nil {
		c.RandomWords = []string{}
	}
	return c
}

// Upgrade fills in fields missing from settings written by older versions
// and reports whether anything changed. Existing values are never touched.
func Upgrade(c *Channel) bool {
	changed := false
	if c.Rate == 0 {
		c.Rate = DefaultRate
		changed = true
	}
	if c.Word == "" {
		c.Word = DefaultWord
		changed = true
	}
	if c.RandomWords == nil {
		c.RandomWords = []string{}
		changed = true
	}
	return changed
}

// Store is where channel settings live between restarts. Implementations
// must be safe for concurrent use.
type Store interface {
	// Load returns every stored channel.
	Load(ctx context.Context) (map[string]Channel, error)
	// Get returns one channel or ErrChannelNotFound.
	Get(ctx context.Context, name string) (Channel, error)
	// Put creates or replaces a channel.
	Put(ctx context.Context, name string, c Channel) error
	// Delete removes a channel. Deleting a missing channel is not an error.
	Delete(ctx context.Context, name string) error
}
