// Copyright 2024-2026 Aiku AI

package bot

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/aiku/buttbot/pkg/buttify"
	"github.com/aiku/buttbot/pkg/settings"
)

// channel is the in-memory state of one joined channel. lock serializes
// message processing and setting changes.
type channel struct {
	name  string
	lock  sync.Mutex
	state buttify.ChannelState
}

func newChannel(name string, c settings.Channel) *channel {
	ch := &channel{name: name}
	ch.apply(c)
	return ch
}

// apply copies stored settings into the engine state, keeping the missed
// counter.
func (ch *channel) apply(c settings.Channel) {
	ch.state.TriggerRate = c.Rate
	ch.state.Word = c.Word
	ch.state.RandomWordsEnabled = c.RandomWordsEnabled
	ch.state.RandomWords = slices.Clone(c.RandomWords)
}

func (ch *channel) settings() settings.Channel {
	words := slices.Clone(ch.state.RandomWords)
	if words == nil {
		words = []string{}
	}
	return settings.Channel{
		Rate:               ch.state.TriggerRate,
		Word:               ch.state.Word,
		RandomWordsEnabled: ch.state.RandomWordsEnabled,
		RandomWords:        words,
	}
}

// ChannelNames returns the joined channels in sorted order.
func (b *Bot) ChannelNames() []string {
	data := b.channels.CopyData()
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Settings returns the current settings of a joined channel.
func (b *Bot) Settings(name string) (settings.Channel, bool) {
	ch, ok := b.channels.Get(name)
	if !ok {
		return settings.Channel{}, false
	}
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.settings(), true
}

// Update changes the settings of a joined channel. The change is validated,
// persisted and only then applied.
func (b *Bot) Update(ctx context.Context, name string, fn func(*settings.Channel) error) (settings.Channel, error) {
	ch, ok := b.channels.Get(name)
	if !ok {
		return settings.Channel{}, fmt.Errorf("%w: %s", settings.ErrChannelNotFound, name)
	}
	ch.lock.Lock()
	defer ch.lock.Unlock()
	updated := ch.settings()
	if err := fn(&updated); err != nil {
		return settings.Channel{}, err
	}
	if err := updated.Validate(); err != nil {
		return settings.Channel{}, err
	}
	if err := b.store.Put(ctx, name, updated); err != nil {
		return settings.Channel{}, fmt.Errorf("failed to save settings of %s: %w", name, err)
	}
	ch.apply(updated)
	return updated.Clone(), nil
}

// EffectiveRate returns the current trigger rate of a joined channel.
func (b *Bot) EffectiveRate(name string) (int, bool) {
	ch, ok := b.channels.Get(name)
	if !ok {
		return 0, false
	}
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return buttify.EffectiveRate(ch.state.TriggerRate, ch.state.Missed), true
}

// Preview runs a forced substitution with the settings of channel, or the
// defaults when channel is not joined. Channel state is not changed.
func (b *Bot) Preview(channel, text string) buttify.Result {
	c, ok := b.Settings(channel)
	if !ok {
		c = settings.Default()
	}
	state := newChannel(channel, c).state
	return b.engine.Force(text, &state, b.ignore)
}

func (b *Bot) addChannel(ctx context.Context, name string) (bool, error) {
	ch := newChannel(name, settings.Default())
	if _, exists := b.channels.GetOrSet(name, ch); exists {
		return false, nil
	}
	if err := b.store.Put(ctx, name, settings.Default()); err != nil {
		b.channels.Delete(name)
		return false, fmt.Errorf("failed to save settings of %s: %w", name, err)
	}
	return true, nil
}

func (b *Bot) removeChannel(ctx context.Context, name string) (bool, error) {
	if _, ok := b.channels.Get(name); !ok {
		return false, nil
	}
	if err := b.store.Delete(ctx, name); err != nil {
		return false, fmt.Errorf("failed to delete settings of %s: %w", name, err)
	}
	b.channels.Delete(name)
	b.metrics.ForgetChannel(name)
	return true, nil
}
