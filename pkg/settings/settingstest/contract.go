// Copyright 2024-2026 Aiku AI

// Package settingstest holds the behaviour every settings.Store must share.
package settingstest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiku/buttbot/pkg/settings"
)

// RunStoreContract exercises store against the settings.Store contract. The
// store must start empty.
func RunStoreContract(t *testing.T, store settings.Store) {
	ctx := context.Background()

	t.Run("Load empty", func(t *testing.T) {
		data, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("Put and Get", func(t *testing.T) {
		c := settings.Channel{
			Rate:               42,
			Word:               "toot",
			RandomWordsEnabled: true,
			RandomWords:        []string{"fart", "poop"},
		}
		require.NoError(t, store.Put(ctx, "alice", c))

		got, err := store.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, c, got)
	})

	t.Run("Get missing", func(t *testing.T) {
		_, err := store.Get(ctx, "nobody")
		assert.ErrorIs(t, err, settings.ErrChannelNotFound)
	})

	t.Run("Put replaces", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "bob", settings.Default()))
		updated := settings.Default()
		updated.Rate = 500
		require.NoError(t, store.Put(ctx, "bob", updated))

		got, err := store.Get(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, 500, got.Rate)
		assert.Equal(t, settings.DefaultWord, got.Word)
		assert.Equal(t, []string{}, got.RandomWords)
	})

	t.Run("Load all", func(t *testing.T) {
		data, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, data, 2)
		assert.Contains(t, data, "alice")
		assert.Contains(t, data, "bob")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "bob"))
		_, err := store.Get(ctx, "bob")
		assert.ErrorIs(t, err, settings.ErrChannelNotFound)

		require.NoError(t, store.Delete(ctx, "bob"), "deleting twice should not fail")

		data, err := store.Load(ctx)
		require.NoError(t, err)
		assert.NotContains(t, data, "bob")
	})

	t.Run("Concurrent writes", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c := settings.Default()
				c.Rate = settings.MinRate + i
				assert.NoError(t, store.Put(ctx, "carol", c))
			}()
		}
		wg.Wait()

		got, err := store.Get(ctx, "carol")
		require.NoError(t, err)
		assert.NoError(t, got.Validate())
	})
}
