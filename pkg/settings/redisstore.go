// Copyright 2024-2026 Aiku AI

package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	backend "github.com/redis/go-redis/v9"
)

const (
	fieldRate               = "rate"
	fieldWord               = "word"
	fieldRandomWordsEnabled = "random_words_enabled"
	fieldRandomWords        = "random_words"
)

// RedisStore keeps each channel in its own hash and tracks channel names in
// an index set.
type RedisStore struct {
	client *backend.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix. The default is "buttbot:channel:".
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore connects to the Redis server at address.
func NewRedisStore(address, password string, db int, opts ...RedisOption) *RedisStore {
	return NewRedisStoreFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	store := &RedisStore{
		client: client,
		prefix: "buttbot:channel:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

func (s *RedisStore) Load(ctx context.Context) (map[string]Channel, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	pipe := s.client.Pipeline()
	cmds := make(map[string]*backend.MapStringStringCmd, len(names))
	for _, name := range names {
		cmds[name] = pipe.HGetAll(ctx, s.key(name))
	}
	if len(names) > 0 {
		if _, err = pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to load channels: %w", err)
		}
	}
	data := make(map[string]Channel, len(names))
	for name, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// Index entry without a hash, left behind by a partial delete.
			continue
		}
		c, err := decodeChannel(fields)
		if err != nil {
			return nil, fmt.Errorf("failed to decode channel %s: %w", name, err)
		}
		data[name] = c
	}
	return data, nil
}

func (s *RedisStore) Get(ctx context.Context, name string) (Channel, error) {
	fields, err := s.client.HGetAll(ctx, s.key(name)).Result()
	if err != nil {
		return Channel{}, fmt.Errorf("failed to get channel from redis: %w", err)
	} else if len(fields) == 0 {
		return Channel{}, fmt.Errorf("%w: %s", ErrChannelNotFound, name)
	}
	return decodeChannel(fields)
}

func (s *RedisStore) Put(ctx context.Context, name string, c Channel) error {
	words, err := json.Marshal(c.Clone().RandomWords)
	if err != nil {
		return fmt.Errorf("failed to marshal random words: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(name),
		fieldRate, c.Rate,
		fieldWord, c.Word,
		fieldRandomWordsEnabled, c.RandomWordsEnabled,
		fieldRandomWords, string(words),
	)
	pipe.SAdd(ctx, s.indexKey(), name)
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save channel to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(name))
	pipe.SRem(ctx, s.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete channel from redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// decodeChannel turns the string fields of a hash into a Channel. Hash
// values are always strings, so decoding is weakly typed.
func decodeChannel(fields map[string]string) (Channel, error) {
	var c Channel
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &c,
	})
	if err != nil {
		return Channel{}, fmt.Errorf("failed to create decoder: %w", err)
	}
	input := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != fieldRandomWords {
			input[k] = v
		}
	}
	if err = decoder.Decode(input); err != nil {
		return Channel{}, fmt.Errorf("failed to decode channel: %w", err)
	}
	if raw, ok := fields[fieldRandomWords]; ok && raw != "" {
		if err = json.Unmarshal([]byte(raw), &c.RandomWords); err != nil {
			return Channel{}, fmt.Errorf("failed to parse random words: %w", err)
		}
	}
	Upgrade(&c)
	return c, nil
}
