// Copyright 2024-2026 Aiku AI

package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// JSONStore keeps all channels in one JSON object keyed by channel name.
// Every write replaces the file atomically.
type JSONStore struct {
	path string
	log  zerolog.Logger
	lock sync.Mutex
}

var _ Store = (*JSONStore)(nil)

// NewJSONStore creates a store backed by the file at path. The file does not
// need to exist yet.
func NewJSONStore(path string, log zerolog.Logger) *JSONStore {
	return &JSONStore{
		path: path,
		log:  log.With().Str("component", "settings").Str("path", path).Logger(),
	}
}

// Load returns every channel, upgrading old entries and writing them back
// when anything was filled in.
func (s *JSONStore) Load(_ context.Context) (map[string]Channel, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	var upgraded []string
	for name, c := range data {
		if Upgrade(&c) {
			data[name] = c
			upgraded = append(upgraded, name)
		}
	}
	if len(upgraded) > 0 {
		s.log.Info().Strs("channels", upgraded).Msg("Upgraded channel settings")
		if err = s.write(data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (s *JSONStore) Get(_ context.Context, name string) (Channel, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	data, err := s.read()
	if err != nil {
		return Channel{}, err
	}
	c, ok := data[name]
	if !ok {
		return Channel{}, fmt.Errorf("%w: %s", ErrChannelNotFound, name)
	}
	Upgrade(&c)
	return c, nil
}

func (s *JSONStore) Put(_ context.Context, name string, c Channel) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	data, err := s.read()
	if err != nil {
		return err
	}
	data[name] = c.Clone()
	return s.write(data)
}

func (s *JSONStore) Delete(_ context.Context, name string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	data, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := data[name]; !ok {
		return nil
	}
	delete(data, name)
	return s.write(data)
}

func (s *JSONStore) read() (map[string]Channel, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]Channel), nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	data := make(map[string]Channel)
	if len(raw) == 0 {
		return data, nil
	}
	if err = json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return data, nil
}

func (s *JSONStore) write(data map[string]Channel) error {
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err = tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync settings: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close settings: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}
