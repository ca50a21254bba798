// Copyright 2024-2026 Aiku AI

// Package config loads the buttbot configuration file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	up "go.mau.fi/util/configupgrade"
	"go.mau.fi/zeroconfig"
	"gopkg.in/yaml.v3"

	"github.com/aiku/buttbot/pkg/bot"
	"github.com/aiku/buttbot/pkg/chatlog"
	"github.com/aiku/buttbot/pkg/connector"
	"github.com/aiku/buttbot/pkg/settings"
)

//go:embed example-config.yaml
var ExampleConfig string

const (
	BackendJSON  = "json"
	BackendRedis = "redis"
)

var (
	ErrNoTransport    = errors.New("neither mattermost nor matrix is configured")
	ErrUnknownBackend = errors.New("unknown settings backend")
)

type Config struct {
	Mattermost   connector.MattermostConfig `yaml:"mattermost"`
	Matrix       connector.MatrixConfig     `yaml:"matrix"`
	Bot          bot.Config                 `yaml:"bot"`
	Settings     SettingsConfig             `yaml:"settings"`
	ChannelLogs  chatlog.Config             `yaml:"channel_logs"`
	AdminAPIAddr string                     `yaml:"admin_api_addr"`
	Logging      zeroconfig.Config          `yaml:"logging"`
}

type SettingsConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Environment variables that override secrets from the file.
const (
	EnvMattermostToken   = "MATTERMOST_TOKEN"
	EnvMatrixAccessToken = "MATRIX_ACCESS_TOKEN"
	EnvRedisPassword     = "REDIS_PASSWORD"
)

type loader struct {
	lookupEnv func(string) (string, bool)
	save      bool
}

type Option func(*loader)

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(l *loader) { l.lookupEnv = fn }
}

// WithoutSave upgrades the config in memory only.
func WithoutSave() Option {
	return func(l *loader) { l.save = false }
}

// Load upgrades the file at path in place, parses it, applies environment
// overrides and validates the result.
func Load(path string, opts ...Option) (*Config, error) {
	l := &loader{lookupEnv: os.LookupEnv, save: true}
	for _, opt := range opts {
		opt(l)
	}
	data, _, err := up.Do(path, l.save, Upgrader)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade config: %w", err)
	}
	return parse(data, l.lookupEnv)
}

func parse(data []byte, lookupEnv func(string) (string, bool)) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnv(lookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv reads variables from .env files into the environment. Missing
// files are not an error and variables already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

func (c *Config) applyEnv(lookupEnv func(string) (string, bool)) {
	if v, ok := lookupEnv(EnvMattermostToken); ok && v != "" {
		c.Mattermost.Token = v
	}
	if v, ok := lookupEnv(EnvMatrixAccessToken); ok && v != "" {
		c.Matrix.AccessToken = v
	}
	if v, ok := lookupEnv(EnvRedisPassword); ok && v != "" {
		c.Settings.Redis.Password = v
	}
}

func (c *Config) Validate() error {
	if !c.Mattermost.Enabled() && !c.Matrix.Enabled() {
		return ErrNoTransport
	}
	if err := c.Matrix.Validate(); err != nil {
		return err
	}
	switch c.Settings.Backend {
	case BackendJSON:
		if c.Settings.Path == "" {
			return fmt.Errorf("settings.path is required for the json backend")
		}
	case BackendRedis:
		if c.Settings.Redis.Addr == "" {
			return fmt.Errorf("settings.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownBackend, c.Settings.Backend)
	}
	return nil
}

// OpenStore creates the configured settings store.
func (c *Config) OpenStore(log zerolog.Logger) (settings.Store, error) {
	switch c.Settings.Backend {
	case BackendJSON:
		return settings.NewJSONStore(c.Settings.Path, log), nil
	case BackendRedis:
		var opts []settings.RedisOption
		if c.Settings.Redis.Prefix != "" {
			opts = append(opts, settings.WithPrefix(c.Settings.Redis.Prefix))
		}
		r := c.Settings.Redis
		return settings.NewRedisStore(r.Addr, r.Password, r.DB, opts...), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownBackend, c.Settings.Backend)
	}
}

// Logger compiles the logging section.
func (c *Config) Logger() (*zerolog.Logger, error) {
	log, err := c.Logging.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile logging config: %w", err)
	}
	return log, nil
}
