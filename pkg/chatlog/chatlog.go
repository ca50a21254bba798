// Copyright 2024-2026 Aiku AI

// Package chatlog writes one rotating log file per chat channel.
package chatlog

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.mau.fi/zeroconfig"
)

// Config controls where channel logs go. An empty Directory disables them.
type Config struct {
	Directory  string               `yaml:"directory"`
	Format     zeroconfig.LogFormat `yaml:"format"`
	MaxSize    int                  `yaml:"max_size"`
	MaxBackups int                  `yaml:"max_backups"`
	Compress   bool                 `yaml:"compress"`
}

// Manager hands out per-channel loggers and owns their files.
type Manager struct {
	cfg Config
	log zerolog.Logger

	lock    sync.Mutex
	writers map[string]io.Writer
	loggers map[string]*zerolog.Logger
}

func NewManager(cfg Config, log zerolog.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		log:     log.With().Str("component", "chatlog").Logger(),
		writers: make(map[string]io.Writer),
		loggers: make(map[string]*zerolog.Logger),
	}
}

// Path returns the file a channel logs to.
func (m *Manager) Path(channel string) string {
	return filepath.Join(m.cfg.Directory, FileName(channel))
}

// For returns the logger of channel, opening its file on first use. If the
// file can't be opened, or logging is disabled, a no-op logger is returned.
func (m *Manager) For(channel string) *zerolog.Logger {
	if m == nil || m.cfg.Directory == "" {
		return nopLogger()
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	if logger, ok := m.loggers[channel]; ok {
		return logger
	}
	wc := zeroconfig.WriterConfig{
		Type: zeroconfig.WriterTypeFile,
		FileConfig: zeroconfig.FileConfig{
			Filename:   m.Path(channel),
			MaxSize:    m.cfg.MaxSize,
			MaxBackups: m.cfg.MaxBackups,
			Compress:   m.cfg.Compress,
		},
	}
	writer, err := wc.Compile()
	if err != nil {
		m.log.Err(err).Str("channel", channel).Msg("Failed to open channel log")
		logger := nopLogger()
		m.loggers[channel] = logger
		return logger
	}
	m.writers[channel] = writer
	var out io.Writer = writer
	switch m.cfg.Format {
	case zeroconfig.LogFormatPretty, zeroconfig.LogFormatPrettyColored:
		out = zerolog.ConsoleWriter{
			Out:        writer,
			NoColor:    m.cfg.Format == zeroconfig.LogFormatPretty,
			TimeFormat: "2006-01-02T15:04:05.999Z07:00",
		}
	}
	logger := zerolog.New(out).With().Timestamp().Str("channel", channel).Logger()
	m.loggers[channel] = &logger
	return &logger
}

func nopLogger() *zerolog.Logger {
	log := zerolog.Nop()
	return &log
}

// Close closes every open file. Loggers handed out before are unusable
// afterwards.
func (m *Manager) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	var errs []error
	for channel, writer := range m.writers {
		if closer, ok := writer.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close log of %s: %w", channel, err))
			}
		}
	}
	clear(m.writers)
	clear(m.loggers)
	return errors.Join(errs...)
}

// FileName maps a channel name to a safe file name. Anything outside
// letters, digits, '-', '_' and inner dots becomes '_'.
func FileName(channel string) string {
	var b strings.Builder
	for i, r := range channel {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == '.' && i > 0:
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" || strings.Trim(name, ".") == "" {
		name = "_"
	}
	return name + ".log"
}
