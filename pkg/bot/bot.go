// Copyright 2024-2026 Aiku AI

// Package bot dispatches chat messages to commands or the substitution
// engine and keeps per-channel state in sync with the settings store.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mau.fi/util/exsync"
	"golang.org/x/time/rate"

	"github.com/aiku/buttbot/pkg/buttify"
	"github.com/aiku/buttbot/pkg/chatlog"
	"github.com/aiku/buttbot/pkg/settings"
)

// ErrNotOwner is returned when a command needs channel ownership.
var ErrNotOwner = errors.New("not the channel owner")

// Message is one incoming chat message, already resolved to names.
type Message struct {
	// Channel identifies where the message was posted and where replies go.
	Channel  string
	Author   string
	AuthorID string
	Text     string
}

// Transport is a chat network the bot is connected to.
type Transport interface {
	Name() string
	Send(ctx context.Context, channel, text string) error
	Join(ctx context.Context, channel string) error
	Leave(ctx context.Context, channel string) error
}

// ChannelFilter is implemented by transports that serve only some of the
// stored channels.
type ChannelFilter interface {
	Serves(channel string) bool
}

// Metrics receives counters about what the bot does.
type Metrics interface {
	ObserveMessage(channel string, outcome buttify.Outcome, effectiveRate int)
	ObserveCommand(command string)
	ForgetChannel(channel string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveMessage(string, buttify.Outcome, int) {}
func (nopMetrics) ObserveCommand(string)                       {}
func (nopMetrics) ForgetChannel(string)                        {}

// Config is the bot section of the configuration file.
type Config struct {
	// Username is the bot's own name. Messages from it are never processed.
	Username      string   `yaml:"username"`
	CommandPrefix string   `yaml:"command_prefix"`
	Admins        []string `yaml:"admins"`
	IgnoredUsers  []string `yaml:"ignored_users"`
	// IgnoreWords extends the built-in list of words that are never replaced.
	IgnoreWords []string `yaml:"ignore_words"`
}

const (
	defaultPrefix = "!"

	helloBurst    = 3
	helloInterval = 45 * time.Second
)

// Bot is safe for concurrent use. Messages of one channel are handled one
// at a time.
type Bot struct {
	cfg     Config
	engine  *buttify.Engine
	store   settings.Store
	logs    *chatlog.Manager
	metrics Metrics
	log     zerolog.Logger
	now     func() time.Time

	ignore       buttify.IgnoreSet
	admins       *exsync.Set[string]
	ignoredUsers *exsync.Set[string]
	channels     *exsync.Map[string, *channel]
	hello        *exsync.Map[string, *rate.Limiter]
	commands     map[string]commandFunc
}

type Option func(*Bot)

func WithLogger(log zerolog.Logger) Option {
	return func(b *Bot) { b.log = log }
}

// WithChatLog writes every seen message to per-channel log files.
func WithChatLog(logs *chatlog.Manager) Option {
	return func(b *Bot) { b.logs = logs }
}

func WithMetrics(m Metrics) Option {
	return func(b *Bot) { b.metrics = m }
}

// WithClock replaces time.Now for command cooldowns.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) { b.now = now }
}

// New creates a bot. Call Load before handling messages.
func New(cfg Config, engine *buttify.Engine, store settings.Store, opts ...Option) *Bot {
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = defaultPrefix
	}
	b := &Bot{
		cfg:     cfg,
		engine:  engine,
		store:   store,
		metrics: nopMetrics{},
		log:     zerolog.Nop(),
		now:     time.Now,

		ignore:       buttify.DefaultIgnoreSet(),
		admins:       exsync.NewSet[string](),
		ignoredUsers: exsync.NewSet[string](),
		channels:     exsync.NewMap[string, *channel](),
		hello:        exsync.NewMap[string, *rate.Limiter](),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With().Str("component", "bot").Logger()
	b.ignore.Add(cfg.IgnoreWords...)
	for _, admin := range cfg.Admins {
		b.admins.Add(strings.ToLower(admin))
	}
	for _, user := range cfg.IgnoredUsers {
		b.ignoredUsers.Add(strings.ToLower(user))
	}
	b.commands = b.commandTable()
	return b
}

// Load reads every stored channel into memory and returns their names.
func (b *Bot) Load(ctx context.Context) ([]string, error) {
	data, err := b.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel settings: %w", err)
	}
	names := make([]string, 0, len(data))
	for name, c := range data {
		b.channels.Set(name, newChannel(name, c))
		names = append(names, name)
	}
	b.log.Info().Strs("channels", names).Msg("Loaded channel settings")
	return names, nil
}

// JoinAll joins every loaded channel on t. Failures are logged and skipped.
func (b *Bot) JoinAll(ctx context.Context, t Transport) {
	filter, _ := t.(ChannelFilter)
	for name := range b.channels.CopyData() {
		if filter != nil && !filter.Serves(name) {
			continue
		}
		if err := t.Join(ctx, name); err != nil {
			b.log.Warn().Err(err).
				Str("transport", t.Name()).
				Str("channel", name).
				Msg("Failed to join channel")
		}
	}
}

// HandleMessage processes one incoming message. Commands are answered,
// other messages may get a rewritten copy posted back to the channel.
func (b *Bot) HandleMessage(ctx context.Context, t Transport, msg Message) error {
	if msg.Author == "" || strings.EqualFold(msg.Author, b.cfg.Username) {
		return nil
	}
	log := b.log.With().
		Str("transport", t.Name()).
		Str("channel", msg.Channel).
		Str("author", msg.Author).
		Logger()
	ctx = log.WithContext(ctx)

	name, args, isCommand := b.parseCommand(msg.Text)
	cmd, known := b.commands[name]
	if b.isIgnored(msg.Author) && !(isCommand && known && name == "unignoreme") {
		return nil
	}
	b.logs.For(msg.Channel).Info().
		Str("author", msg.Author).
		Str("author_id", msg.AuthorID).
		Msg(msg.Text)

	if isCommand && known {
		b.metrics.ObserveCommand(name)
		err := cmd(ctx, t, msg, args)
		if errors.Is(err, ErrNotOwner) {
			log.Debug().Str("command", name).Msg("Ignoring command from non-owner")
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to handle %s command: %w", name, err)
		}
		return nil
	}

	ch, ok := b.channels.Get(msg.Channel)
	if !ok {
		log.Trace().Msg("Message in unknown channel")
		return nil
	}
	ch.lock.Lock()
	res := b.engine.Run(msg.Text, &ch.state, b.ignore)
	eff := buttify.EffectiveRate(ch.state.TriggerRate, ch.state.Missed)
	ch.lock.Unlock()

	b.metrics.ObserveMessage(msg.Channel, res.Outcome, eff)
	log.Debug().
		Stringer("outcome", res.Outcome).
		Int("effective_rate", res.EffectiveRate).
		Msg("Processed message")
	if res.Outcome != buttify.OutcomeSubstituted {
		return nil
	}
	if err := t.Send(ctx, msg.Channel, res.Text); err != nil {
		return fmt.Errorf("failed to send substituted message: %w", err)
	}
	return nil
}

func (b *Bot) parseCommand(text string) (name string, args []string, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(text), b.cfg.CommandPrefix)
	if !found {
		return "", nil, false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 || rest[0] == ' ' {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

func (b *Bot) isIgnored(author string) bool {
	return b.ignoredUsers.Has(strings.ToLower(author))
}

// isOwner reports whether author may change the settings of channel.
func (b *Bot) isOwner(author, channel string) bool {
	return strings.EqualFold(author, channel) || b.admins.Has(strings.ToLower(author))
}

func (b *Bot) reply(ctx context.Context, t Transport, msg Message, format string, args ...any) error {
	if err := t.Send(ctx, msg.Channel, fmt.Sprintf(format, args...)); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}
