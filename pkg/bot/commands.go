// Copyright 2024-2026 Aiku AI

package bot

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/aiku/buttbot/pkg/settings"
)

type commandFunc func(ctx context.Context, t Transport, msg Message, args []string) error

func (b *Bot) commandTable() map[string]commandFunc {
	return map[string]commandFunc{
		"hello":      b.cmdHello,
		"join":       b.cmdJoin,
		"leave":      b.cmdLeave,
		"buttrate":   b.cmdButtRate,
		"buttword":   b.cmdButtWord,
		"buttwords":  b.cmdButtWords,
		"ignoreme":   b.cmdIgnoreMe,
		"unignoreme": b.cmdUnignoreMe,
	}
}

// Commands returns the names of all commands without the prefix.
func (b *Bot) Commands() []string {
	names := make([]string, 0, len(b.commands))
	for name := range b.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (b *Bot) cmdHello(ctx context.Context, t Transport, msg Message, _ []string) error {
	limiter, _ := b.hello.GetOrSet(strings.ToLower(msg.Author), rate.NewLimiter(rate.Every(helloInterval/helloBurst), helloBurst))
	if !limiter.AllowN(b.now(), 1) {
		return b.reply(ctx, t, msg, "Wait a couple of seconds before sending something else, %s!", msg.Author)
	}
	return b.reply(ctx, t, msg, "Hello %s!", msg.Author)
}

func (b *Bot) cmdJoin(ctx context.Context, t Transport, msg Message, args []string) error {
	target := msg.Author
	if len(args) > 0 {
		target = strings.TrimPrefix(args[0], "#")
	}
	if !b.isOwner(msg.Author, target) {
		return b.reply(ctx, t, msg, "You can only add the bot to your own channel.")
	}
	added, err := b.addChannel(ctx, target)
	if err != nil {
		return err
	} else if !added {
		return b.reply(ctx, t, msg, "Already in %s's channel.", target)
	}
	if err = b.reply(ctx, t, msg, "Joining %s's channel", target); err != nil {
		return err
	}
	if err = t.Join(ctx, target); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("target", target).Msg("Failed to join channel")
		if _, rmErr := b.removeChannel(ctx, target); rmErr != nil {
			return errors.Join(err, rmErr)
		}
		return b.reply(ctx, t, msg, "Could not join %s's channel.", target)
	}
	zerolog.Ctx(ctx).Info().Str("target", target).Msg("Joined channel")
	return nil
}

func (b *Bot) cmdLeave(ctx context.Context, t Transport, msg Message, _ []string) error {
	if !b.isOwner(msg.Author, msg.Channel) {
		return ErrNotOwner
	}
	removed, err := b.removeChannel(ctx, msg.Channel)
	if err != nil {
		return err
	} else if !removed {
		return b.reply(ctx, t, msg, "The bot is not currently in %s's channel.", msg.Channel)
	}
	if err = b.reply(ctx, t, msg, "Leaving %s's channel.", msg.Channel); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Msg("Leaving channel")
	return t.Leave(ctx, msg.Channel)
}

func (b *Bot) cmdButtRate(ctx context.Context, t Transport, msg Message, args []string) error {
	if !b.isOwner(msg.Author, msg.Channel) {
		return ErrNotOwner
	}
	current, ok := b.Settings(msg.Channel)
	if !ok {
		return nil
	}
	if len(args) == 0 {
		return b.reply(ctx, t, msg, "The current rate is %d.", current.Rate)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return b.reply(ctx, t, msg, "%q is not a valid number. Please enter a valid number between %d and %d.",
			args[0], settings.MinRate, settings.MaxRate)
	}
	_, err = b.Update(ctx, msg.Channel, func(c *settings.Channel) error {
		c.Rate = n
		return nil
	})
	if errors.Is(err, settings.ErrRateOutOfRange) {
		return b.reply(ctx, t, msg, "%d is not a valid rate. Please choose a number between %d and %d.",
			n, settings.MinRate, settings.MaxRate)
	} else if err != nil {
		return err
	}
	return b.reply(ctx, t, msg, "Rate set to %d.", n)
}

func (b *Bot) cmdButtWord(ctx context.Context, t Transport, msg Message, args []string) error {
	current, ok := b.Settings(msg.Channel)
	if !ok {
		return nil
	}
	if len(args) == 0 {
		return b.reply(ctx, t, msg, "The current word for this channel is %s.", current.Word)
	}
	if !b.isOwner(msg.Author, msg.Channel) {
		return b.reply(ctx, t, msg, "You can only change the word for your own channel.")
	}
	updated, err := b.Update(ctx, msg.Channel, func(c *settings.Channel) error {
		c.Word = args[0]
		return nil
	})
	if err != nil {
		return err
	}
	return b.reply(ctx, t, msg, "Word for this channel changed to %s.", updated.Word)
}

const buttWordsUsage = "Usage: %sbuttwords [on|off|add <word>|remove <word>|list]"

func (b *Bot) cmdButtWords(ctx context.Context, t Transport, msg Message, args []string) error {
	current, ok := b.Settings(msg.Channel)
	if !ok {
		return nil
	}
	sub := "list"
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
	}
	if sub == "list" {
		state := "off"
		if current.RandomWordsEnabled {
			state = "on"
		}
		if len(current.RandomWords) == 0 {
			return b.reply(ctx, t, msg, "Random words are %s. The random word pool is empty.", state)
		}
		return b.reply(ctx, t, msg, "Random words are %s: %s", state, strings.Join(current.RandomWords, ", "))
	}
	if !b.isOwner(msg.Author, msg.Channel) {
		return b.reply(ctx, t, msg, "You can only change the random words for your own channel.")
	}
	var word string
	switch sub {
	case "on", "off":
	case "add", "remove":
		if len(args) < 2 {
			return b.reply(ctx, t, msg, buttWordsUsage, b.cfg.CommandPrefix)
		}
		word = args[1]
	default:
		return b.reply(ctx, t, msg, buttWordsUsage, b.cfg.CommandPrefix)
	}

	var response string
	_, err := b.Update(ctx, msg.Channel, func(c *settings.Channel) error {
		switch sub {
		case "on":
			c.RandomWordsEnabled = true
			response = "Random words enabled."
		case "off":
			c.RandomWordsEnabled = false
			response = "Random words disabled."
		case "add":
			if slices.Contains(c.RandomWords, word) {
				response = word + " is already in the random word pool."
			} else {
				c.RandomWords = append(c.RandomWords, word)
				response = "Added " + word + " to the random word pool."
			}
		case "remove":
			if i := slices.Index(c.RandomWords, word); i < 0 {
				response = word + " is not in the random word pool."
			} else {
				c.RandomWords = slices.Delete(c.RandomWords, i, i+1)
				response = "Removed " + word + " from the random word pool."
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return b.reply(ctx, t, msg, "%s", response)
}

// cmdIgnoreMe only changes the in-memory list. Permanent opt-outs go into
// the ignored_users config setting.
func (b *Bot) cmdIgnoreMe(ctx context.Context, t Transport, msg Message, _ []string) error {
	if !b.ignoredUsers.Add(strings.ToLower(msg.Author)) {
		return nil
	}
	return b.reply(ctx, t, msg, "%s, I will ignore your messages until the bot restarts. Use %sunignoreme to undo, "+
		"or ask an admin to add you to ignored_users to make it permanent.",
		msg.Author, b.cfg.CommandPrefix)
}

func (b *Bot) cmdUnignoreMe(ctx context.Context, t Transport, msg Message, _ []string) error {
	if !b.ignoredUsers.Pop(strings.ToLower(msg.Author)) {
		return nil
	}
	return b.reply(ctx, t, msg, "Welcome back, %s!", msg.Author)
}
