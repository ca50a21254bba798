// Copyright 2024-2026 Aiku AI

package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mattermost/mattermost/server/public/model"

	"github.com/aiku/buttbot/pkg/bot"
)

// handleEvent dispatches a Mattermost WebSocket event to the appropriate handler.
func (m *MattermostClient) handleEvent(ctx context.Context, evt *model.WebSocketEvent) {
	switch evt.EventType() {
	case model.WebsocketEventPosted:
		m.handlePosted(ctx, evt)
	default:
		m.log.Trace().Str("event_type", string(evt.EventType())).Msg("Unhandled event type")
	}
}

// parsePostedEvent extracts and validates a post from a WebSocket event,
// applying all echo prevention layers. Returns (nil, nil) to skip silently,
// (nil, err) to log an error, or (post, nil) to proceed.
func (m *MattermostClient) parsePostedEvent(evt *model.WebSocketEvent) (*model.Post, error) {
	postJSON, ok := evt.GetData()["post"].(string)
	if !ok {
		return nil, fmt.Errorf("posted event missing post data")
	}

	var post model.Post
	if err := json.Unmarshal([]byte(postJSON), &post); err != nil {
		return nil, fmt.Errorf("failed to unmarshal post: %w", err)
	}

	// Echo prevention: skip own posts.
	if post.UserId == m.userID {
		return nil, nil
	}

	// Skip non-default post types (system messages).
	if post.Type != "" && post.Type != model.PostTypeDefault {
		return nil, nil
	}

	// Echo prevention: skip posts made by integrations and other bots.
	if fromBot, _ := post.GetProp(model.PostPropsFromBot).(string); fromBot == "true" {
		m.log.Debug().
			Str("post_id", post.Id).
			Str("user_id", post.UserId).
			Msg("Skipping bot post (echo prevention)")
		return nil, nil
	}

	senderName := senderNameOf(evt)
	if senderName != "" && isBotUsername(senderName, m.cfg.BotPrefix) {
		m.log.Debug().
			Str("post_id", post.Id).
			Str("username", senderName).
			Msg("Skipping bot username post (echo prevention)")
		return nil, nil
	}

	if strings.TrimSpace(post.Message) == "" {
		return nil, nil
	}
	return &post, nil
}

func senderNameOf(evt *model.WebSocketEvent) string {
	name, _ := evt.GetData()["sender_name"].(string)
	return strings.TrimPrefix(name, "@")
}

func (m *MattermostClient) handlePosted(ctx context.Context, evt *model.WebSocketEvent) {
	post, err := m.parsePostedEvent(evt)
	if err != nil {
		m.log.Warn().Err(err).Msg("Failed to parse posted event")
		return
	}
	if post == nil {
		return
	}

	msg, err := m.resolveMessage(ctx, evt, post)
	if err != nil {
		m.log.Warn().Err(err).Str("post_id", post.Id).Msg("Failed to resolve posted message")
		return
	}
	if msg.Author == "" {
		return
	}
	m.log.Debug().
		Str("post_id", post.Id).
		Str("channel", msg.Channel).
		Str("author", msg.Author).
		Msg("Received new message")

	if err = m.handler.HandleMessage(ctx, m, msg); err != nil {
		m.log.Error().Err(err).Str("post_id", post.Id).Msg("Failed to handle message")
	}
}

// resolveMessage turns the IDs of a post into the names the bot works with.
// Event data is used when present, the REST API otherwise.
func (m *MattermostClient) resolveMessage(ctx context.Context, evt *model.WebSocketEvent, post *model.Post) (bot.Message, error) {
	channelName, err := m.channelName(ctx, evt, post.ChannelId)
	if err != nil {
		return bot.Message{}, err
	}
	author := senderNameOf(evt)
	if author == "" {
		user, _, err := m.client.GetUser(ctx, post.UserId, "")
		if err != nil {
			return bot.Message{}, fmt.Errorf("failed to get user %s: %w", post.UserId, err)
		}
		author = user.Username
		if isBotUsername(author, m.cfg.BotPrefix) || user.IsBot {
			return bot.Message{}, nil
		}
	}
	return bot.Message{
		Channel:  channelName,
		Author:   author,
		AuthorID: post.UserId,
		Text:     post.Message,
	}, nil
}

func (m *MattermostClient) channelName(ctx context.Context, evt *model.WebSocketEvent, channelID string) (string, error) {
	if name, ok := m.channels.nameOf(channelID); ok {
		return name, nil
	}
	if name, _ := evt.GetData()["channel_name"].(string); name != "" {
		m.channels.remember(name, channelID)
		return name, nil
	}
	ch, _, err := m.client.GetChannel(ctx, channelID, "")
	if err != nil {
		return "", fmt.Errorf("failed to get channel %s: %w", channelID, err)
	}
	m.channels.remember(ch.Name, ch.Id)
	return ch.Name, nil
}

// isBotUsername reports whether a Mattermost username belongs to a bot whose
// posts must never be processed.
func isBotUsername(username, botPrefix string) bool {
	return botPrefix != "" && strings.HasPrefix(username, botPrefix)
}
