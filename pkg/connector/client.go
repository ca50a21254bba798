// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/rs/zerolog"

	"github.com/aiku/buttbot/pkg/bot"
)

var (
	ErrNotConnected = errors.New("not connected")
	errNoTeam       = errors.New("bot account is not a member of any team")
)

// MessageHandler receives every message a transport accepts.
type MessageHandler interface {
	HandleMessage(ctx context.Context, t bot.Transport, msg bot.Message) error
}

// MattermostClient is the bot's connection to one Mattermost server.
type MattermostClient struct {
	cfg     MattermostConfig
	handler MessageHandler

	client   *model.Client4
	userID   string
	username string
	teamID   string
	channels *channelDirectory

	wsLock   sync.Mutex
	wsClient *model.WebSocketClient

	stopOnce sync.Once
	stopChan chan struct{}
	log      zerolog.Logger
}

var _ bot.Transport = (*MattermostClient)(nil)

func NewMattermostClient(cfg MattermostConfig, handler MessageHandler, log zerolog.Logger) *MattermostClient {
	client := model.NewAPIv4Client(cfg.ServerURL)
	client.SetToken(cfg.Token)
	return &MattermostClient{
		cfg:      cfg,
		handler:  handler,
		client:   client,
		channels: newChannelDirectory(),
		stopChan: make(chan struct{}),
		log:      log.With().Str("component", "mm_client").Logger(),
	}
}

func (m *MattermostClient) Name() string {
	return "mattermost"
}

// Serves reports whether channel is a Mattermost channel name rather than
// a Matrix room.
func (m *MattermostClient) Serves(channel string) bool {
	return !isRoomID(channel)
}

// Username returns the name of the bot account after Connect.
func (m *MattermostClient) Username() string {
	return m.username
}

// Connect verifies the token, resolves the team and opens the websocket.
func (m *MattermostClient) Connect(ctx context.Context) error {
	m.log.Info().Str("server_url", m.cfg.ServerURL).Msg("Connecting to Mattermost")
	if err := m.authenticate(ctx); err != nil {
		return err
	}
	if err := m.connectWebSocket(); err != nil {
		return fmt.Errorf("websocket connection failed: %w", err)
	}
	return nil
}

func (m *MattermostClient) authenticate(ctx context.Context) error {
	me, _, err := m.client.GetMe(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to verify Mattermost session: %w", err)
	}
	m.userID = me.Id
	m.username = me.Username
	m.log.Info().Str("user_id", me.Id).Str("username", me.Username).Msg("Authenticated")

	if m.cfg.Team != "" {
		team, _, err := m.client.GetTeamByName(ctx, m.cfg.Team, "")
		if err != nil {
			return fmt.Errorf("failed to get team %s: %w", m.cfg.Team, err)
		}
		m.teamID = team.Id
		return nil
	}
	teams, _, err := m.client.GetTeamsForUser(ctx, m.userID, "")
	if err != nil {
		return fmt.Errorf("failed to get teams: %w", err)
	} else if len(teams) == 0 {
		return errNoTeam
	}
	m.teamID = teams[0].Id
	m.log.Debug().Str("team_id", m.teamID).Str("team_name", teams[0].Name).Msg("Using first team")
	return nil
}

func (m *MattermostClient) connectWebSocket() error {
	wsURL := httpToWS(m.client.URL)
	ws, err := model.NewWebSocketClient4(wsURL, m.client.AuthToken)
	if err != nil {
		return fmt.Errorf("failed to create websocket client: %w", err)
	}
	ws.Listen()

	m.wsLock.Lock()
	m.wsClient = ws
	m.wsLock.Unlock()
	m.log.Info().Str("ws_url", wsURL).Msg("WebSocket connected")
	return nil
}

// httpToWS converts an HTTP(S) URL to a WS(S) URL.
func httpToWS(url string) string {
	if strings.HasPrefix(url, "https://") {
		return "wss://" + strings.TrimPrefix(url, "https://")
	}
	if strings.HasPrefix(url, "http://") {
		return "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url
}

// Run handles websocket events until ctx is done or Disconnect is called.
// A dropped websocket is reconnected after the configured delay.
func (m *MattermostClient) Run(ctx context.Context) error {
	m.wsLock.Lock()
	connected := m.wsClient != nil
	m.wsLock.Unlock()
	if !connected {
		return ErrNotConnected
	}
	defer m.closeWebSocket()

	for m.listenWebSocket(ctx) {
		m.log.Warn().Msg("WebSocket event channel closed, reconnecting")
		if !m.reconnect(ctx) {
			return nil
		}
	}
	return nil
}

// listenWebSocket returns true when the event channel was closed by the
// server side and false when the client is shutting down.
func (m *MattermostClient) listenWebSocket(ctx context.Context) bool {
	m.wsLock.Lock()
	events := m.wsClient.EventChannel
	m.wsLock.Unlock()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-m.stopChan:
			return false
		case evt, ok := <-events:
			if !ok {
				return true
			}
			if evt == nil {
				continue
			}
			m.handleEvent(ctx, evt)
		}
	}
}

func (m *MattermostClient) reconnect(ctx context.Context) bool {
	delay := m.cfg.reconnectDelay()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-m.stopChan:
			return false
		case <-time.After(delay):
		}
		if err := m.connectWebSocket(); err != nil {
			m.log.Error().Err(err).Dur("retry_in", delay).Msg("Failed to reconnect WebSocket")
			continue
		}
		return true
	}
}

func (m *MattermostClient) closeWebSocket() {
	m.wsLock.Lock()
	defer m.wsLock.Unlock()
	if m.wsClient != nil {
		m.wsClient.Close()
		m.wsClient = nil
	}
}

// Disconnect closes the WebSocket connection and stops Run.
func (m *MattermostClient) Disconnect() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
	m.closeWebSocket()
}

// Send posts text to the channel with the given name.
func (m *MattermostClient) Send(ctx context.Context, channel, text string) error {
	channelID, err := m.channelID(ctx, channel)
	if err != nil {
		return err
	}
	_, _, err = m.client.CreatePost(ctx, &model.Post{ChannelId: channelID, Message: text})
	if err != nil {
		return fmt.Errorf("failed to create post in %s: %w", channel, err)
	}
	return nil
}

// Join adds the bot account to the channel with the given name.
func (m *MattermostClient) Join(ctx context.Context, channel string) error {
	channelID, err := m.channelID(ctx, channel)
	if err != nil {
		return err
	}
	if _, _, err = m.client.AddChannelMember(ctx, channelID, m.userID); err != nil {
		return fmt.Errorf("failed to join %s: %w", channel, err)
	}
	return nil
}

// Leave removes the bot account from the channel with the given name.
func (m *MattermostClient) Leave(ctx context.Context, channel string) error {
	channelID, err := m.channelID(ctx, channel)
	if err != nil {
		return err
	}
	if _, err = m.client.RemoveUserFromChannel(ctx, channelID, m.userID); err != nil {
		return fmt.Errorf("failed to leave %s: %w", channel, err)
	}
	m.channels.forget(channel)
	return nil
}

func (m *MattermostClient) channelID(ctx context.Context, name string) (string, error) {
	if channelID, ok := m.channels.idOf(name); ok {
		return channelID, nil
	}
	if m.teamID == "" {
		return "", ErrNotConnected
	}
	ch, _, err := m.client.GetChannelByName(ctx, name, m.teamID, "")
	if err != nil {
		return "", fmt.Errorf("failed to get channel %s: %w", name, err)
	}
	m.channels.remember(ch.Name, ch.Id)
	return ch.Id, nil
}
