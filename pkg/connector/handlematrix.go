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

	"github.com/rs/zerolog"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/aiku/buttbot/pkg/bot"
)

// matrixAPI is the part of mautrix.Client the bot uses. Tests replace it.
type matrixAPI interface {
	SendText(ctx context.Context, roomID id.RoomID, text string) (*mautrix.RespSendEvent, error)
	JoinRoomByID(ctx context.Context, roomID id.RoomID) (*mautrix.RespJoinRoom, error)
	LeaveRoom(ctx context.Context, roomID id.RoomID, optionalReq ...*mautrix.ReqLeave) (*mautrix.RespLeaveRoom, error)
}

// MatrixClient is the bot's connection to a Matrix homeserver. Channels are
// room IDs and authors are user localparts.
type MatrixClient struct {
	cfg     MatrixConfig
	handler MessageHandler
	userID  id.UserID

	client *mautrix.Client
	api    matrixAPI
	log    zerolog.Logger
}

var _ bot.Transport = (*MatrixClient)(nil)

func NewMatrixClient(cfg MatrixConfig, handler MessageHandler, log zerolog.Logger) (*MatrixClient, error) {
	userID := id.UserID(cfg.UserID)
	client, err := mautrix.NewClient(cfg.Homeserver, userID, cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create matrix client: %w", err)
	}
	mc := &MatrixClient{
		cfg:     cfg,
		handler: handler,
		userID:  userID,
		client:  client,
		api:     client,
		log:     log.With().Str("component", "matrix_client").Logger(),
	}
	client.Log = mc.log
	return mc, nil
}

func (mc *MatrixClient) Name() string {
	return "matrix"
}

// Serves reports whether channel is a Matrix room ID.
func (mc *MatrixClient) Serves(channel string) bool {
	return isRoomID(channel)
}

func isRoomID(channel string) bool {
	return strings.HasPrefix(channel, "!") && strings.Contains(channel, ":")
}

// Run syncs with the homeserver until ctx is done. Events sent before the
// first sync are not processed.
func (mc *MatrixClient) Run(ctx context.Context) error {
	syncer, ok := mc.client.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return fmt.Errorf("unexpected syncer type %T", mc.client.Syncer)
	}
	syncer.OnSync(mc.client.DontProcessOldEvents)
	syncer.OnEventType(event.EventMessage, mc.handleMessageEvent)
	syncer.OnEventType(event.StateMember, mc.handleMemberEvent)

	mc.log.Info().Str("homeserver", mc.cfg.Homeserver).Str("user_id", mc.userID.String()).Msg("Starting Matrix sync")
	err := mc.client.SyncWithContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return fmt.Errorf("matrix sync failed: %w", err)
	}
	return nil
}

// Disconnect stops a running sync.
func (mc *MatrixClient) Disconnect() {
	mc.client.StopSync()
}

func (mc *MatrixClient) Send(ctx context.Context, channel, text string) error {
	if _, err := mc.api.SendText(ctx, id.RoomID(channel), text); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", channel, err)
	}
	return nil
}

func (mc *MatrixClient) Join(ctx context.Context, channel string) error {
	if _, err := mc.api.JoinRoomByID(ctx, id.RoomID(channel)); err != nil {
		return fmt.Errorf("failed to join %s: %w", channel, err)
	}
	return nil
}

func (mc *MatrixClient) Leave(ctx context.Context, channel string) error {
	if _, err := mc.api.LeaveRoom(ctx, id.RoomID(channel)); err != nil {
		return fmt.Errorf("failed to leave %s: %w", channel, err)
	}
	return nil
}

// parseMessageEvent converts a room message into a bot message. Returns
// (nil, nil) to skip silently.
func (mc *MatrixClient) parseMessageEvent(evt *event.Event) (*bot.Message, error) {
	if evt.Sender == mc.userID {
		return nil, nil
	}
	content := evt.Content.AsMessage()
	if content.RelatesTo != nil && content.RelatesTo.Type == event.RelReplace {
		return nil, nil
	}
	text := messageText(content)
	if text == "" {
		return nil, nil
	}
	return &bot.Message{
		Channel:  evt.RoomID.String(),
		Author:   evt.Sender.Localpart(),
		AuthorID: evt.Sender.String(),
		Text:     text,
	}, nil
}

func (mc *MatrixClient) handleMessageEvent(ctx context.Context, evt *event.Event) {
	msg, err := mc.parseMessageEvent(evt)
	if err != nil {
		mc.log.Warn().Err(err).Str("event_id", evt.ID.String()).Msg("Failed to parse message event")
		return
	}
	if msg == nil {
		return
	}
	if err = mc.handler.HandleMessage(ctx, mc, *msg); err != nil {
		mc.log.Error().Err(err).
			Str("event_id", evt.ID.String()).
			Str("room_id", evt.RoomID.String()).
			Msg("Failed to handle message")
	}
}

func (mc *MatrixClient) handleMemberEvent(ctx context.Context, evt *event.Event) {
	if !mc.cfg.AutoJoin || evt.GetStateKey() != mc.userID.String() {
		return
	}
	if evt.Content.AsMember().Membership != event.MembershipInvite {
		return
	}
	log := mc.log.With().Str("room_id", evt.RoomID.String()).Str("inviter", evt.Sender.String()).Logger()
	if err := mc.Join(ctx, evt.RoomID.String()); err != nil {
		log.Warn().Err(err).Msg("Failed to accept invite")
		return
	}
	log.Info().Msg("Accepted invite")
}
