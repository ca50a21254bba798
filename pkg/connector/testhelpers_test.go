// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/rs/zerolog"

	"github.com/aiku/buttbot/pkg/bot"
)

// recordingHandler captures the messages a transport hands to the bot.
type recordingHandler struct {
	mu       sync.Mutex
	messages []bot.Message
	err      error
}

func (h *recordingHandler) HandleMessage(_ context.Context, _ bot.Transport, msg bot.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
	return h.err
}

func (h *recordingHandler) Messages() []bot.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	cp := make([]bot.Message, len(h.messages))
	copy(cp, h.messages)
	return cp
}

var errHandler = errors.New("handler failed")

// endpointCall records which API endpoints were hit during a test.
type endpointCall struct {
	Method string
	Path   string
	Body   string
}

// fakeMM is a test helper that wraps an httptest.Server simulating the
// Mattermost API. It records calls and provides canned responses.
type fakeMM struct {
	Server *httptest.Server

	mu    sync.Mutex
	calls []endpointCall

	// Users maps user ID to model.User for GetUser/GetMe responses.
	Users map[string]*model.User
	// TokenToUser maps bearer tokens to user IDs for GetMe auth.
	TokenToUser map[string]string
	// Channels maps channel ID to model.Channel.
	Channels map[string]*model.Channel
	// Teams maps user ID to team list.
	Teams map[string][]*model.Team
	// Members maps channel ID to the user IDs that joined it.
	Members map[string][]string
	// Posts holds every created post.
	Posts []*model.Post
	// FailEndpoints causes specific path prefixes to return 500.
	FailEndpoints map[string]bool
}

func newFakeMM() *fakeMM {
	f := &fakeMM{
		Users:         make(map[string]*model.User),
		TokenToUser:   make(map[string]string),
		Channels:      make(map[string]*model.Channel),
		Teams:         make(map[string][]*model.Team),
		Members:       make(map[string][]string),
		FailEndpoints: make(map[string]bool),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handler))
	return f
}

func (f *fakeMM) Close() {
	f.Server.Close()
}

func (f *fakeMM) record(method, path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, endpointCall{Method: method, Path: path, Body: body})
}

func (f *fakeMM) Calls() []endpointCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]endpointCall, len(f.calls))
	copy(cp, f.calls)
	return cp
}

func (f *fakeMM) CalledPath(method, path string) bool {
	for _, c := range f.Calls() {
		if c.Method == method && strings.Contains(c.Path, path) {
			return true
		}
	}
	return false
}

func (f *fakeMM) CreatedPosts() []*model.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]*model.Post, len(f.Posts))
	copy(cp, f.Posts)
	return cp
}

func (f *fakeMM) ChannelMembers(channelID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Members[channelID]...)
}

func (f *fakeMM) AddChannel(ch *model.Channel) {
	f.Channels[ch.Id] = ch
}

func (f *fakeMM) resolveToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	for tok, uid := range f.TokenToUser {
		if auth == "BEARER "+tok || auth == "Bearer "+tok {
			return uid
		}
	}
	return ""
}

func (f *fakeMM) channelByName(teamID, name string) *model.Channel {
	for _, ch := range f.Channels {
		if ch.TeamId == teamID && ch.Name == name {
			return ch
		}
	}
	return nil
}

func (f *fakeMM) teamByName(name string) *model.Team {
	for _, teams := range f.Teams {
		for _, team := range teams {
			if team.Name == name {
				return team
			}
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, path string) {
	w.WriteHeader(http.StatusNotFound)
	writeJSON(w, map[string]string{"message": "not found: " + path})
}

func (f *fakeMM) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.record(r.Method, r.URL.Path, string(body))

	// Check if this endpoint should fail.
	for prefix := range f.FailEndpoints {
		if strings.Contains(r.URL.Path, prefix) {
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, map[string]string{"message": "fake error"})
			return
		}
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v4")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	// GET /users/me
	case r.Method == http.MethodGet && path == "/users/me":
		uid := f.resolveToken(r)
		if uid == "" {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSON(w, map[string]string{"message": "unauthorized"})
			return
		}
		if u, ok := f.Users[uid]; ok {
			writeJSON(w, u)
			return
		}
		notFound(w, path)

	// GET /users/{user_id}/teams
	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "users" && parts[2] == "teams":
		teams := f.Teams[parts[1]]
		if teams == nil {
			teams = []*model.Team{}
		}
		writeJSON(w, teams)

	// GET /users/{user_id}
	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "users":
		if u, ok := f.Users[parts[1]]; ok {
			writeJSON(w, u)
			return
		}
		notFound(w, path)

	// GET /teams/name/{name}
	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "teams" && parts[1] == "name":
		if team := f.teamByName(parts[2]); team != nil {
			writeJSON(w, team)
			return
		}
		notFound(w, path)

	// GET /teams/{team_id}/channels/name/{name}
	case r.Method == http.MethodGet && len(parts) == 5 && parts[0] == "teams" && parts[2] == "channels" && parts[3] == "name":
		if ch := f.channelByName(parts[1], parts[4]); ch != nil {
			writeJSON(w, ch)
			return
		}
		notFound(w, path)

	// GET /channels/{channel_id}
	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "channels":
		if ch, ok := f.Channels[parts[1]]; ok {
			writeJSON(w, ch)
			return
		}
		notFound(w, path)

	// POST /channels/{channel_id}/members
	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "channels" && parts[2] == "members":
		var req map[string]string
		_ = json.Unmarshal(body, &req)
		f.mu.Lock()
		f.Members[parts[1]] = append(f.Members[parts[1]], req["user_id"])
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, &model.ChannelMember{ChannelId: parts[1], UserId: req["user_id"]})

	// DELETE /channels/{channel_id}/members/{user_id}
	case r.Method == http.MethodDelete && len(parts) == 4 && parts[0] == "channels" && parts[2] == "members":
		f.mu.Lock()
		members := f.Members[parts[1]]
		for i, uid := range members {
			if uid == parts[3] {
				f.Members[parts[1]] = append(members[:i], members[i+1:]...)
				break
			}
		}
		f.mu.Unlock()
		writeJSON(w, map[string]string{"status": "ok"})

	// POST /posts
	case r.Method == http.MethodPost && path == "/posts":
		var post model.Post
		_ = json.Unmarshal(body, &post)
		post.Id = "created-post-id"
		f.mu.Lock()
		f.Posts = append(f.Posts, &post)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, &post)

	default:
		notFound(w, path)
	}
}

// newWebSocketEvent creates a model.WebSocketEvent for testing handlers.
func newWebSocketEvent(eventType model.WebsocketEventType, channelID string, data map[string]any) *model.WebSocketEvent {
	evt := model.NewWebSocketEvent(eventType, "", channelID, "", nil, "")
	return evt.SetData(data)
}

// postedEvent builds a posted event the way the server sends it.
func postedEvent(post *model.Post, channelName, senderName string) *model.WebSocketEvent {
	raw, _ := json.Marshal(post)
	data := map[string]any{"post": string(raw)}
	if channelName != "" {
		data["channel_name"] = channelName
	}
	if senderName != "" {
		data["sender_name"] = "@" + senderName
	}
	return newWebSocketEvent(model.WebsocketEventPosted, post.ChannelId, data)
}

// newFullTestClient creates an authenticated MattermostClient talking to a
// fake server.
func newFullTestClient(serverURL string, handler MessageHandler) *MattermostClient {
	mc := NewMattermostClient(MattermostConfig{
		ServerURL: serverURL,
		Token:     "test-token",
		BotPrefix: "bot-",
	}, handler, zerolog.Nop())
	mc.userID = "my-user-id"
	mc.username = "buttbot"
	mc.teamID = "my-team-id"
	return mc
}
