// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package connector

import (
	"context"
	"errors"
	"testing"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/rs/zerolog"
)

func TestDisconnect_ClosesStopChan(t *testing.T) {
	t.Parallel()
	fake := newFakeMM()
	t.Cleanup(fake.Close)

	mc := newFullTestClient(fake.Server.URL, &recordingHandler{})
	mc.Disconnect()

	select {
	case <-mc.stopChan:
	default:
		t.Fatal("stopChan was not closed after Disconnect")
	}
}

func TestDisconnect_DoubleSafe(t *testing.T) {
	t.Parallel()
	mc := newFullTestClient("http://localhost:1", &recordingHandler{})
	mc.Disconnect()
	mc.Disconnect()
}

func TestRunWithoutConnect(t *testing.T) {
	t.Parallel()
	mc := newFullTestClient("http://localhost:1", &recordingHandler{})
	if err := mc.Run(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Run: got %v, want ErrNotConnected", err)
	}
}

func TestHTTPToWS(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"https://mm.example.com": "wss://mm.example.com",
		"http://localhost:8065":  "ws://localhost:8065",
		"ws://already":           "ws://already",
	}
	for in, want := range tests {
		if got := httpToWS(in); got != want {
			t.Errorf("httpToWS(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestAuthenticate_FirstTeam(t *testing.T) {
	t.Parallel()
	fake := newFakeMM()
	t.Cleanup(fake.Close)
	fake.Users["bot-id"] = &model.User{Id: "bot-id", Username: "buttbot"}
	fake.TokenToUser["secret"] = "bot-id"
	fake.Teams["bot-id"] = []*model.Team{{Id: "team-1", Name: "fun"}, {Id: "team-2", Name: "work"}}

	mc := NewMattermostClient(MattermostConfig{ServerURL: fake.Server.URL, Token: "secret"}, &recordingHandler{}, zerolog.Nop())
	if err := mc.authenticate(context.Background()); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if mc.userID != "bot-id" || mc.Username() != "buttbot" {
		t.Errorf("identity: got %q/%q", mc.userID, mc.Username())
	}
	if mc.teamID != "team-1" {
		t.Errorf("teamID: got %q, want team-1", mc.teamID)
	}
}

func TestAuthenticate_NamedTeam(t *testing.T) {
	t.Parallel()
	fake := newFakeMM()
	t.Cleanup(fake.Close)
	fake.Users["bot-id"] = &model.User{Id: "bot-id", Username: "buttbot"}
	fake.TokenToUser["secret"] = "bot-id"
	fake.Teams["bot-id"] = []*model.Team{{Id: "team-1", Name: "fun"}, {Id: "team-2", Name: "work"}}

	mc := NewMattermostClient(MattermostConfig{ServerURL: fake.Server.URL, Token: "secret", Team: "work"}, &recordingHandler{}, zerolog.Nop())
	if err := mc.authenticate(context.Background()); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if mc.teamID != "team-2" {
		t.Errorf("teamID: got %q, want team-2", mc.teamID)
	}
	if !fake.CalledPath("GET", "/teams/name/work") {
		t.Error("expected team lookup by name")
	}
}

func TestAuthenticate_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		token string
		team  string
		teams []*model.Team
	}{
		{name: "bad token", token: "wrong"},
		{name: "no teams", token: "secret"},
		{name: "unknown team", token: "secret", team: "nope", teams: []*model.Team{{Id: "t", Name: "fun"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fake := newFakeMM()
			t.Cleanup(fake.Close)
			fake.Users["bot-id"] = &model.User{Id: "bot-id", Username: "buttbot"}
			fake.TokenToUser["secret"] = "bot-id"
			fake.Teams["bot-id"] = tt.teams

			mc := NewMattermostClient(MattermostConfig{ServerURL: fake.Server.URL, Token: tt.token, Team: tt.team}, &recordingHandler{}, zerolog.Nop())
			if err := mc.authenticate(context.Background()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSend_ResolvesChannelByName(t *testing.T) {
	t.Parallel()
	fake := newFakeMM()
	t.Cleanup(fake.Close)
	fake.AddChannel(&model.Channel{Id: "ch-alice", TeamId: "my-team-id", Name: "alice"})

	mc := newFullTestClient(fake.Server.URL, &recordingHandler{})
	ctx := context.Background()
	for range 2 {
		if err := mc.Send(ctx, "alice", "the butts are happy"); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	posts := fake.CreatedPosts()
	if len(posts) != 2 {
		t.Fatalf("posts: got %d, want 2", len(posts))
	}
	if posts[0].ChannelId != "ch-alice" || posts[0].Message != "the butts are happy" {
		t.Errorf("post: got %+v", posts[0])
	}
	lookups := 0
	for _, c := range fake.Calls() {
		if c.Path == "/api/v4/teams/my-team-id/channels/name/alice" {
			lookups++
		}
	}
	if lookups != 1 {
		t.Errorf("channel lookups: got %d, want 1 (cached)", lookups)
	}
}

func TestSend_UnknownChannel(t *testing.T) {
	t.Parallel()
	fake := newFakeMM()
	t.Cleanup(fake.Close)

	mc := newFullTestClient(fake.Server.URL, &recordingHandler{})
	if err := mc.Send(context.Background(), "nobody", "hi"); err == nil {
		t.Error("expected an error for an unknown channel")
	}
}

func TestSend_PostFails(t *testing.T) {
	t.Parallel()
	fake := newFakeMM()
	t.Cleanup(fake.Close)
	fake.AddChannel(&model.Channel{Id: "ch-alice", TeamId: "my-team-id", Name: "alice"})
	fake.FailEndpoints["/api/v4/posts"] = true

	mc := newFullTestClient(fake.Server.URL, &recordingHandler{})
	if err := mc.Send(context.Background(), "alice", "hi"); err == nil {
		t.Error("expected an error when the post fails")
	}
}

func TestSend_NotConnected(t *testing.T) {
	t.Parallel()
	mc := NewMattermostClient(MattermostConfig{ServerURL: "http://localhost:1"}, &recordingHandler{}, zerolog.Nop())
	if err := mc.Send(context.Background(), "alice", "hi"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send: got %v, want ErrNotConnected", err)
	}
}

func TestJoinAndLeave(t *testing.T) {
	t.Parallel()
	fake := newFakeMM()
	t.Cleanup(fake.Close)
	fake.AddChannel(&model.Channel{Id: "ch-alice", TeamId: "my-team-id", Name: "alice"})

	mc := newFullTestClient(fake.Server.URL, &recordingHandler{})
	ctx := context.Background()
	if err := mc.Join(ctx, "alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if members := fake.ChannelMembers("ch-alice"); len(members) != 1 || members[0] != "my-user-id" {
		t.Errorf("members after join: got %v", members)
	}

	if err := mc.Leave(ctx, "alice"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if members := fake.ChannelMembers("ch-alice"); len(members) != 0 {
		t.Errorf("members after leave: got %v", members)
	}
	if !fake.CalledPath("DELETE", "/channels/ch-alice/members/my-user-id") {
		t.Error("expected membership removal")
	}
	if _, ok := mc.channels.idOf("alice"); ok {
		t.Error("channel should be forgotten after leave")
	}
}

func TestJoin_Fails(t *testing.T) {
	t.Parallel()
	fake := newFakeMM()
	t.Cleanup(fake.Close)
	fake.AddChannel(&model.Channel{Id: "ch-alice", TeamId: "my-team-id", Name: "alice"})
	fake.FailEndpoints["/members"] = true

	mc := newFullTestClient(fake.Server.URL, &recordingHandler{})
	if err := mc.Join(context.Background(), "alice"); err == nil {
		t.Error("expected an error when joining fails")
	}
}
