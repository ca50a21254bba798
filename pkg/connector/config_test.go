// Copyright 2024-2026 Aiku AI

package connector

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestMattermostConfigUnmarshalYAML(t *testing.T) {
	t.Parallel()
	input := `
server_url: http://mm.local:8065
token: abc
team: fun
bot_prefix: bot-
reconnect_delay: 10
`
	var cfg MattermostConfig
	if err := yaml.Unmarshal([]byte(input), &cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := MattermostConfig{ServerURL: "http://mm.local:8065", Token: "abc", Team: "fun", BotPrefix: "bot-", ReconnectDelay: 10}
	if cfg != want {
		t.Errorf("config: got %+v, want %+v", cfg, want)
	}
	if !cfg.Enabled() {
		t.Error("config with url and token should be enabled")
	}
	if cfg.reconnectDelay() != 10*time.Second {
		t.Errorf("reconnectDelay: got %v", cfg.reconnectDelay())
	}
}

func TestMattermostConfigDefaults(t *testing.T) {
	t.Parallel()
	var cfg MattermostConfig
	if cfg.Enabled() {
		t.Error("empty config should be disabled")
	}
	if cfg.reconnectDelay() != defaultReconnectDelay {
		t.Errorf("reconnectDelay: got %v, want %v", cfg.reconnectDelay(), defaultReconnectDelay)
	}
}

func TestMatrixConfigValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cfg     MatrixConfig
		enabled bool
		wantErr bool
	}{
		{name: "disabled", cfg: MatrixConfig{}},
		{name: "complete", cfg: MatrixConfig{Homeserver: "https://hs", AccessToken: "t", UserID: "@b:hs"}, enabled: true},
		{name: "missing user id", cfg: MatrixConfig{Homeserver: "https://hs", AccessToken: "t"}, enabled: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.cfg.Enabled(); got != tt.enabled {
				t.Errorf("Enabled: got %v, want %v", got, tt.enabled)
			}
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate: got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
