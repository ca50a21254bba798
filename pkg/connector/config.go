// Copyright 2024-2026 Aiku AI

package connector

import (
	"fmt"
	"time"

	up "go.mau.fi/util/configupgrade"
)

const defaultReconnectDelay = 5 * time.Second

// MattermostConfig is the mattermost section of the configuration file.
type MattermostConfig struct {
	ServerURL string `yaml:"server_url"`
	Token     string `yaml:"token"`
	// Team is the name of the team whose channels the bot joins. When empty,
	// the first team of the bot account is used.
	Team string `yaml:"team"`
	// BotPrefix is a username prefix for echo prevention. Posts from any
	// username starting with it are never processed. Leave empty to disable
	// prefix-based filtering.
	BotPrefix string `yaml:"bot_prefix"`
	// ReconnectDelay is the number of seconds to wait before reconnecting a
	// dropped websocket.
	ReconnectDelay int `yaml:"reconnect_delay"`
}

// Enabled reports whether enough is configured to connect.
func (c MattermostConfig) Enabled() bool {
	return c.ServerURL != "" && c.Token != ""
}

func (c MattermostConfig) reconnectDelay() time.Duration {
	if c.ReconnectDelay <= 0 {
		return defaultReconnectDelay
	}
	return time.Duration(c.ReconnectDelay) * time.Second
}

// MatrixConfig is the matrix section of the configuration file.
type MatrixConfig struct {
	Homeserver  string `yaml:"homeserver"`
	UserID      string `yaml:"user_id"`
	AccessToken string `yaml:"access_token"`
	// AutoJoin makes the bot accept every room invite.
	AutoJoin bool `yaml:"auto_join"`
}

func (c MatrixConfig) Enabled() bool {
	return c.Homeserver != "" && c.AccessToken != ""
}

// Validate checks the parts of an enabled section that cannot be defaulted.
func (c MatrixConfig) Validate() error {
	if c.Enabled() && c.UserID == "" {
		return fmt.Errorf("matrix.user_id is required when matrix is enabled")
	}
	return nil
}

// UpgradeMattermostConfig copies the mattermost section from an old config.
func UpgradeMattermostConfig(helper up.Helper) {
	helper.Copy(up.Str, "mattermost", "server_url")
	helper.Copy(up.Str, "mattermost", "token")
	helper.Copy(up.Str, "mattermost", "team")
	helper.Copy(up.Str, "mattermost", "bot_prefix")
	helper.Copy(up.Int, "mattermost", "reconnect_delay")
}

// UpgradeMatrixConfig copies the matrix section from an old config.
func UpgradeMatrixConfig(helper up.Helper) {
	helper.Copy(up.Str, "matrix", "homeserver")
	helper.Copy(up.Str, "matrix", "user_id")
	helper.Copy(up.Str, "matrix", "access_token")
	helper.Copy(up.Bool, "matrix", "auto_join")
}
