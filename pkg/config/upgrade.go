// Copyright 2024-2026 Aiku AI

package config

import (
	up "go.mau.fi/util/configupgrade"

	"github.com/aiku/buttbot/pkg/connector"
)

func upgradeConfig(helper up.Helper) {
	connector.UpgradeMattermostConfig(helper)
	connector.UpgradeMatrixConfig(helper)

	helper.Copy(up.Str, "bot", "username")
	helper.Copy(up.Str, "bot", "command_prefix")
	helper.Copy(up.List, "bot", "admins")
	helper.Copy(up.List, "bot", "ignored_users")
	helper.Copy(up.List, "bot", "ignore_words")

	helper.Copy(up.Str, "settings", "backend")
	helper.Copy(up.Str, "settings", "path")
	helper.Copy(up.Str, "settings", "redis", "addr")
	helper.Copy(up.Str, "settings", "redis", "password")
	helper.Copy(up.Int, "settings", "redis", "db")
	helper.Copy(up.Str, "settings", "redis", "prefix")

	helper.Copy(up.Str, "channel_logs", "directory")
	helper.Copy(up.Str, "channel_logs", "format")
	helper.Copy(up.Int, "channel_logs", "max_size")
	helper.Copy(up.Int, "channel_logs", "max_backups")
	helper.Copy(up.Bool, "channel_logs", "compress")

	helper.Copy(up.Str|up.Null, "admin_api_addr")

	helper.Copy(up.Map, "logging")
}

// Upgrader fills in new fields from the example config while keeping what
// the user configured.
var Upgrader = &up.StructUpgrader{
	SimpleUpgrader: up.SimpleUpgrader(upgradeConfig),
	Blocks: [][]string{
		{"matrix"},
		{"bot"},
		{"settings"},
		{"channel_logs"},
		{"admin_api_addr"},
		{"logging"},
	},
	Base: ExampleConfig,
}
