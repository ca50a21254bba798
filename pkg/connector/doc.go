// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package connector connects the bot to chat networks.
//
// # Core Types
//
// [MattermostClient] holds a REST client and a WebSocket connection to one
// Mattermost server. Channels are addressed by name inside the configured
// team and resolved to IDs on demand.
//
// [MatrixClient] syncs with a Matrix homeserver. Channels are room IDs and
// message authors are user localparts.
//
// Both implement [bot.Transport] and hand every accepted message to a
// [MessageHandler].
//
// # Echo Prevention
//
// Mattermost posts are skipped when they come from the bot account itself,
// are system messages, carry the from_bot property or come from a username
// matching the configured bot prefix. Matrix events from the bot's own user
// and m.notice messages are skipped.
//
// # Sub-packages
//
//   - matrixfmt extracts plain text from Matrix HTML messages.
package connector
