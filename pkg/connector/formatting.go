// Copyright 2024-2026 Aiku AI

package connector

import (
	"maunium.net/go/mautrix/event"

	"github.com/aiku/buttbot/pkg/connector/matrixfmt"
)

// messageText returns the text of a Matrix message the bot should read, or
// an empty string for message types it ignores.
func messageText(content *event.MessageEventContent) string {
	if content == nil {
		return ""
	}
	switch content.MsgType {
	case event.MsgText, event.MsgEmote:
		return matrixfmt.PlainText(content)
	default:
		return ""
	}
}
