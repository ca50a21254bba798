// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package matrixfmt extracts the plain text of Matrix messages.
package matrixfmt

import (
	"html"
	"regexp"
	"strings"

	"maunium.net/go/mautrix/event"
)

var (
	mxReplyRe = regexp.MustCompile(`(?s)<mx-reply>.*?</mx-reply>`)
	linkRe    = regexp.MustCompile(`(?s)<a href="[^"]+"[^>]*>(.*?)</a>`)
	brRe      = regexp.MustCompile(`<br\s*/?>`)
	blockRe   = regexp.MustCompile(`</(p|div|li|pre|blockquote|h[1-6])>`)
	tagRe     = regexp.MustCompile(`<[^>]+>`)
	blankRe   = regexp.MustCompile(`\n{2,}`)
)

// PlainText returns the text a user typed, without reply fallbacks or
// markup. Links are reduced to their label. Content is not modified.
func PlainText(content *event.MessageEventContent) string {
	if content == nil {
		return ""
	}
	c := *content
	c.RemoveReplyFallback()

	if c.Format != event.FormatHTML || c.FormattedBody == "" {
		return strings.TrimSpace(c.Body)
	}

	text := mxReplyRe.ReplaceAllString(c.FormattedBody, "")
	text = linkRe.ReplaceAllString(text, "$1")
	text = brRe.ReplaceAllString(text, "\n")
	text = blockRe.ReplaceAllString(text, "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = blankRe.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
