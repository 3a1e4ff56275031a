// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt builds the outbound request payload for the model.
//
// The composer is pure assembly: it prefixes the user text with bracketed
// control tags for language, depth, and (optionally) focus mode, and passes
// attached media through as a separate part. No validation is performed.
package prompt

import (
	"strings"

	"github.com/almuwaffaq/muwaffaq-tui/internal/llm"
	"github.com/almuwaffaq/muwaffaq-tui/internal/model"
)

// Media is an attachment sent alongside the text part.
type Media struct {
	Data     []byte // raw bytes; base64 encoding happens on the wire
	MIMEType string
	Name     string // display only
}

// Compose builds the outbound prompt text. Layout:
//
//	[Language: <lang>]
//	[Depth: <depth>]
//	[Focus: <mode>] <user text>
//
// The focus tag is emitted only when the mode is not the default "All",
// and it rides on the user-text line because it scopes the question itself.
// Surrounding whitespace is trimmed.
func Compose(userText string, prefs model.UserPreferences, focus model.FocusMode) string {
	text := strings.TrimSpace(userText)
	if !focus.IsDefault() {
		text = "[Focus: " + focus.String() + "] " + text
	}

	var sb strings.Builder
	sb.WriteString("[Language: ")
	sb.WriteString(prefs.Language.String())
	sb.WriteString("]\n[Depth: ")
	sb.WriteString(prefs.Depth.String())
	sb.WriteString("]\n")
	sb.WriteString(text)

	return strings.TrimSpace(sb.String())
}

// Parts assembles the message parts for the collaborator: one text part,
// plus an inline-media part when media is attached.
func Parts(composed string, media *Media) []llm.Part {
	parts := []llm.Part{{Text: composed}}
	if media != nil {
		parts = append(parts, llm.Part{
			Data:     media.Data,
			MIMEType: media.MIMEType,
		})
	}
	return parts
}
