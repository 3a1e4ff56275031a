// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"time"
)

// TitleLimit is the number of leading runes of the first user message kept
// as a session title. Longer input gains a trailing ellipsis.
const TitleLimit = 40

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession holds one chat thread: an append-only, chronological message
// sequence plus identity and recency metadata.
//
// Invariants: Messages is never reordered, and the first message of a
// non-empty session always has RoleUser. The ID is allocated on first send,
// so "no active session" is distinct from a session with zero messages.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	UpdatedAt int64     `json:"updatedAt"`
}

// TitleFor derives a session title from the first user message:
// the first TitleLimit runes, with "..." appended iff input was truncated.
func TitleFor(content string) string {
	runes := []rune(content)
	if len(runes) > TitleLimit {
		return string(runes[:TitleLimit]) + "..."
	}
	return content
}

// LastMessage returns the most recent message and true, or false if empty.
func (s *ChatSession) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// MessageCount returns the number of messages.
func (s *ChatSession) MessageCount() int {
	return len(s.Messages)
}

// IsEmpty returns true if the session has no messages.
func (s *ChatSession) IsEmpty() bool {
	return len(s.Messages) == 0
}

// Preview returns a short preview from the first user message.
func (s *ChatSession) Preview(maxLen int) string {
	for _, msg := range s.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			return msg.Preview(maxLen)
		}
	}
	return ""
}

// Clone returns a deep copy of the session.
func (s *ChatSession) Clone() *ChatSession {
	clone := &ChatSession{
		ID:        s.ID,
		Title:     s.Title,
		UpdatedAt: s.UpdatedAt,
		Messages:  make([]Message, len(s.Messages)),
	}
	copy(clone.Messages, s.Messages)
	return clone
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders the session as a Markdown transcript.
func (s *ChatSession) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# " + s.Title + "\n\n")
	sb.WriteString("Updated: " + time.UnixMilli(s.UpdatedAt).Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range s.Messages {
		stamp := time.UnixMilli(msg.Timestamp).Format("15:04")
		sb.WriteString("**" + msg.Role.DisplayName() + "** (" + stamp + "):\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// ExportJSON renders the session as pretty-printed JSON.
func (s *ChatSession) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
