// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "github.com/almuwaffaq/muwaffaq-tui/internal/util"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Al-Muwaffaq"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single message in a chat session.
// Timestamp is unix milliseconds, monotonically non-decreasing within a
// session (see Clock).
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// NewMessage creates a message with the given role, content, and timestamp.
func NewMessage(role Role, content string, ts int64) Message {
	return Message{Role: role, Content: content, Timestamp: ts}
}

// WithContent returns a copy of the message carrying new content.
// The streaming merge replaces the session's last message with this copy.
func (m Message) WithContent(content string) Message {
	m.Content = content
	return m
}

// Preview returns a one-line, rune-truncated preview of the content.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.CollapseLines(m.Content), maxLen)
}

// IsEmpty returns true if the message has no content.
func (m Message) IsEmpty() bool {
	return len(m.Content) == 0
}
