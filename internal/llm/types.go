// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"errors"
)

// Part is one part of an outbound message: text, or inline media.
// Media bytes are raw here; base64 encoding is a wire concern.
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

// IsMedia reports whether the part carries inline media.
func (p Part) IsMedia() bool {
	return len(p.Data) > 0 && p.MIMEType != ""
}

// StreamCallback receives one text fragment. Returning an error aborts the
// stream; the sequence is not restartable.
type StreamCallback func(fragment string) error

// Streamer is the model collaborator contract.
type Streamer interface {
	// SendStreaming sends the message parts and invokes fn for each text
	// fragment, in production order, until the stream ends or errors.
	SendStreaming(ctx context.Context, parts []Part, fn StreamCallback) error

	// Reset discards the conversation handle so the next send starts a
	// fresh remote context. Called on new-thread, session switch, and
	// optionally after a failed turn.
	Reset()
}

// ErrNoAPIKey indicates the collaborator credential is missing.
// Fatal at startup of the integration; never retried automatically.
var ErrNoAPIKey = errors.New("gemini api key not configured")

// ErrAborted is returned by a callback to stop merging without treating
// the turn as a collaborator failure (e.g. the user switched sessions).
var ErrAborted = errors.New("stream aborted by caller")
