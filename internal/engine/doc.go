// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine runs the conversational turn state machine.
//
// A turn moves through Idle -> Sending -> Streaming -> Settled or Failed.
// At most one turn is in flight at a time. The user message is appended
// synchronously before any network work; streamed fragments are merged
// into a single assistant message by rewriting it with the full
// accumulated buffer, so a reader always sees a coherent prefix of the
// final answer and never interleaved chunks.
//
// Every turn is bound to the session id captured at send time. If the
// user switches or deletes sessions mid-stream, remaining fragments are
// discarded rather than merged into the wrong conversation.
package engine
