// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm defines the contract with the streaming model collaborator
// and provides the Gemini implementation.
//
// The core treats the model as a black-box streaming text service: it
// accepts message parts and yields a finite, non-restartable sequence of
// text fragments. The conversation handle is an explicit, swappable
// resource — Reset discards it and the next send lazily creates a new one.
package llm
