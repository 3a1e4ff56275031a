// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions, messages,
// and user preferences.
//
// Messages are value types: once a message has been superseded by a
// streaming merge, the old value is replaced wholesale rather than mutated
// in place, so readers holding a copy never observe a half-updated message.
//
// The package is persistence-agnostic; internal/store owns durability.
package model
