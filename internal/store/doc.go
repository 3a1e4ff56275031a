// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides durable state for sessions and preferences.
//
// Two independently persisted records live under fixed keys in a small
// SQLite key/value table: the session collection (JSON array) and the
// preferences record (JSON object). A missing key falls back to an empty
// collection / default preferences; corrupt JSON fails closed to the same
// defaults rather than crashing the process.
//
// SessionStore is the sole mutator of the session collection and
// PreferenceStore the sole mutator of the preferences record. Every
// mutation is followed by a full write-through persist.
package store
