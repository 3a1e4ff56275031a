// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Fixed keys for the two persisted records.
const (
	KeySessions    = "sessions"
	KeyPreferences = "preferences"
)

// KV is a durable key/value store backed by SQLite. It plays the role the
// browser's localStorage played for the web client: a handful of JSON
// blobs under well-known keys.
type KV struct {
	db *sql.DB
}

// OpenKV opens (creating if needed) the key/value database at path.
func OpenKV(path string) (*KV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single-writer local database; a second connection would only add
	// lock contention.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &KV{db: db}, nil
}

// Get returns the value under key. The second result is false when the
// key does not exist.
func (kv *KV) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := kv.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
func (kv *KV) Put(key string, value []byte) error {
	_, err := kv.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (kv *KV) Delete(key string) error {
	if _, err := kv.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (kv *KV) Close() error {
	return kv.db.Close()
}
