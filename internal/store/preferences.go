// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/almuwaffaq/muwaffaq-tui/internal/model"
)

// PreferenceStore owns the singleton UserPreferences record.
// No versioning or migration: a record that fails to decode is replaced
// by defaults on the next update.
type PreferenceStore struct {
	mu    sync.Mutex
	kv    *KV
	log   *zap.Logger
	prefs model.UserPreferences
}

// NewPreferenceStore loads preferences from the KV store. A missing key
// or corrupt JSON yields the defaults.
func NewPreferenceStore(kv *KV, log *zap.Logger) (*PreferenceStore, error) {
	p := &PreferenceStore{kv: kv, log: log, prefs: model.DefaultPreferences()}

	data, ok, err := kv.Get(KeyPreferences)
	if err != nil {
		return nil, err
	}
	if ok {
		var prefs model.UserPreferences
		if err := json.Unmarshal(data, &prefs); err != nil {
			log.Warn("preferences record corrupt, using defaults", zap.Error(err))
		} else {
			p.prefs = prefs.Normalize()
		}
	}

	return p, nil
}

// Get returns the current preferences.
func (p *PreferenceStore) Get() model.UserPreferences {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prefs
}

// Update merges the patch into the current record, persists the full
// record, and returns the result.
func (p *PreferenceStore) Update(patch model.PreferencePatch) (model.UserPreferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	merged := p.prefs.Apply(patch)

	data, err := json.Marshal(merged)
	if err != nil {
		return p.prefs, err
	}
	if err := p.kv.Put(KeyPreferences, data); err != nil {
		p.log.Error("failed to persist preferences", zap.Error(err))
		return p.prefs, err
	}

	p.prefs = merged
	return merged, nil
}
