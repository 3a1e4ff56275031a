// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportFixture() *ChatSession {
	return &ChatSession{
		ID:        "3f2a9c1e-0000-4000-8000-000000000000",
		Title:     "What breaks the fast?",
		UpdatedAt: 1756600000000,
		Messages: []Message{
			NewMessage(RoleUser, "What breaks the fast?", 1756599000000),
			NewMessage(RoleAssistant, "Eating and drinking deliberately breaks the fast (Sahih al-Bukhari 1933).", 1756600000000),
		},
	}
}

func TestExportMarkdown(t *testing.T) {
	md := exportFixture().ExportMarkdown()

	assert.Contains(t, md, "# What breaks the fast?")
	assert.Contains(t, md, "**You**")
	assert.Contains(t, md, "**Al-Muwaffaq**")
	assert.Contains(t, md, "(Sahih al-Bukhari 1933)")
}

func TestExportJSONFieldNames(t *testing.T) {
	data, err := exportFixture().ExportJSON()
	require.NoError(t, err)

	// The export uses the same field names as the persisted record, so an
	// exported session can be re-imported byte-for-byte.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"id", "title", "messages", "updatedAt"} {
		assert.Contains(t, raw, key)
	}

	var msgs []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["messages"], &msgs))
	require.Len(t, msgs, 2)
	for _, key := range []string{"role", "content", "timestamp"} {
		assert.Contains(t, msgs[0], key)
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	orig := exportFixture()
	data, err := orig.ExportJSON()
	require.NoError(t, err)

	var back ChatSession
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, orig.ID, back.ID)
	assert.Equal(t, orig.Title, back.Title)
	assert.Equal(t, orig.Messages, back.Messages)
	assert.Equal(t, orig.UpdatedAt, back.UpdatedAt)
}
