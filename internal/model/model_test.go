// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"

	"github.com/almuwaffaq/muwaffaq-tui/internal/lang"
)

// =============================================================================
// TITLE TESTS
// =============================================================================

func TestTitleFor(t *testing.T) {
	// 56 characters: truncated to the first 40 plus ellipsis
	long := "What is the ruling on fasting while traveling for work"
	got := TitleFor(long)
	want := string([]rune(long)[:40]) + "..."
	if got != want {
		t.Errorf("TitleFor(long) = %q, want %q", got, want)
	}

	short := "What is Salat?"
	if TitleFor(short) != short {
		t.Errorf("short titles must pass through unchanged")
	}

	// Exactly 40 runes: no ellipsis
	exact := strings.Repeat("a", 40)
	if TitleFor(exact) != exact {
		t.Errorf("40-rune input must not gain an ellipsis")
	}

	// 41 runes: truncated
	over := strings.Repeat("a", 41)
	if TitleFor(over) != strings.Repeat("a", 40)+"..." {
		t.Errorf("41-rune input must truncate, got %q", TitleFor(over))
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessageWithContent(t *testing.T) {
	orig := NewMessage(RoleAssistant, "partial", 100)
	updated := orig.WithContent("partial and more")

	if orig.Content != "partial" {
		t.Error("WithContent must not mutate the receiver")
	}
	if updated.Content != "partial and more" {
		t.Errorf("updated content = %q", updated.Content)
	}
	if updated.Timestamp != orig.Timestamp || updated.Role != orig.Role {
		t.Error("WithContent must preserve role and timestamp")
	}
}

func TestMessagePreview(t *testing.T) {
	m := NewMessage(RoleUser, "line one\nline two", 1)
	if got := m.Preview(50); got != "line one line two" {
		t.Errorf("Preview = %q", got)
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestSessionLastMessage(t *testing.T) {
	s := &ChatSession{ID: "x"}
	if _, ok := s.LastMessage(); ok {
		t.Error("empty session should have no last message")
	}

	s.Messages = append(s.Messages, NewMessage(RoleUser, "q", 1))
	s.Messages = append(s.Messages, NewMessage(RoleAssistant, "a", 2))
	last, ok := s.LastMessage()
	if !ok || last.Content != "a" {
		t.Errorf("LastMessage = %+v, ok=%v", last, ok)
	}
}

func TestSessionClone(t *testing.T) {
	s := &ChatSession{
		ID:       "s1",
		Title:    "t",
		Messages: []Message{NewMessage(RoleUser, "q", 1)},
	}
	c := s.Clone()
	c.Messages[0] = c.Messages[0].WithContent("changed")

	if s.Messages[0].Content != "q" {
		t.Error("Clone must deep-copy messages")
	}
}

func TestSessionExportMarkdown(t *testing.T) {
	s := &ChatSession{
		ID:        "s1",
		Title:     "Fasting",
		UpdatedAt: 1700000000000,
		Messages: []Message{
			NewMessage(RoleUser, "Is fasting obligatory?", 1700000000000),
			NewMessage(RoleAssistant, "Yes (Qur'an, Al-Baqarah 2:183).", 1700000001000),
		},
	}

	md := s.ExportMarkdown()
	if !strings.Contains(md, "# Fasting") {
		t.Error("export missing title heading")
	}
	if !strings.Contains(md, "**You**") || !strings.Contains(md, "**Al-Muwaffaq**") {
		t.Error("export missing role labels")
	}
	if !strings.Contains(md, "(Qur'an, Al-Baqarah 2:183)") {
		t.Error("export missing message content")
	}
}

// =============================================================================
// PREFERENCES TESTS
// =============================================================================

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences()
	if p.Name != "" || p.Location != "" {
		t.Error("default identity should be empty")
	}
	if p.Depth != DepthDetailed {
		t.Errorf("default depth = %v, want detailed", p.Depth)
	}
	if p.Language != lang.English {
		t.Errorf("default language = %v, want English", p.Language)
	}
}

func TestPreferencesApplyPartial(t *testing.T) {
	p := DefaultPreferences()
	p.Name = "Ahmed"
	p.Location = "Lahore"

	l := lang.Urdu
	updated := p.Apply(PreferencePatch{Language: &l})

	if updated.Language != lang.Urdu {
		t.Errorf("language = %v, want Urdu", updated.Language)
	}
	if updated.Name != "Ahmed" || updated.Location != "Lahore" || updated.Depth != DepthDetailed {
		t.Errorf("partial merge changed unrelated fields: %+v", updated)
	}
	if p.Language != lang.English {
		t.Error("Apply must not mutate the receiver")
	}
}

func TestPreferencesNormalize(t *testing.T) {
	p := UserPreferences{Depth: "ultra", Language: "Spanish"}
	n := p.Normalize()
	if n.Depth != DepthDetailed {
		t.Errorf("unknown depth should normalize to detailed, got %v", n.Depth)
	}
	if n.Language != lang.English {
		t.Errorf("unknown language should normalize to English, got %v", n.Language)
	}
}

// =============================================================================
// CLOCK TESTS
// =============================================================================

func TestClockMonotonic(t *testing.T) {
	var c Clock
	prev := int64(0)
	for i := 0; i < 1000; i++ {
		ts := c.Now()
		if ts <= prev {
			t.Fatalf("clock went backwards: %d after %d", ts, prev)
		}
		prev = ts
	}
}

// =============================================================================
// FOCUS MODE TESTS
// =============================================================================

func TestFocusModeDefault(t *testing.T) {
	if !FocusAll.IsDefault() {
		t.Error("All should be the default focus")
	}
	if FocusQuran.IsDefault() || FocusHadith.IsDefault() || FocusTafsir.IsDefault() {
		t.Error("non-All modes must not be default")
	}
	if !FocusMode("").IsDefault() {
		t.Error("zero value should behave as default")
	}
}
