// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	"github.com/almuwaffaq/muwaffaq-tui/internal/lang"
)

func TestPlainTextRTLAlignment(t *testing.T) {
	m := newTestModel(t)
	m.viewport.Width = 40

	got := m.renderPlainText("سوال", true)
	if !strings.Contains(got, rlm) {
		t.Error("right-to-left text should carry a direction mark")
	}
	if !strings.HasPrefix(got, " ") {
		t.Errorf("right-to-left text should start from the right margin, got %q", got)
	}

	ltr := m.renderPlainText("a question", false)
	if ltr != "a question\n" {
		t.Errorf("left-to-right text must pass through unchanged, got %q", ltr)
	}
}

func TestHeroCarriesDirectionMarkForRTL(t *testing.T) {
	m := newTestModel(t)
	m.viewport.Width = 80
	m.viewport.Height = 20

	m = runCommand(t, m, "/lang arabic")
	if !strings.Contains(m.renderHero(), rlm) {
		t.Error("Arabic hero should carry a direction mark")
	}

	m = runCommand(t, m, "/lang english")
	if strings.Contains(m.renderHero(), rlm) {
		t.Error("English hero should not carry a direction mark")
	}
}

func TestStatusBarShowsNativeLanguageName(t *testing.T) {
	m := newTestModel(t)

	m = runCommand(t, m, "/lang urdu")
	m.statusMsg = ""
	if bar := m.renderStatusBar(); !strings.Contains(bar, lang.Urdu.Native()) {
		t.Errorf("status bar = %q, want the native name %q", bar, lang.Urdu.Native())
	}
}
