// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable view components for the muwaffaq TUI.
package components

import (
	"strings"

	"github.com/almuwaffaq/muwaffaq-tui/internal/citation"
	"github.com/almuwaffaq/muwaffaq-tui/internal/ui/styles"
)

// RenderSources renders the per-answer source footer: a deduplicated list
// of every citation the answer carries, in first-occurrence order.
// Returns "" for an answer with no citations.
func RenderSources(content string, theme *styles.Theme) string {
	sources := citation.Extract(content)
	if len(sources) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(theme.SourcesHeader.Render("Sources"))
	sb.WriteString("\n")
	for _, src := range sources {
		sb.WriteString(theme.SourceItem.Render("• " + citation.Label(src)))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// CitationCount returns how many distinct citations the content carries,
// for the compact badge next to the assistant label.
func CitationCount(content string) int {
	return len(citation.Extract(content))
}
