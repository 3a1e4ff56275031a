// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation extracts bracketed source references from assistant text.
//
// Citations are derived, never stored: they are recomputed from message
// content on demand, so the citation list always reflects current content.
package citation

import (
	"regexp"
	"strings"
)

// tokenPattern matches one citation token: a parenthesized run beginning
// with a recognized source-type marker. Markers are case-sensitive; both
// apostrophe forms of Qur'an are accepted because the model emits U+2019.
var tokenPattern = regexp.MustCompile(`\((?:Qur['’]an|Sahih|Sunan|Jami|Tafsir)[^)]+\)`)

// Line is one logical line of assistant text after extraction.
type Line struct {
	// Text is the prose with citation tokens stripped and trimmed.
	Text string
	// Citations are the tokens found on the line, in left-to-right order,
	// each including its surrounding parentheses.
	Citations []string
}

// ExtractLine finds all citation tokens in a single line and returns the
// cleaned text alongside the ordered tokens.
func ExtractLine(line string) Line {
	tokens := tokenPattern.FindAllString(line, -1)
	clean := strings.TrimSpace(tokenPattern.ReplaceAllString(line, ""))
	return Line{Text: clean, Citations: tokens}
}

// ExtractLines splits content on newlines, discards blank lines, and
// extracts citations per line for inline rendering.
func ExtractLines(content string) []Line {
	var lines []Line
	for _, raw := range strings.Split(content, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		lines = append(lines, ExtractLine(raw))
	}
	return lines
}

// Extract returns the de-duplicated union of all citation tokens in the
// content, preserving first-occurrence order. De-duplication is exact
// string equality of the full parenthesized token.
func Extract(content string) []string {
	all := tokenPattern.FindAllString(content, -1)
	seen := make(map[string]struct{}, len(all))
	var out []string
	for _, tok := range all {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// Strip removes all citation tokens from the content, trimming each line.
// Stripping is idempotent: re-extracting from stripped text yields nothing.
func Strip(content string) string {
	lines := ExtractLines(content)
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, l.Text)
	}
	return strings.Join(parts, "\n")
}

// Label returns the token without its surrounding parentheses, for badges.
func Label(token string) string {
	return strings.TrimSuffix(strings.TrimPrefix(token, "("), ")")
}
