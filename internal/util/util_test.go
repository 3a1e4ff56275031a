// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "out.json")

	if err := AtomicWriteFile(path, []byte(`{"ok":true}`), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("content = %q", data)
	}

	// Overwrite must replace, not append
	if err := AtomicWriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "v2" {
		t.Errorf("after overwrite content = %q", data)
	}

	// No temp files left behind
	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"this is a longer string", 10, "this is..."},
		{"", 5, ""},
		{"abc", 0, ""},
		{"abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		got := TruncateRunes(tt.in, tt.maxLen)
		if got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestTruncateRunesUnicode(t *testing.T) {
	in := "السلام عليكم ورحمة الله وبركاته"
	got := TruncateRunes(in, 10)
	if len([]rune(got)) != 10 {
		t.Errorf("truncated length = %d runes, want 10", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadRight("abcdef", 3); got != "abcdef" {
		t.Errorf("PadRight should not truncate, got %q", got)
	}
}

func TestCollapseLines(t *testing.T) {
	if got := CollapseLines("a\nb\r\nc"); got != "a b c" {
		t.Errorf("CollapseLines = %q", got)
	}
}
