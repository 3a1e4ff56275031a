// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Gemini.Model == "" {
		t.Error("default model must be set")
	}
	if cfg.Gemini.Temperature != 0.1 {
		t.Errorf("temperature = %g, want 0.1", cfg.Gemini.Temperature)
	}
}

func TestLoadFromPathPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[gemini]
model = "gemini-2.5-flash"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("model = %q", cfg.Gemini.Model)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("level = %q", cfg.Log.Level)
	}
	// Unspecified fields keep their defaults.
	if cfg.Storage.DatabaseFile != "muwaffaq.db" {
		t.Errorf("database_file = %q", cfg.Storage.DatabaseFile)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
}

func TestLoadFixesInsecurePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`version = "1.0.0"`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("MUWAFFAQ_MODEL", "gemini-env")
	t.Setenv("MUWAFFAQ_TEMPERATURE", "0.5")

	cfg := Default()
	cfg.Gemini.APIKey = "file-key"
	cfg.ApplyEnvOverrides()

	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("api key = %q, env must win over file", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "gemini-env" {
		t.Errorf("model = %q", cfg.Gemini.Model)
	}
	if cfg.Gemini.Temperature != 0.5 {
		t.Errorf("temperature = %g", cfg.Gemini.Temperature)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"temperature too high", func(c *Config) { c.Gemini.Temperature = 3 }},
		{"temperature negative", func(c *Config) { c.Gemini.Temperature = -0.1 }},
		{"negative rate", func(c *Config) { c.Gemini.RequestsPerSecond = -1 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }},
		{"database path traversal", func(c *Config) { c.Storage.DatabaseFile = "../else.db" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Gemini.Model = "gemini-custom"
	cfg.UI.CompactMode = true

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Gemini.Model != "gemini-custom" || !loaded.UI.CompactMode {
		t.Errorf("round trip drifted: %+v", loaded)
	}
}

func TestDataDirFallsBackToConfigDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.DataDir = "/tmp/muwaffaq-data"

	dir, err := cfg.DataDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/muwaffaq-data" {
		t.Errorf("dir = %q", dir)
	}

	db, err := cfg.DatabasePath()
	if err != nil {
		t.Fatal(err)
	}
	if db != "/tmp/muwaffaq-data/muwaffaq.db" {
		t.Errorf("db path = %q", db)
	}
}
