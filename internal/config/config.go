// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete muwaffaq configuration.
type Config struct {
	Version string `toml:"version"`

	// Gemini collaborator configuration
	Gemini GeminiConfig `toml:"gemini"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// Log configuration
	Log LogConfig `toml:"log"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// GeminiConfig contains the model collaborator configuration.
type GeminiConfig struct {
	// APIKey is the Gemini API key. Prefer the GEMINI_API_KEY environment
	// variable over storing the key in the config file.
	APIKey string `toml:"api_key"`
	// Model is the Gemini model identifier
	Model string `toml:"model"`
	// Temperature is the sampling temperature. Kept low: answers should
	// stay close to the cited sources.
	Temperature float64 `toml:"temperature"`
	// RequestsPerSecond caps outbound request rate (0 = library default)
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// StorageConfig contains durable storage configuration.
type StorageConfig struct {
	// DataDir is the directory holding the database and logs
	// (empty = ~/.muwaffaq)
	DataDir string `toml:"data_dir"`
	// DatabaseFile is the SQLite filename inside DataDir
	DatabaseFile string `toml:"database_file"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is the minimum level: "debug", "info", "warn", "error"
	Level string `toml:"level"`
	// File is the log filename inside DataDir. The terminal belongs to
	// the UI, so logs always go to a file.
	File string `toml:"file"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme selects the markdown rendering style: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// CompactMode hides timestamps and tightens spacing
	CompactMode bool `toml:"compact_mode"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Gemini: GeminiConfig{
			APIKey:            "",
			Model:             "gemini-3-pro-preview",
			Temperature:       0.1,
			RequestsPerSecond: 2,
		},

		Storage: StorageConfig{
			DataDir:      "",
			DatabaseFile: "muwaffaq.db",
		},

		Log: LogConfig{
			Level: "info",
			File:  "muwaffaq.log",
		},

		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the muwaffaq configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".muwaffaq"), nil
}

// ConfigPath returns the path to the TOML config file, honoring the
// MUWAFFAQ_CONFIG override.
func ConfigPath() (string, error) {
	if p := os.Getenv("MUWAFFAQ_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DataDir resolves the effective data directory, falling back to the
// config directory when unset.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	return ConfigDir()
}

// DatabasePath resolves the SQLite database path.
func (c *Config) DatabasePath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.DatabaseFile), nil
}

// LogPath resolves the log file path.
func (c *Config) LogPath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Log.File), nil
}

// ensureSecurePermissions checks and fixes permissions on the config file.
// SECURITY: Config files should be 0600 because they may hold the API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to
// defaults when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML file: %w", err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides. The API key
// from the environment always wins over the file.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("MUWAFFAQ_MODEL"); v != "" {
		c.Gemini.Model = v
	}
	if v := os.Getenv("MUWAFFAQ_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("MUWAFFAQ_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("MUWAFFAQ_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Gemini.Temperature = f
		}
	}
}

// SetDefaults fills in zero values that a partial config file left out.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Gemini.Model == "" {
		c.Gemini.Model = def.Gemini.Model
	}
	if c.Gemini.RequestsPerSecond == 0 {
		c.Gemini.RequestsPerSecond = def.Gemini.RequestsPerSecond
	}
	if c.Storage.DatabaseFile == "" {
		c.Storage.DatabaseFile = def.Storage.DatabaseFile
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = def.Log.File
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# muwaffaq configuration file")
	fmt.Fprintln(file, "# Generated by muwaffaq - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "gemini.temperature",
			Message: fmt.Sprintf("must be between 0 and 2, got %g", c.Gemini.Temperature),
		})
	}

	if c.Gemini.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "gemini.requests_per_second",
			Message: "cannot be negative",
		})
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error; got %q", c.Log.Level),
		})
	}

	switch c.UI.Theme {
	case "", "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be one of dark, light, auto; got %q", c.UI.Theme),
		})
	}

	if strings.ContainsAny(c.Storage.DatabaseFile, "/\\") {
		errs = append(errs, ValidationError{
			Field:   "storage.database_file",
			Message: "must be a bare filename; set storage.data_dir to move it",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
