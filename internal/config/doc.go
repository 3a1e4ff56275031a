// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// muwaffaq.
//
// Configuration lives in a single TOML file with sensible defaults,
// environment variable overrides, and validation.
//
// Locations (in order of precedence):
//   - MUWAFFAQ_CONFIG environment variable
//   - ~/.muwaffaq/config.toml
//   - Built-in defaults
package config
