// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/almuwaffaq/muwaffaq-tui/internal/config"
	"github.com/almuwaffaq/muwaffaq-tui/internal/engine"
	"github.com/almuwaffaq/muwaffaq-tui/internal/llm"
	"github.com/almuwaffaq/muwaffaq-tui/internal/logging"
	"github.com/almuwaffaq/muwaffaq-tui/internal/prompt"
	"github.com/almuwaffaq/muwaffaq-tui/internal/store"
	"github.com/almuwaffaq/muwaffaq-tui/internal/ui/chat"
	"github.com/almuwaffaq/muwaffaq-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var flagDebug bool

var rootCmd = &cobra.Command{
	Use:   "muwaffaq",
	Short: "A terminal client for cited Islamic knowledge",
	Long: `muwaffaq streams answers grounded in the Qur'an, Sahih hadith
collections, and classical tafsir, with inline citations, into your
terminal. Conversations and preferences persist locally.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(sessionsCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("muwaffaq %s (%s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

// =============================================================================
// WIRING
// =============================================================================

// app bundles everything a command needs after startup.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	kv       *store.KV
	sessions *store.SessionStore
	prefs    *store.PreferenceStore
}

// openApp loads config, logging, and the stores. Close the returned app
// when done.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if flagDebug {
		level = "debug"
	}
	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(logPath, level)
	if err != nil {
		return nil, err
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	kv, err := store.OpenKV(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dbPath, err)
	}

	sessions, err := store.NewSessionStore(kv, log)
	if err != nil {
		kv.Close()
		return nil, err
	}
	prefs, err := store.NewPreferenceStore(kv, log)
	if err != nil {
		kv.Close()
		return nil, err
	}

	return &app{cfg: cfg, log: log, kv: kv, sessions: sessions, prefs: prefs}, nil
}

func (a *app) Close() {
	a.log.Sync()
	a.kv.Close()
}

// =============================================================================
// TUI
// =============================================================================

func runTUI() error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()

	gemini, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
		APIKey:            a.cfg.Gemini.APIKey,
		Model:             a.cfg.Gemini.Model,
		Temperature:       a.cfg.Gemini.Temperature,
		System:            prompt.SystemInstruction,
		RequestsPerSecond: a.cfg.Gemini.RequestsPerSecond,
	})
	if err != nil {
		if err == llm.ErrNoAPIKey {
			return fmt.Errorf("no API key configured: set GEMINI_API_KEY or gemini.api_key in the config file")
		}
		return err
	}

	eng := engine.New(a.sessions, a.prefs, gemini, a.log)
	theme := styles.New(a.cfg.UI.Theme)
	view := chat.New(eng, a.sessions, a.prefs, theme, a.cfg.UI.CompactMode, a.log)

	// Watch the config file so edits made while the TUI runs are noticed.
	// Client wiring is fixed at startup; a changed model takes effect on
	// the next launch, which the log makes visible.
	if path, err := config.ConfigPath(); err == nil {
		if w, werr := config.Watch(path, a.log, func(next *config.Config) {
			if next.Gemini.Model != a.cfg.Gemini.Model {
				a.log.Info("model changed on disk, restart to apply",
					zap.String("current", a.cfg.Gemini.Model),
					zap.String("new", next.Gemini.Model))
			}
		}); werr == nil {
			defer w.Close()
		}
	}

	a.log.Info("starting",
		zap.String("version", Version),
		zap.String("model", a.cfg.Gemini.Model))

	p := tea.NewProgram(view, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui error: %w", err)
	}
	return nil
}
