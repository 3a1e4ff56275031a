// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the muwaffaq TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style
	Timestamp      lipgloss.Style

	// ==========================================================================
	// CITATION STYLES
	// ==========================================================================

	CitationBadge lipgloss.Style
	SourcesHeader lipgloss.Style
	SourceItem    lipgloss.Style

	// ==========================================================================
	// EMPTY STATE / HERO
	// ==========================================================================

	Hero    lipgloss.Style
	HeroSub lipgloss.Style
	HeroTag lipgloss.Style

	// ==========================================================================
	// SESSION DRAWER
	// ==========================================================================

	DrawerTitle    lipgloss.Style
	DrawerItem     lipgloss.Style
	DrawerSelected lipgloss.Style
	DrawerMeta     lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS
	// ==========================================================================

	InputPrompt lipgloss.Style
	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
	FocusBadge  lipgloss.Style
}

// Palette anchored on the web client's emerald/amber scheme.
const (
	colorEmerald = lipgloss.Color("35")  // primary accent
	colorAmber   = lipgloss.Color("179") // citations
	colorMuted   = lipgloss.Color("243")
	colorUser    = lipgloss.Color("39")
	colorError   = lipgloss.Color("203")
)

// New creates a theme for the given UI theme name ("dark", "light", "auto").
func New(name string) *Theme {
	isDark := name != "light"
	if name == "auto" || name == "" {
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}

	t.Header = lipgloss.NewStyle().Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(colorEmerald)
	t.HeaderMeta = lipgloss.NewStyle().Foreground(colorMuted)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(colorUser)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(colorEmerald)
	t.SystemLabel = lipgloss.NewStyle().Bold(true).Foreground(colorMuted)
	t.Timestamp = lipgloss.NewStyle().Foreground(colorMuted)

	t.CitationBadge = lipgloss.NewStyle().Foreground(colorAmber)
	t.SourcesHeader = lipgloss.NewStyle().Bold(true).Foreground(colorAmber)
	t.SourceItem = lipgloss.NewStyle().Foreground(colorAmber).PaddingLeft(2)

	t.Hero = lipgloss.NewStyle().Bold(true).Foreground(colorEmerald).Align(lipgloss.Center)
	t.HeroSub = lipgloss.NewStyle().Foreground(colorMuted).Align(lipgloss.Center)
	t.HeroTag = lipgloss.NewStyle().
		Foreground(colorEmerald).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 1)

	t.DrawerTitle = lipgloss.NewStyle().Bold(true).Foreground(colorEmerald).Padding(0, 1)
	t.DrawerItem = lipgloss.NewStyle().Padding(0, 1)
	t.DrawerSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(colorEmerald).
		Padding(0, 1)
	t.DrawerMeta = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().Bold(true).Foreground(colorEmerald)
	t.StatusBar = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
	t.StatusError = lipgloss.NewStyle().Foreground(colorError).Padding(0, 1)
	t.FocusBadge = lipgloss.NewStyle().Foreground(colorAmber).Bold(true)

	return t
}

// SetSize records the terminal dimensions for layout decisions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GlamourStyle maps the theme to a glamour standard style name.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}
