// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/almuwaffaq/muwaffaq-tui/internal/engine"
	"github.com/almuwaffaq/muwaffaq-tui/internal/prompt"
	"github.com/almuwaffaq/muwaffaq-tui/internal/store"
	"github.com/almuwaffaq/muwaffaq-tui/internal/ui/components"
	"github.com/almuwaffaq/muwaffaq-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the conversation view.
type Model struct {
	// Collaborators
	engine   *engine.Engine
	sessions *store.SessionStore
	prefs    *store.PreferenceStore
	log      *zap.Logger

	// Styling
	theme    *styles.Theme
	renderer *glamour.TermRenderer
	compact  bool

	// Dimensions
	width  int
	height int

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	drawer   components.Drawer

	// Turn state
	busy      bool
	cancelMgr *cancelManager // Pointer to avoid copying the mutex on updates

	// Pending attachment for the next send
	attachment     *prompt.Media
	attachmentName string

	// Status bar
	statusMsg   string
	statusIsErr bool
}

// New creates the conversation view.
func New(eng *engine.Engine, sessions *store.SessionStore, prefs *store.PreferenceStore, theme *styles.Theme, compact bool, log *zap.Logger) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	return Model{
		engine:    eng,
		sessions:  sessions,
		prefs:     prefs,
		log:       log,
		theme:     theme,
		compact:   compact,
		viewport:  vp,
		input:     ti,
		spinner:   sp,
		cancelMgr: newCancelManager(),
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the input blink and the engine update watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, watchUpdates(m.engine))
}

// View renders the conversation view.
func (m Model) View() string {
	return m.render()
}

// rebuildRenderer recreates the markdown renderer for the current width.
func (m *Model) rebuildRenderer() {
	wrap := m.width - 4
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme.GlamourStyle()),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.log.Warn("markdown renderer unavailable, falling back to plain text", zap.Error(err))
		m.renderer = nil
		return
	}
	m.renderer = r
}
