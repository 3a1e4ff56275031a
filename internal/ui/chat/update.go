// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/almuwaffaq/muwaffaq-tui/internal/engine"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case RepaintMsg:
		m.updateViewport()
		m.viewport.GotoBottom()
		// Keep watching: the channel carries signals for every future turn.
		return m, watchUpdates(m.engine)

	case TurnDoneMsg:
		return m.handleTurnDone(msg)

	case StatusMsg:
		m.statusMsg = msg.Text
		m.statusIsErr = msg.IsError
		return m, nil

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	// Unhandled messages still reach the input and viewport (blink,
	// mouse-wheel scrolling).
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// Layout: header + viewport (dynamic) + input line + status bar.
	const reservedHeight = 5
	vpHeight := m.height - reservedHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight

	inputWidth := m.width - 6
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.theme.SetSize(m.width, m.height)
	m.rebuildRenderer()
	m.updateViewport()

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleTurnDone(msg TurnDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.cancelMgr.clear()
	m.updateViewport()
	m.viewport.GotoBottom()
	m.input.Focus()

	switch {
	case msg.Err == nil:
		m.statusMsg = ""
		m.statusIsErr = false
	case errors.Is(msg.Err, engine.ErrBusy):
		m.statusMsg = "Still answering the previous question."
		m.statusIsErr = true
	default:
		m.statusMsg = "The answer could not be completed."
		m.statusIsErr = true
	}

	return m, textinput.Blink
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Emergency exit always works.
	if key == "ctrl+q" {
		return m, tea.Quit
	}

	if m.drawer.Visible {
		return m.handleDrawerKey(key)
	}

	switch key {
	case "ctrl+c":
		if m.busy {
			// Stop the in-flight answer; the engine discards the rest.
			m.cancelMgr.fire()
			m.statusMsg = "Stopped."
			m.statusIsErr = false
			return m, nil
		}
		return m, tea.Quit

	case "ctrl+n":
		m.engine.NewThread()
		m.updateViewport()
		m.statusMsg = "New conversation."
		m.statusIsErr = false
		return m, nil

	case "ctrl+h":
		m.drawer.Visible = true
		m.drawer.Selected = 0
		return m, nil

	case "ctrl+o":
		return m.cycleFocus()

	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil

	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		if strings.HasPrefix(text, "/") {
			m.input.Reset()
			return m.handleCommand(text)
		}
		return m.submit(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleDrawerKey(key string) (tea.Model, tea.Cmd) {
	list := m.sessions.List()

	switch key {
	case "esc", "ctrl+h", "q":
		m.drawer.Visible = false
		return m, nil

	case "up", "k":
		m.drawer.Move(-1, len(list))
		return m, nil

	case "down", "j":
		m.drawer.Move(1, len(list))
		return m, nil

	case "enter":
		if m.drawer.Selected < len(list) {
			if err := m.engine.SwitchSession(list[m.drawer.Selected].ID); err != nil {
				m.statusMsg = "Could not open that conversation."
				m.statusIsErr = true
			}
		}
		m.drawer.Visible = false
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, nil

	case "d":
		if m.drawer.Selected < len(list) {
			if err := m.engine.DeleteSession(list[m.drawer.Selected].ID); err != nil {
				m.statusMsg = "Could not delete that conversation."
				m.statusIsErr = true
			} else {
				m.drawer.Move(0, len(list)-1)
			}
			m.updateViewport()
		}
		return m, nil
	}

	return m, nil
}

// =============================================================================
// SUBMISSION
// =============================================================================

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	// Gate on both views of "in flight": the engine's state and this
	// model's own worker flag. The flag stays set from submit until
	// TurnDoneMsg, so a second worker goroutine is never spawned even
	// while the engine is momentarily idle between session switches.
	if m.busy || m.engine.Busy() {
		m.statusMsg = "Still answering the previous question."
		m.statusIsErr = true
		return m, nil
	}

	media := m.attachment
	m.attachment = nil
	m.attachmentName = ""

	m.input.Reset()
	m.busy = true
	m.statusMsg = ""
	m.statusIsErr = false

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelMgr.set(cancel)

	// The engine appends the user message before any network work, but
	// that happens on the worker goroutine; repaint arrives via Updates.
	return m, tea.Batch(
		sendTurn(ctx, m.engine, text, media),
		m.spinner.Tick,
	)
}
