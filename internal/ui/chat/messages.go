// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/almuwaffaq/muwaffaq-tui/internal/engine"
	"github.com/almuwaffaq/muwaffaq-tui/internal/prompt"
)

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// RepaintMsg signals that the engine merged new content into the active
// session and the viewport should re-render from the store.
type RepaintMsg struct{}

// TurnDoneMsg signals that an in-flight turn settled, failed, or was
// discarded. Err carries the failure cause, nil otherwise.
type TurnDoneMsg struct {
	Err error
}

// StatusMsg sets a transient status-bar message.
type StatusMsg struct {
	Text    string
	IsError bool
}

// =============================================================================
// COMMANDS
// =============================================================================

// watchUpdates blocks on the engine's repaint channel and converts each
// signal into a RepaintMsg. Re-issued after every delivery.
func watchUpdates(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		<-eng.Updates()
		return RepaintMsg{}
	}
}

// sendTurn runs one full turn on a worker goroutine.
func sendTurn(ctx context.Context, eng *engine.Engine, text string, media *prompt.Media) tea.Cmd {
	return func() tea.Msg {
		return TurnDoneMsg{Err: eng.Send(ctx, text, media)}
	}
}

// =============================================================================
// CANCEL MANAGER
// =============================================================================

// cancelManager holds the in-flight turn's cancel func behind a mutex.
// A pointer field on the model so Bubble Tea's value copies share it.
type cancelManager struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func newCancelManager() *cancelManager {
	return &cancelManager{}
}

func (c *cancelManager) set(cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel = cancel
}

// fire cancels the in-flight turn, if any.
func (c *cancelManager) fire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *cancelManager) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel = nil
}
