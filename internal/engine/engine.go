// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/almuwaffaq/muwaffaq-tui/internal/llm"
	"github.com/almuwaffaq/muwaffaq-tui/internal/model"
	"github.com/almuwaffaq/muwaffaq-tui/internal/prompt"
	"github.com/almuwaffaq/muwaffaq-tui/internal/store"
)

// =============================================================================
// STATE MACHINE
// =============================================================================

// State is the engine's turn state.
type State int

const (
	// StateIdle means no turn has run yet, or the last turn was discarded.
	StateIdle State = iota
	// StateSending means the user message is committed and the request is
	// on its way, but no fragment has arrived.
	StateSending
	// StateStreaming means at least one fragment has been merged.
	StateStreaming
	// StateSettled means the last turn completed with a full answer.
	StateSettled
	// StateFailed means the last turn ended with a fallback message.
	StateFailed
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateSettled:
		return "settled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrBusy is returned by Send while a turn is already in flight.
var ErrBusy = errors.New("a turn is already in flight")

// ErrEmptyMessage is returned by Send for whitespace-only input with no
// attachment.
var ErrEmptyMessage = errors.New("message is empty")

// ErrEmptyResponse marks a stream that ended cleanly without producing
// any text. The user still gets the fallback message.
var ErrEmptyResponse = errors.New("model returned no content")

// =============================================================================
// ENGINE
// =============================================================================

// Engine coordinates one conversational turn at a time between the
// session store and the streaming collaborator. It is safe for
// concurrent use: Send runs on a worker goroutine while the UI reads
// state and session snapshots.
type Engine struct {
	sessions *store.SessionStore
	prefs    *store.PreferenceStore
	streamer llm.Streamer
	log      *zap.Logger

	mu      sync.Mutex
	state   State
	focus   model.FocusMode
	lastErr error

	// gen numbers turns. Send stamps each turn with the current value;
	// session control bumps it, so a turn abandoned by a switch cannot
	// land its terminal transition on top of a newer turn's state.
	gen uint64

	// updates is a coalescing repaint signal: readers that care about
	// incremental merges drain it and re-render from the store.
	updates chan struct{}
}

// New creates an engine over the given stores and collaborator.
func New(sessions *store.SessionStore, prefs *store.PreferenceStore, streamer llm.Streamer, log *zap.Logger) *Engine {
	return &Engine{
		sessions: sessions,
		prefs:    prefs,
		streamer: streamer,
		log:      log,
		focus:    model.FocusAll,
		updates:  make(chan struct{}, 1),
	}
}

// State returns the current turn state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Busy reports whether a turn is in flight. New sends are rejected and
// the UI disables the input while busy.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateSending || e.state == StateStreaming
}

// Err returns the cause of the last failed turn, or nil.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Focus returns the current focus mode.
func (e *Engine) Focus() model.FocusMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focus
}

// SetFocus sets the focus mode for subsequent sends. Takes effect on the
// next turn; an in-flight turn keeps the mode it was sent with.
func (e *Engine) SetFocus(f model.FocusMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focus = f
}

// Updates returns the repaint signal channel. Delivery is coalesced:
// consecutive merges may collapse into one signal, which is fine because
// renderers read the full session from the store anyway.
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

// =============================================================================
// SESSION CONTROL
// =============================================================================

// NewThread clears the active session so the next send starts a fresh
// one, and resets the collaborator's conversation handle.
func (e *Engine) NewThread() {
	e.sessions.NewDraft()
	e.streamer.Reset()
	e.invalidateTurn()
}

// SwitchSession makes the given session active. Any in-flight stream is
// bound to its old session id and will discard its remaining fragments.
func (e *Engine) SwitchSession(id string) error {
	if err := e.sessions.Select(id); err != nil {
		return err
	}
	e.streamer.Reset()
	e.invalidateTurn()
	return nil
}

// DeleteSession removes the session. Deleting the active one also resets
// the collaborator handle, since the conversation it mirrors is gone.
func (e *Engine) DeleteSession(id string) error {
	wasActive := e.sessions.ActiveID() == id
	if err := e.sessions.Delete(id); err != nil {
		return err
	}
	if wasActive {
		e.streamer.Reset()
		e.invalidateTurn()
	}
	return nil
}

// =============================================================================
// SEND
// =============================================================================

// Send runs one full conversational turn and blocks until it settles,
// fails, or is discarded. Callers run it on a worker goroutine and watch
// Updates for incremental merges.
//
// The user message is committed to the store before any network work, so
// it survives even if the collaborator never answers.
func (e *Engine) Send(ctx context.Context, userText string, media *prompt.Media) error {
	text := strings.TrimSpace(userText)
	if text == "" && media == nil {
		return ErrEmptyMessage
	}

	e.mu.Lock()
	if e.state == StateSending || e.state == StateStreaming {
		e.mu.Unlock()
		return ErrBusy
	}
	e.gen++
	turn := e.gen
	e.state = StateSending
	e.lastErr = nil
	focus := e.focus
	e.mu.Unlock()

	prefs := e.prefs.Get()

	sessionID, _, err := e.sessions.AppendUserMessage(text)
	if err != nil {
		e.setTurnState(turn, StateFailed, err)
		return err
	}
	e.signal()

	parts := prompt.Parts(prompt.Compose(text, prefs, focus), media)

	var buf strings.Builder
	merged := false

	streamErr := e.streamer.SendStreaming(ctx, parts, func(fragment string) error {
		// The stream stays bound to the session it was sent from. If the
		// user has moved on, drop the rest on the floor.
		if e.sessions.ActiveID() != sessionID {
			return llm.ErrAborted
		}

		buf.WriteString(fragment)

		// First fragment creates the assistant message; every later one
		// rewrites it with the full buffer. Readers never see a gap or
		// an out-of-order splice.
		var mergeErr error
		if !merged {
			_, mergeErr = e.sessions.AppendAssistantMessage(sessionID, buf.String())
			merged = true
		} else {
			mergeErr = e.sessions.ReplaceLastContent(sessionID, buf.String())
		}
		if mergeErr != nil {
			return mergeErr
		}

		e.setTurnState(turn, StateStreaming, nil)
		e.signal()
		return nil
	})

	switch {
	case streamErr == nil && merged:
		e.log.Debug("turn settled",
			zap.String("session", sessionID),
			zap.Int("answer_len", buf.Len()))
		e.setTurnState(turn, StateSettled, nil)
		return nil

	case streamErr == nil && !merged:
		// Clean end of stream with nothing in it. Treat like a failure
		// so the user is not left staring at their own question.
		return e.fail(turn, sessionID, prefs.Language.Fallback(), merged, ErrEmptyResponse)

	case errors.Is(streamErr, llm.ErrAborted), errors.Is(streamErr, context.Canceled):
		// Discarded, not failed: no fallback, no error surfaced. The
		// partial answer (if any) stays in the old session as-is.
		e.log.Debug("turn discarded", zap.String("session", sessionID))
		e.setTurnState(turn, StateIdle, nil)
		return nil

	default:
		return e.fail(turn, sessionID, prefs.Language.Fallback(), merged, streamErr)
	}
}

// fail settles a broken turn: any partial answer is preserved, and a
// single localized fallback message is appended after it so the session
// records that the turn ended abnormally. A turn invalidated by a
// session switch is dropped silently instead: appending an apology to
// an abandoned session, or resetting a collaborator handle a newer turn
// is using, would corrupt the turn that replaced it.
func (e *Engine) fail(turn uint64, sessionID, apology string, merged bool, cause error) error {
	if e.turnStale(turn) {
		e.log.Debug("stale turn dropped", zap.String("session", sessionID), zap.Error(cause))
		return nil
	}

	e.log.Warn("turn failed",
		zap.String("session", sessionID),
		zap.Bool("partial_answer", merged),
		zap.Error(cause))

	if _, err := e.sessions.AppendAssistantMessage(sessionID, apology); err != nil {
		e.log.Error("failed to append fallback message", zap.Error(err))
	}

	// The remote conversation handle is in an unknown state after a
	// broken stream; drop it so the next turn starts clean.
	e.streamer.Reset()

	e.setTurnState(turn, StateFailed, cause)
	e.signal()
	return cause
}

// invalidateTurn returns the engine to Idle and retires any turn still
// in flight. The retired turn's terminal transition becomes a no-op.
func (e *Engine) invalidateTurn() {
	e.mu.Lock()
	e.gen++
	e.state = StateIdle
	e.lastErr = nil
	e.mu.Unlock()
}

// setTurnState applies a transition on behalf of the given turn, unless
// the turn has been retired in the meantime.
func (e *Engine) setTurnState(turn uint64, s State, err error) {
	e.mu.Lock()
	if turn == e.gen {
		e.state = s
		e.lastErr = err
	}
	e.mu.Unlock()
}

func (e *Engine) turnStale(turn uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return turn != e.gen
}

// signal pokes the repaint channel without blocking.
func (e *Engine) signal() {
	select {
	case e.updates <- struct{}{}:
	default:
	}
}
