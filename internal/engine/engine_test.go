// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/almuwaffaq/muwaffaq-tui/internal/lang"
	"github.com/almuwaffaq/muwaffaq-tui/internal/llm"
	"github.com/almuwaffaq/muwaffaq-tui/internal/model"
	"github.com/almuwaffaq/muwaffaq-tui/internal/store"
)

type fixture struct {
	engine   *Engine
	sessions *store.SessionStore
	prefs    *store.PreferenceStore
	streamer *llm.ScriptedStreamer
}

func newFixture(t *testing.T, streamer *llm.ScriptedStreamer) *fixture {
	t.Helper()
	f := newFixtureWith(t, streamer)
	f.streamer = streamer
	return f
}

func newFixtureWith(t *testing.T, streamer llm.Streamer) *fixture {
	t.Helper()
	kv, err := store.OpenKV(filepath.Join(t.TempDir(), "muwaffaq.db"))
	if err != nil {
		t.Fatalf("OpenKV failed: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	sessions, err := store.NewSessionStore(kv, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionStore failed: %v", err)
	}
	prefs, err := store.NewPreferenceStore(kv, zap.NewNop())
	if err != nil {
		t.Fatalf("NewPreferenceStore failed: %v", err)
	}

	return &fixture{
		engine:   New(sessions, prefs, streamer, zap.NewNop()),
		sessions: sessions,
		prefs:    prefs,
	}
}

// =============================================================================
// HAPPY PATH
// =============================================================================

func TestSendSettlesWithConcatenatedAnswer(t *testing.T) {
	fragments := []string{"Fasting ", "is obligatory ", "(Qur'an, Al-Baqarah 2:183)."}
	f := newFixture(t, &llm.ScriptedStreamer{Fragments: fragments})

	if err := f.engine.Send(context.Background(), "Is fasting obligatory?", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if f.engine.State() != StateSettled {
		t.Errorf("state = %v, want settled", f.engine.State())
	}

	sess := f.sessions.Active()
	if sess == nil {
		t.Fatal("no active session after send")
	}
	if sess.MessageCount() != 2 {
		t.Fatalf("messages = %d, want 2 (user + assistant)", sess.MessageCount())
	}
	if sess.Messages[0].Role != model.RoleUser {
		t.Error("first message should be the user's")
	}

	answer := sess.Messages[1]
	if answer.Role != model.RoleAssistant {
		t.Error("second message should be the assistant's")
	}
	if want := strings.Join(fragments, ""); answer.Content != want {
		t.Errorf("answer = %q, want %q", answer.Content, want)
	}
}

func TestSendOneAssistantMessagePerTurn(t *testing.T) {
	f := newFixture(t, &llm.ScriptedStreamer{
		Fragments: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
	})

	if err := f.engine.Send(context.Background(), "q", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	sess := f.sessions.Active()
	if sess.MessageCount() != 2 {
		t.Errorf("eight fragments must merge into one message, got %d messages", sess.MessageCount())
	}
	if sess.Messages[1].Content != "abcdefgh" {
		t.Errorf("answer = %q", sess.Messages[1].Content)
	}
}

func TestSendComposesPromptWithControlTags(t *testing.T) {
	f := newFixture(t, &llm.ScriptedStreamer{Fragments: []string{"ok"}})

	l := lang.Urdu
	d := model.DepthScholarly
	if _, err := f.prefs.Update(model.PreferencePatch{Language: &l, Depth: &d}); err != nil {
		t.Fatal(err)
	}
	f.engine.SetFocus(model.FocusHadith)

	if err := f.engine.Send(context.Background(), "What about intentions?", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	sends := f.streamer.Sends()
	if len(sends) != 1 || len(sends[0]) != 1 {
		t.Fatalf("sends = %+v", sends)
	}
	want := "[Language: Urdu]\n[Depth: scholarly]\n[Focus: Hadith] What about intentions?"
	if sends[0][0].Text != want {
		t.Errorf("prompt = %q, want %q", sends[0][0].Text, want)
	}

	// The stored user message carries only the raw text.
	sess := f.sessions.Active()
	if sess.Messages[0].Content != "What about intentions?" {
		t.Errorf("stored user text = %q", sess.Messages[0].Content)
	}
}

func TestSendRejectsEmptyInput(t *testing.T) {
	f := newFixture(t, &llm.ScriptedStreamer{Fragments: []string{"ok"}})

	if err := f.engine.Send(context.Background(), "   \n\t", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("err = %v, want ErrEmptyMessage", err)
	}
	if f.sessions.Count() != 0 {
		t.Error("empty input must not create a session")
	}
}

// =============================================================================
// FAILURE
// =============================================================================

func TestFailureBeforeFirstFragment(t *testing.T) {
	f := newFixture(t, &llm.ScriptedStreamer{Err: errors.New("quota exceeded")})

	err := f.engine.Send(context.Background(), "q", nil)
	if err == nil || err.Error() != "quota exceeded" {
		t.Fatalf("err = %v", err)
	}
	if f.engine.State() != StateFailed {
		t.Errorf("state = %v, want failed", f.engine.State())
	}

	// User message survives, followed only by the fallback apology.
	sess := f.sessions.Active()
	if sess.MessageCount() != 2 {
		t.Fatalf("messages = %d, want 2", sess.MessageCount())
	}
	if sess.Messages[1].Content != lang.English.Fallback() {
		t.Errorf("fallback = %q", sess.Messages[1].Content)
	}
	if f.streamer.Resets() != 1 {
		t.Errorf("resets = %d, want 1 after a broken stream", f.streamer.Resets())
	}
}

func TestFailureMidStreamPreservesPartial(t *testing.T) {
	f := newFixture(t, &llm.ScriptedStreamer{
		Fragments: []string{"The answer ", "begins here"},
		Err:       errors.New("connection reset"),
		FailAfter: 2,
	})

	if err := f.engine.Send(context.Background(), "q", nil); err == nil {
		t.Fatal("expected failure")
	}

	sess := f.sessions.Active()
	if sess.MessageCount() != 3 {
		t.Fatalf("messages = %d, want 3 (user + partial + fallback)", sess.MessageCount())
	}
	if sess.Messages[1].Content != "The answer begins here" {
		t.Errorf("partial answer lost: %q", sess.Messages[1].Content)
	}
	if sess.Messages[2].Content != lang.English.Fallback() {
		t.Errorf("fallback = %q", sess.Messages[2].Content)
	}
}

func TestFallbackIsLocalized(t *testing.T) {
	f := newFixture(t, &llm.ScriptedStreamer{Err: errors.New("boom")})

	l := lang.Urdu
	if _, err := f.prefs.Update(model.PreferencePatch{Language: &l}); err != nil {
		t.Fatal(err)
	}

	f.engine.Send(context.Background(), "q", nil)

	sess := f.sessions.Active()
	if got := sess.Messages[1].Content; got != lang.Urdu.Fallback() {
		t.Errorf("fallback = %q, want the Urdu apology", got)
	}
}

func TestEmptyStreamFallsBack(t *testing.T) {
	f := newFixture(t, &llm.ScriptedStreamer{})

	err := f.engine.Send(context.Background(), "q", nil)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}

	sess := f.sessions.Active()
	if sess.MessageCount() != 2 || sess.Messages[1].Content != lang.English.Fallback() {
		t.Errorf("empty stream should yield the fallback, got %+v", sess.Messages)
	}
}

// =============================================================================
// SESSION BINDING
// =============================================================================

func TestMidStreamSwitchDiscardsRemainder(t *testing.T) {
	streamer := &llm.ScriptedStreamer{
		Fragments: []string{"part one ", "part two ", "never merged"},
	}
	f := newFixture(t, streamer)

	// Seed a second session to switch into.
	if err := f.engine.Send(context.Background(), "earlier question", nil); err != nil {
		t.Fatal(err)
	}
	otherID := f.sessions.ActiveID()
	f.engine.NewThread()

	streamer.OnFragment = func(i int) {
		if i == 1 {
			if err := f.engine.SwitchSession(otherID); err != nil {
				t.Errorf("switch failed: %v", err)
			}
		}
	}

	if err := f.engine.Send(context.Background(), "new question", nil); err != nil {
		t.Fatalf("discarded turn must not error: %v", err)
	}
	if f.engine.State() != StateIdle {
		t.Errorf("state = %v, want idle after discard", f.engine.State())
	}

	// The bound session keeps what was merged before the switch, no more,
	// and no fallback.
	var bound *model.ChatSession
	for _, s := range f.sessions.List() {
		if s.ID != otherID {
			bound = s
		}
	}
	if bound == nil {
		t.Fatal("bound session missing")
	}
	if bound.MessageCount() != 2 {
		t.Fatalf("bound session messages = %d, want 2", bound.MessageCount())
	}
	if bound.Messages[1].Content != "part one part two " {
		t.Errorf("bound answer = %q", bound.Messages[1].Content)
	}

	// The switched-to session is untouched.
	other, _ := f.sessions.Get(otherID)
	if other.MessageCount() != 2 {
		t.Errorf("switched-to session gained messages: %d", other.MessageCount())
	}
}

func TestMidStreamDeleteDiscardsRemainder(t *testing.T) {
	streamer := &llm.ScriptedStreamer{
		Fragments: []string{"one", "two", "three"},
	}
	f := newFixture(t, streamer)

	streamer.OnFragment = func(i int) {
		if i == 0 {
			if err := f.engine.DeleteSession(f.sessions.ActiveID()); err != nil {
				t.Errorf("delete failed: %v", err)
			}
		}
	}

	if err := f.engine.Send(context.Background(), "q", nil); err != nil {
		t.Fatalf("discarded turn must not error: %v", err)
	}
	if f.sessions.Count() != 0 {
		t.Errorf("sessions = %d, want 0", f.sessions.Count())
	}
}

func TestContextCancelDiscards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	streamer := &llm.ScriptedStreamer{
		Fragments: []string{"one", "two", "three"},
	}
	f := newFixture(t, streamer)

	streamer.OnFragment = func(i int) {
		if i == 0 {
			cancel()
		}
	}

	if err := f.engine.Send(ctx, "q", nil); err != nil {
		t.Fatalf("cancelled turn must not error: %v", err)
	}

	// No fallback message for a user-initiated stop.
	sess, _ := f.sessions.Get(f.sessions.ActiveID())
	if sess.MessageCount() != 2 {
		t.Errorf("messages = %d, want 2", sess.MessageCount())
	}
}

// =============================================================================
// CONCURRENCY GATE
// =============================================================================

func TestSendWhileBusyIsRejected(t *testing.T) {
	streamer := &llm.ScriptedStreamer{Fragments: []string{"slow", "answer"}}
	f := newFixture(t, streamer)

	var second error
	streamer.OnFragment = func(i int) {
		if i == 0 {
			second = f.engine.Send(context.Background(), "impatient follow-up", nil)
		}
	}

	if err := f.engine.Send(context.Background(), "q", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !errors.Is(second, ErrBusy) {
		t.Errorf("second send = %v, want ErrBusy", second)
	}

	// The rejected send must leave no trace.
	sess := f.sessions.Active()
	if sess.MessageCount() != 2 {
		t.Errorf("messages = %d, want 2", sess.MessageCount())
	}
}

// handStreamer hands out one stream handle per SendStreaming call, so a
// test can interleave fragments across two overlapping turns. Closing
// frags ends the stream cleanly; sending on errc breaks it.
type handStream struct {
	frags chan string
	errc  chan error
}

type handStreamer struct {
	mu     sync.Mutex
	calls  chan *handStream
	resets int
}

func newHandStreamer() *handStreamer {
	return &handStreamer{calls: make(chan *handStream, 4)}
}

func (h *handStreamer) SendStreaming(ctx context.Context, parts []llm.Part, fn llm.StreamCallback) error {
	st := &handStream{frags: make(chan string), errc: make(chan error)}
	h.calls <- st
	for {
		select {
		case frag, ok := <-st.frags:
			if !ok {
				return nil
			}
			if err := fn(frag); err != nil {
				return err
			}
		case err := <-st.errc:
			return err
		}
	}
}

func (h *handStreamer) Reset() {
	h.mu.Lock()
	h.resets++
	h.mu.Unlock()
}

func (h *handStreamer) Resets() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resets
}

func TestAbandonedTurnDoesNotReopenSendGate(t *testing.T) {
	h := newHandStreamer()
	f := newFixtureWith(t, h)

	waitState := func(want State) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for f.engine.State() != want {
			if time.Now().After(deadline) {
				t.Fatalf("state = %v, want %v", f.engine.State(), want)
			}
			time.Sleep(time.Millisecond)
		}
	}

	// First turn streams one fragment, then the user moves on.
	firstDone := make(chan error, 1)
	go func() { firstDone <- f.engine.Send(context.Background(), "first question", nil) }()
	first := <-h.calls
	first.frags <- "alpha"
	waitState(StateStreaming)

	f.engine.NewThread()

	// Second turn starts streaming while the first is still in flight.
	secondDone := make(chan error, 1)
	go func() { secondDone <- f.engine.Send(context.Background(), "second question", nil) }()
	second := <-h.calls
	second.frags <- "bravo "
	waitState(StateStreaming)

	// Release the abandoned turn. Its next fragment aborts on the
	// session-binding check, and its terminal transition must not touch
	// the turn that replaced it.
	first.frags <- "never merged"
	select {
	case err := <-firstDone:
		if err != nil {
			t.Fatalf("abandoned turn must not error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("abandoned turn did not finish")
	}

	if !f.engine.Busy() {
		t.Error("Busy() = false while the second turn is still streaming")
	}
	if got := f.engine.State(); got != StateStreaming {
		t.Errorf("state = %v, want streaming", got)
	}
	if err := f.engine.Send(context.Background(), "third question", nil); !errors.Is(err, ErrBusy) {
		t.Errorf("third send = %v, want ErrBusy", err)
	}

	// The surviving turn still settles normally.
	second.frags <- "and more"
	close(second.frags)
	select {
	case err := <-secondDone:
		if err != nil {
			t.Fatalf("second turn failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second turn did not settle")
	}

	if f.engine.State() != StateSettled {
		t.Errorf("state = %v, want settled", f.engine.State())
	}
	sess := f.sessions.Active()
	if sess == nil || sess.MessageCount() != 2 {
		t.Fatalf("surviving session = %+v", sess)
	}
	if sess.Messages[1].Content != "bravo and more" {
		t.Errorf("answer = %q", sess.Messages[1].Content)
	}
}

func TestAbandonedTurnFailureDoesNotResetFreshHandle(t *testing.T) {
	h := newHandStreamer()
	f := newFixtureWith(t, h)

	done := make(chan error, 1)
	go func() { done <- f.engine.Send(context.Background(), "question", nil) }()
	st := <-h.calls
	st.frags <- "partial"
	for f.engine.State() != StateStreaming {
		time.Sleep(time.Millisecond)
	}
	abandoned := f.sessions.ActiveID()

	f.engine.NewThread()
	resetsAfterSwitch := h.Resets()

	// The transport breaks after the switch. A stale failure must not
	// append an apology, reset the new handle, or flip the state.
	st.errc <- errors.New("connection reset")
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("stale failure must be dropped, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("turn did not finish")
	}

	if f.engine.State() != StateIdle {
		t.Errorf("state = %v, want idle", f.engine.State())
	}
	if got := h.Resets(); got != resetsAfterSwitch {
		t.Errorf("resets = %d, want %d: stale turn reset the fresh handle", got, resetsAfterSwitch)
	}
	sess, err := f.sessions.Get(abandoned)
	if err != nil {
		t.Fatal(err)
	}
	if sess.MessageCount() != 2 {
		t.Errorf("abandoned session messages = %d, want 2 (no late fallback)", sess.MessageCount())
	}
}

func TestNewThreadResetsCollaborator(t *testing.T) {
	streamer := &llm.ScriptedStreamer{Fragments: []string{"ok"}}
	f := newFixture(t, streamer)

	f.engine.Send(context.Background(), "q", nil)
	f.engine.NewThread()

	if streamer.Resets() != 1 {
		t.Errorf("resets = %d, want 1", streamer.Resets())
	}
	if f.sessions.ActiveID() != "" {
		t.Error("NewThread should clear the active session")
	}

	f.engine.Send(context.Background(), "fresh", nil)
	if f.sessions.Count() != 2 {
		t.Errorf("sessions = %d, want 2", f.sessions.Count())
	}
}
