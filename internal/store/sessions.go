// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/almuwaffaq/muwaffaq-tui/internal/model"
)

// ErrSessionNotFound is returned when a session id is unknown.
var ErrSessionNotFound = errors.New("session not found")

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore owns the durable collection of chat sessions and the
// active-session pointer. It is the sole mutator of the collection; the
// merge engine and the UI go through its methods, which keeps deletions
// and streaming merges from racing each other.
//
// The active pointer is process state, not persisted: a restart always
// begins with "no active session".
type SessionStore struct {
	mu     sync.Mutex
	kv     *KV
	log    *zap.Logger
	clock  model.Clock
	items  []*model.ChatSession
	active string // session id, or "" for none
}

// NewSessionStore loads the session collection from the KV store.
// A missing key yields an empty collection; corrupt JSON fails closed to
// an empty collection with a log line rather than an error.
func NewSessionStore(kv *KV, log *zap.Logger) (*SessionStore, error) {
	s := &SessionStore{kv: kv, log: log}

	data, ok, err := kv.Get(KeySessions)
	if err != nil {
		return nil, err
	}
	if ok {
		var items []*model.ChatSession
		if err := json.Unmarshal(data, &items); err != nil {
			log.Warn("session collection corrupt, starting empty", zap.Error(err))
		} else {
			s.items = items
		}
	}

	return s, nil
}

// =============================================================================
// ACTIVE SESSION
// =============================================================================

// NewDraft marks that the next send starts a new session. Nothing is
// allocated or persisted until a message is actually sent.
func (s *SessionStore) NewDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ""
}

// ActiveID returns the active session id, or "" when no session is active.
func (s *SessionStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Active returns a clone of the active session, or nil when none.
func (s *SessionStore) Active() *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.findLocked(s.active); sess != nil {
		return sess.Clone()
	}
	return nil
}

// Select makes the given session active.
// The caller is responsible for resetting any in-flight streaming state;
// the engine additionally re-checks the active id before every merge.
func (s *SessionStore) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(id) == nil {
		return ErrSessionNotFound
	}
	s.active = id
	return nil
}

// =============================================================================
// MUTATIONS
// =============================================================================

// AppendUserMessage appends a user message to the active session. With no
// active session it allocates one: id from uuid, title derived from the
// first message, and marks it active. Returns the session id and the
// appended message.
func (s *SessionStore) AppendUserMessage(text string) (string, model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findLocked(s.active)
	if sess == nil {
		sess = &model.ChatSession{
			ID:    uuid.NewString(),
			Title: model.TitleFor(text),
		}
		s.items = append(s.items, sess)
		s.active = sess.ID
	}

	msg := model.NewMessage(model.RoleUser, text, s.clock.Now())
	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = msg.Timestamp

	return sess.ID, msg, s.persistLocked()
}

// AppendAssistantMessage appends an assistant message to the session with
// the given id. Used by the merge engine for the first fragment and for
// fallback messages.
func (s *SessionStore) AppendAssistantMessage(sessionID, content string) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findLocked(sessionID)
	if sess == nil {
		return model.Message{}, ErrSessionNotFound
	}

	msg := model.NewMessage(model.RoleAssistant, content, s.clock.Now())
	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = msg.Timestamp

	return msg, s.persistLocked()
}

// ReplaceLastContent replaces the content of the session's last message
// with a new value. The old message value is superseded wholesale, never
// mutated in place, so concurrent readers see either version but no blend.
func (s *SessionStore) ReplaceLastContent(sessionID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findLocked(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}
	if len(sess.Messages) == 0 {
		return errors.New("session has no messages")
	}

	last := len(sess.Messages) - 1
	sess.Messages[last] = sess.Messages[last].WithContent(content)
	sess.UpdatedAt = s.clock.Now()

	return s.persistLocked()
}

// Delete removes the session. Deleting the active session clears the
// active pointer to "none" — it never jumps to another session.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, sess := range s.items {
		if sess.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrSessionNotFound
	}

	s.items = append(s.items[:idx], s.items[idx+1:]...)
	if s.active == id {
		s.active = ""
	}

	return s.persistLocked()
}

// =============================================================================
// READS
// =============================================================================

// Get returns a clone of the session with the given id.
func (s *SessionStore) Get(id string) (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.findLocked(id); sess != nil {
		return sess.Clone(), nil
	}
	return nil, ErrSessionNotFound
}

// LastMessage returns the last message of the given session.
func (s *SessionStore) LastMessage(sessionID string) (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.findLocked(sessionID)
	if sess == nil {
		return model.Message{}, false
	}
	return sess.LastMessage()
}

// List returns clones of all sessions, most recently updated first.
func (s *SessionStore) List() []*model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.ChatSession, 0, len(s.items))
	for _, sess := range s.items {
		out = append(out, sess.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt > out[j].UpdatedAt
	})
	return out
}

// Count returns the number of stored sessions.
func (s *SessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// =============================================================================
// INTERNAL
// =============================================================================

// findLocked returns the session with the given id, or nil. Caller holds mu.
func (s *SessionStore) findLocked(id string) *model.ChatSession {
	if id == "" {
		return nil
	}
	for _, sess := range s.items {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// persistLocked writes the full collection through to the KV store.
// Caller holds mu.
func (s *SessionStore) persistLocked() error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return err
	}
	if err := s.kv.Put(KeySessions, data); err != nil {
		s.log.Error("failed to persist sessions", zap.Error(err))
		return err
	}
	return nil
}
