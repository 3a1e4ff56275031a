// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"sync"
)

// ScriptedStreamer is a Streamer that replays a fixed fragment script.
// Used by engine and UI tests; never shipped on a production path.
type ScriptedStreamer struct {
	mu sync.Mutex

	// Fragments are delivered in order. If Err is non-nil it is returned
	// after FailAfter fragments (so mid-stream failures can be scripted).
	Fragments []string
	Err       error
	FailAfter int

	// OnFragment, if set, runs after each delivered fragment. Tests use it
	// to switch sessions mid-stream deterministically.
	OnFragment func(i int)

	resets int
	sends  [][]Part
}

// SendStreaming implements Streamer.
func (s *ScriptedStreamer) SendStreaming(ctx context.Context, parts []Part, fn StreamCallback) error {
	s.mu.Lock()
	s.sends = append(s.sends, parts)
	fragments := s.Fragments
	scriptErr := s.Err
	failAfter := s.FailAfter
	hook := s.OnFragment
	s.mu.Unlock()

	for i, frag := range fragments {
		if scriptErr != nil && i >= failAfter {
			return scriptErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(frag); err != nil {
			return err
		}
		if hook != nil {
			hook(i)
		}
	}

	if scriptErr != nil && failAfter >= len(fragments) {
		return scriptErr
	}
	return nil
}

// Reset implements Streamer.
func (s *ScriptedStreamer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
}

// Resets returns how many times Reset was called.
func (s *ScriptedStreamer) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}

// Sends returns the recorded part lists, one per SendStreaming call.
func (s *ScriptedStreamer) Sends() [][]Part {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]Part, len(s.sends))
	copy(out, s.sends)
	return out
}
