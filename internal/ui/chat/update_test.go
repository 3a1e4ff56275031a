// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "testing"

func TestSubmitSpawnsWorker(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.submit("Is fasting obligatory?")
	out := next.(Model)
	if cmd == nil {
		t.Fatal("submit should issue a worker command")
	}
	if !out.busy {
		t.Error("submit should mark the model busy until TurnDoneMsg")
	}
}

func TestSubmitWhileWorkerPendingIsRejected(t *testing.T) {
	m := newTestModel(t)

	// The worker flag is set between submit and TurnDoneMsg. Even with
	// the engine momentarily idle, no second worker may be spawned.
	m.busy = true

	next, cmd := m.submit("impatient follow-up")
	out := next.(Model)
	if cmd != nil {
		t.Error("no worker command may be issued while one is pending")
	}
	if !out.statusIsErr {
		t.Error("rejected submit should surface an error status")
	}
	if out.sessions.Count() != 0 {
		t.Error("rejected submit must not touch the store")
	}
}
