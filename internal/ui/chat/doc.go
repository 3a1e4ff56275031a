// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main conversation view for the TUI.
//
// The view is a thin renderer over the session store: it never owns
// message state. Streamed turns run on a worker goroutine inside the
// engine; the view watches the engine's update channel and re-reads the
// active session from the store on every repaint signal.
package chat
