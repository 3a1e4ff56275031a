// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
	"time"
)

// Clock issues unix-millisecond timestamps that are strictly increasing
// within a process. A wall clock stepping backwards (NTP) must not reorder
// messages, so collisions advance by one millisecond instead.
type Clock struct {
	mu   sync.Mutex
	last int64
}

// Now returns the next timestamp.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixMilli()
	if now <= c.last {
		now = c.last + 1
	}
	c.last = now
	return now
}
