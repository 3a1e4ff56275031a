// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/almuwaffaq/muwaffaq-tui/internal/model"
	"github.com/almuwaffaq/muwaffaq-tui/internal/ui/styles"
	"github.com/almuwaffaq/muwaffaq-tui/internal/util"
)

// Drawer is the session history list. Navigation state lives here; the
// session data itself is always re-read from the store on render.
type Drawer struct {
	Visible  bool
	Selected int
}

// Move shifts the selection by delta, clamped to [0, count).
func (d *Drawer) Move(delta, count int) {
	d.Selected += delta
	if d.Selected < 0 {
		d.Selected = 0
	}
	if d.Selected >= count {
		d.Selected = count - 1
	}
	if d.Selected < 0 {
		d.Selected = 0
	}
}

// Render draws the drawer over the given session list.
func (d *Drawer) Render(sessions []*model.ChatSession, activeID string, width int, theme *styles.Theme) string {
	var sb strings.Builder
	sb.WriteString(theme.DrawerTitle.Render("History"))
	sb.WriteString("\n\n")

	if len(sessions) == 0 {
		sb.WriteString(theme.DrawerMeta.Render("No conversations yet."))
		return sb.String()
	}

	for i, sess := range sessions {
		title := sess.Title
		if title == "" {
			title = "Untitled"
		}
		marker := "  "
		if sess.ID == activeID {
			marker = "* "
		}
		line := util.TruncateWidth(marker+title, width-4)

		if i == d.Selected {
			sb.WriteString(theme.DrawerSelected.Render(line))
		} else {
			sb.WriteString(theme.DrawerItem.Render(line))
		}
		sb.WriteString("\n")

		when := time.UnixMilli(sess.UpdatedAt).Format("Jan 2 15:04")
		meta := when
		if n := sess.MessageCount(); n > 0 {
			meta += "  ·  " + util.TruncateWidth(sess.Preview(40), width-24)
		}
		sb.WriteString(theme.DrawerMeta.Render(meta))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(theme.DrawerMeta.Render("enter select · d delete · esc close"))
	return sb.String()
}
