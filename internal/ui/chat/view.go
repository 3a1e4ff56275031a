// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/almuwaffaq/muwaffaq-tui/internal/model"
	"github.com/almuwaffaq/muwaffaq-tui/internal/ui/components"
)

// =============================================================================
// TOP-LEVEL LAYOUT
// =============================================================================

func (m Model) render() string {
	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")

	if m.drawer.Visible {
		sb.WriteString(m.drawer.Render(m.sessions.List(), m.sessions.ActiveID(), m.width, m.theme))
	} else {
		sb.WriteString(m.viewport.View())
	}
	sb.WriteString("\n")

	sb.WriteString(m.renderInput())
	sb.WriteString("\n")
	sb.WriteString(m.renderStatusBar())
	return sb.String()
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("Al-Muwaffaq")
	meta := m.theme.HeaderMeta.Render("ctrl+n new · ctrl+h history · ctrl+o focus · /help")
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(meta) - 2
	if gap < 1 {
		return m.theme.Header.Render(title)
	}
	return m.theme.Header.Render(title + strings.Repeat(" ", gap) + meta)
}

func (m Model) renderInput() string {
	line := m.theme.InputPrompt.Render("") + m.input.View()
	if m.attachmentName != "" {
		line += "  " + m.theme.FocusBadge.Render("[+"+m.attachmentName+"]")
	}
	return line
}

func (m Model) renderStatusBar() string {
	if m.statusMsg != "" {
		if m.statusIsErr {
			return m.theme.StatusError.Render(m.statusMsg)
		}
		return m.theme.StatusBar.Render(m.statusMsg)
	}

	prefs := m.prefs.Get()
	parts := []string{
		"lang " + prefs.Language.Native(),
		"depth " + prefs.Depth.String(),
	}
	if f := m.engine.Focus(); !f.IsDefault() {
		parts = append(parts, "focus "+f.String())
	}
	if m.busy {
		parts = append(parts, m.spinner.View()+" answering")
	}
	return m.theme.StatusBar.Render(strings.Join(parts, " · "))
}

// =============================================================================
// CONVERSATION RENDERING
// =============================================================================

// updateViewport re-renders the active session into the viewport.
func (m *Model) updateViewport() {
	sess := m.sessions.Active()
	if sess == nil || sess.IsEmpty() {
		m.viewport.SetContent(m.renderHero())
		return
	}

	rtl := m.prefs.Get().Language.RTL()

	var sb strings.Builder
	for i, msg := range sess.Messages {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.renderMessage(msg, rtl))
		sb.WriteString("\n")
	}

	// A committed question with no answer yet shows the thinking line.
	if m.busy {
		if last, ok := sess.LastMessage(); ok && last.Role == model.RoleUser {
			sb.WriteString("\n")
			sb.WriteString(m.theme.AssistantLabel.Render("Al-Muwaffaq"))
			sb.WriteString("  ")
			sb.WriteString(m.theme.Timestamp.Render(m.spinner.View() + " thinking..."))
			sb.WriteString("\n")
		}
	}

	m.viewport.SetContent(sb.String())
}

func (m Model) renderMessage(msg model.Message, rtl bool) string {
	var sb strings.Builder

	label := msg.Role.DisplayName()
	switch msg.Role {
	case model.RoleUser:
		sb.WriteString(m.theme.UserLabel.Render(label))
	case model.RoleAssistant:
		sb.WriteString(m.theme.AssistantLabel.Render(label))
		if n := components.CitationCount(msg.Content); n > 0 {
			sb.WriteString("  ")
			sb.WriteString(m.theme.CitationBadge.Render(citationBadge(n)))
		}
	default:
		sb.WriteString(m.theme.SystemLabel.Render(label))
	}

	if !m.compact {
		sb.WriteString("  ")
		when := time.UnixMilli(msg.Timestamp).Format("15:04")
		sb.WriteString(m.theme.Timestamp.Render(when))
	}
	sb.WriteString("\n")

	if msg.Role == model.RoleAssistant {
		sb.WriteString(m.renderAnswer(msg.Content))
	} else {
		sb.WriteString(m.renderPlainText(msg.Content, rtl))
	}

	return sb.String()
}

// rlm is U+200F RIGHT-TO-LEFT MARK, which anchors the terminal's bidi
// run so mixed Urdu/Arabic lines shape from the right.
const rlm = "\u200f"

// renderPlainText lays out non-markdown message text. Right-to-left
// languages are pushed to the right margin with a direction mark.
func (m Model) renderPlainText(content string, rtl bool) string {
	if !rtl {
		return content + "\n"
	}
	width := m.viewport.Width - 2
	if width < 1 {
		width = 1
	}
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(rlm+content) + "\n"
}

// renderAnswer renders assistant markdown plus the sources footer.
func (m Model) renderAnswer(content string) string {
	var sb strings.Builder

	if m.renderer != nil {
		if out, err := m.renderer.Render(content); err == nil {
			sb.WriteString(strings.TrimRight(out, "\n"))
			sb.WriteString("\n")
		} else {
			sb.WriteString(content)
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString(content)
		sb.WriteString("\n")
	}

	if footer := components.RenderSources(content, m.theme); footer != "" {
		sb.WriteString("\n")
		sb.WriteString(footer)
		sb.WriteString("\n")
	}

	return sb.String()
}

func citationBadge(n int) string {
	if n == 1 {
		return "1 source"
	}
	return strconv.Itoa(n) + " sources"
}

// =============================================================================
// EMPTY STATE
// =============================================================================

// renderHero renders the localized empty-state screen.
func (m Model) renderHero() string {
	l := m.prefs.Get().Language
	ui := l.UI()

	heroText, subText := ui.Hero, ui.Sub
	if l.RTL() {
		heroText = rlm + heroText
		subText = rlm + subText
	}

	var tags []string
	for _, tag := range ui.Tags {
		tags = append(tags, m.theme.HeroTag.Render(tag))
	}

	hero := lipgloss.JoinVertical(lipgloss.Center,
		m.theme.Hero.Render(heroText),
		"",
		m.theme.HeroSub.Width(min(m.width-8, 70)).Render(subText),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(tags, " ")),
	)

	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, hero)
}
