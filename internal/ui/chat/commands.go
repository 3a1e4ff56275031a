// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/almuwaffaq/muwaffaq-tui/internal/lang"
	"github.com/almuwaffaq/muwaffaq-tui/internal/model"
	"github.com/almuwaffaq/muwaffaq-tui/internal/prompt"
	"github.com/almuwaffaq/muwaffaq-tui/internal/util"
)

// maxAttachmentBytes caps inline media size. The Gemini inline-data path
// is for small files; anything larger needs the file upload API, which
// this client does not use.
const maxAttachmentBytes = 4 << 20

// handleCommand dispatches a slash command.
func (m Model) handleCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "/new":
		m.engine.NewThread()
		m.updateViewport()
		return m.status("New conversation.", false)

	case "/history", "/sessions":
		m.drawer.Visible = true
		m.drawer.Selected = 0
		return m, nil

	case "/focus":
		return m.cmdFocus(args)

	case "/lang", "/language":
		return m.cmdLanguage(args)

	case "/depth":
		return m.cmdDepth(args)

	case "/name":
		return m.cmdPatch(model.PreferencePatch{Name: strPtr(strings.Join(args, " "))}, "Name updated.")

	case "/location":
		return m.cmdPatch(model.PreferencePatch{Location: strPtr(strings.Join(args, " "))}, "Location updated.")

	case "/attach":
		return m.cmdAttach(args)

	case "/export":
		return m.cmdExport(args)

	case "/delete":
		return m.cmdDelete()

	case "/help":
		return m.status("/new /history /focus /lang /depth /name /location /attach /export /delete", false)

	default:
		return m.status(fmt.Sprintf("Unknown command %s. Try /help.", cmd), true)
	}
}

func (m Model) cmdFocus(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.cycleFocus()
	}
	want := strings.ToLower(strings.Join(args, " "))
	for _, f := range model.FocusModes() {
		if strings.ToLower(f.String()) == want {
			m.engine.SetFocus(f)
			return m.status("Focus: "+f.String(), false)
		}
	}
	return m.status("Focus must be one of All, Qur'an, Hadith, Tafsir.", true)
}

func (m Model) cycleFocus() (tea.Model, tea.Cmd) {
	modes := model.FocusModes()
	cur := m.engine.Focus()
	for i, f := range modes {
		if f == cur || (cur == "" && f.IsDefault()) {
			next := modes[(i+1)%len(modes)]
			m.engine.SetFocus(next)
			return m.status("Focus: "+next.String()+" — "+next.Description(), false)
		}
	}
	m.engine.SetFocus(model.FocusAll)
	return m.status("Focus: All", false)
}

func (m Model) cmdLanguage(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.status("Usage: /lang English|Urdu|Arabic", true)
	}
	want := strings.ToLower(args[0])
	for _, l := range lang.Supported() {
		if strings.ToLower(l.String()) == want {
			if _, err := m.prefs.Update(model.PreferencePatch{Language: &l}); err != nil {
				return m.status("Could not save the language preference.", true)
			}
			m.updateViewport()
			return m.status("Language: "+l.String(), false)
		}
	}
	return m.status("Language must be one of English, Urdu, Arabic.", true)
}

func (m Model) cmdDepth(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.status("Usage: /depth simple|detailed|scholarly", true)
	}
	want := strings.ToLower(args[0])
	for _, d := range model.Depths() {
		if d.String() == want {
			if _, err := m.prefs.Update(model.PreferencePatch{Depth: &d}); err != nil {
				return m.status("Could not save the depth preference.", true)
			}
			return m.status("Depth: "+d.String(), false)
		}
	}
	return m.status("Depth must be one of simple, detailed, scholarly.", true)
}

func (m Model) cmdPatch(patch model.PreferencePatch, ok string) (tea.Model, tea.Cmd) {
	if _, err := m.prefs.Update(patch); err != nil {
		return m.status("Could not save the preference.", true)
	}
	return m.status(ok, false)
}

func (m Model) cmdAttach(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		if m.attachment != nil {
			m.attachment = nil
			m.attachmentName = ""
			return m.status("Attachment removed.", false)
		}
		return m.status("Usage: /attach <file>", true)
	}

	path := strings.Join(args, " ")
	info, err := os.Stat(path)
	if err != nil {
		return m.status("Cannot read "+path, true)
	}
	if info.Size() > maxAttachmentBytes {
		return m.status("File too large to attach (4 MB limit).", true)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return m.status("Cannot read "+path, true)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	// Strip parameters like "; charset=utf-8".
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	m.attachment = &prompt.Media{
		Data:     data,
		MIMEType: mimeType,
		Name:     filepath.Base(path),
	}
	m.attachmentName = filepath.Base(path)
	return m.status("Attached "+m.attachmentName+" ("+mimeType+"), sent with your next question.", false)
}

func (m Model) cmdExport(args []string) (tea.Model, tea.Cmd) {
	sess := m.sessions.Active()
	if sess == nil {
		return m.status("No conversation to export.", true)
	}

	format := "md"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}

	var data []byte
	switch format {
	case "md", "markdown":
		format = "md"
		data = []byte(sess.ExportMarkdown())
	case "json":
		var err error
		data, err = sess.ExportJSON()
		if err != nil {
			return m.status("Export failed.", true)
		}
	default:
		return m.status("Usage: /export md|json [file]", true)
	}

	path := "muwaffaq-" + sess.ID[:8] + "." + format
	if len(args) > 1 {
		path = args[1]
	}

	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return m.status("Could not write "+path, true)
	}
	return m.status("Exported to "+path, false)
}

func (m Model) cmdDelete() (tea.Model, tea.Cmd) {
	id := m.sessions.ActiveID()
	if id == "" {
		return m.status("No active conversation to delete.", true)
	}
	if err := m.engine.DeleteSession(id); err != nil {
		return m.status("Could not delete the conversation.", true)
	}
	m.updateViewport()
	return m.status("Conversation deleted.", false)
}

func (m Model) status(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.statusMsg = text
	m.statusIsErr = isErr
	return m, nil
}

func strPtr(s string) *string {
	return &s
}
