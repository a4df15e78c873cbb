package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/nbrendler/keybase-chat-tui/internal/appinfo"
)

// Theme carries the configurable colors. Values are lipgloss color strings
// (ANSI index or hex).
type Theme struct {
	Accent string
	Unread string
	Dim    string
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "starting " + appinfo.Display() + "…"
	}

	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
	title := accent.Bold(true).Render(appinfo.Display())
	header := title
	if m.activeName != "" {
		header += "  |  " + m.activeName
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.viewList(), " ", m.viewport.View())
	return header + "\n" + body + "\n" + m.input.View()
}

func (m *Model) viewList() string {
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
	unread := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Unread)).Bold(true)

	height := m.viewport.Height
	lines := make([]string, 0, height)
	for i, entry := range m.convs {
		if len(lines) >= height {
			break
		}
		name := runewidth.Truncate(entry.Name, listWidth-4, "…")
		marker := "  "
		if entry.ID == m.activeID {
			marker = "* "
		}
		line := marker + name
		if entry.Unread {
			line = unread.Render(line + " •")
		} else if i == m.cursor && m.listFocused {
			line = accent.Render(line)
		}
		lines = append(lines, runewidth.FillRight(line, listWidth))
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", listWidth))
	}
	return strings.Join(lines, "\n")
}

// renderMessages rebuilds the viewport content from the active
// conversation's history. Storage is newest-first; the screen shows oldest
// at the top.
func (m *Model) renderMessages() {
	if m.viewport.Width <= 0 {
		return
	}
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent)).Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Dim))
	wrap := lipgloss.NewStyle().Width(m.viewport.Width)

	lines := make([]string, 0, len(m.messages))
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		sender := accent.Render(msg.Sender.Username)
		if body, ok := msg.Content.BodyText(); ok {
			lines = append(lines, wrap.Render(sender+": "+body))
			continue
		}
		lines = append(lines, sender+": "+dim.Render("["+string(msg.Content.Type)+"]"))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}
