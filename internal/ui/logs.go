package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/triagedesk/internal/logtail"
)

// handleClientLogKey handles keys while the client log overlay is open.
func (m Model) handleClientLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.ClientLog):
		m.showLog = false
	case key.Matches(msg, m.keys.Reload):
		return m, readClientLogCmd(m.logPath)
	case key.Matches(msg, m.keys.LineUp):
		m.logViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.LineDown):
		m.logViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.ScrollUp):
		m.logViewport.PageUp()
	case key.Matches(msg, m.keys.ScrollDown):
		m.logViewport.PageDown()
	}
	return m, nil
}

// updateLogViewport renders the loaded lines and jumps to the newest entry.
func (m *Model) updateLogViewport() {
	if m.logViewport.Width <= 0 {
		return
	}
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.logViewport.SetContent(m.renderClientLogContent())
	m.logViewport.GotoBottom()
}

func (m Model) renderClientLogContent() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.FocusBg)

	if m.logErr != "" {
		return " " + bg.Render(m.logErr, styles.DangerText)
	}
	if len(m.logLines) == 0 {
		return " " + bg.Render("Log is empty.", styles.FaintText)
	}

	out := make([]string, 0, len(m.logLines))
	for _, line := range m.logLines {
		out = append(out, m.renderClientLogLine(line, bg, styles))
	}
	return strings.Join(out, "\n")
}

// renderClientLogLine colors the level and dims the fields of one line.
func (m Model) renderClientLogLine(line logtail.Line, bg BgStyle, styles Styles) string {
	if !line.Structured {
		return " " + bg.Render(line.Message, styles.MutedText)
	}

	parts := make([]string, 0, 3+len(line.Fields))
	if !line.Time.IsZero() {
		parts = append(parts, bg.Render(line.Time.Local().Format("15:04:05"), styles.FaintText))
	}
	if line.Level != "" {
		parts = append(parts, bg.Render(padLevel(line.Level), levelStyle(line.Level, styles)))
	}
	if line.Message != "" {
		parts = append(parts, bg.Render(line.Message, styles.Text))
	}
	for _, f := range line.Fields {
		parts = append(parts, bg.Render(f.Key+"=", styles.MutedText)+bg.Render(f.Value, styles.InfoText))
	}
	return " " + bg.Join(parts, " ")
}

func padLevel(level string) string {
	if len(level) >= 5 {
		return level
	}
	return level + strings.Repeat(" ", 5-len(level))
}

func levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "ERROR", "FATAL", "PANIC":
		return styles.DangerText
	case "WARN":
		return styles.WarningText
	case "DEBUG", "TRACE":
		return styles.FaintText
	default:
		return styles.InfoText
	}
}

// renderClientLog renders the client log overlay with a status line.
func (m Model) renderClientLog() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	title := "Client log"
	if m.logPath != "" {
		title += " " + truncateMiddle(m.logPath, max(m.width/2, 20))
	}
	box := m.renderTitledBox(title, m.logViewport.View(), m.width, m.height-1, true)

	status := []string{
		bg.Render(strconv.Itoa(len(m.logLines))+" lines", styles.MutedText),
		bg.Render("r", styles.AccentText) + bg.Sep(":") + bg.Render("Reload", styles.MutedText),
		bg.Render("j/k", styles.AccentText) + bg.Sep(":") + bg.Render("Scroll", styles.MutedText),
		bg.Render("Esc", styles.AccentText) + bg.Sep(":") + bg.Render("Close", styles.MutedText),
	}
	return box + "\n" + styles.Header.Width(m.width).MaxHeight(1).Render(bg.Join(status, "  "))
}
