package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// aboutText describes the application in the help overlay.
var aboutText = []string{
	"Patient-experience console for the cardiology",
	"triage backend: conversational intake, clinical",
	"extraction, vitals monitoring and the image",
	"analysis service.",
	"",
	"Messages go to POST /api/message; the backend",
	"answers through the remote assistant when it is",
	"configured, or with local rules otherwise.",
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Panels",
			items: []helpItem{
				{"F1-F4", "Chat/Extract/Monitor/Imaging"},
				{"tab", "Next panel"},
				{"shift+tab", "Previous panel"},
				{"pgup/pgdn", "Scroll"},
			},
		},
		{
			title: "Chat and extract",
			items: []helpItem{
				{"enter", "Send / extract"},
				{"alt+enter", "Newline"},
				{"alt+1..3", "Send suggestion"},
			},
		},
		{
			title: "Monitor and imaging",
			items: []helpItem{
				{"r", "Reload / check"},
				{"x", "Run monitor cycle"},
				{"v", "Vitals form"},
				{"esc", "Leave form"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"ctrl+t", "Cycle theme"},
				{"ctrl+l", "Client log"},
				{"f5/?", "Toggle help"},
				{"ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 44)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	for _, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.AccentText.Bold(true).Render("About"))
	b.WriteString("\n")
	for _, line := range aboutText {
		b.WriteString(styles.MutedText.Render(line))
		b.WriteString("\n")
	}
	if url := m.consoleURL(); url != "" {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("Console ") + styles.InfoText.Render(url))
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(52)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(strings.TrimRight(b.String(), "\n")),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
