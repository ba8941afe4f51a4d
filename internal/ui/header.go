package ui

import (
	"strings"

	"github.com/five82/triagedesk/internal/session"
)

// renderHeader renders the status bar: logo, assistant mode, activity, user id
// and the assistant console link.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{
		bg.Render("triagedesk", styles.Logo),
		styles.StatusStyle(string(m.snapshot.Mode)).Render(string(m.snapshot.Mode)),
	}

	if m.snapshot.Busy() {
		activity := m.spinner.View() + " " + m.activityLabel()
		parts = append(parts, bg.Render(activity, styles.WarningText))
	}

	if !compact {
		parts = append(parts,
			bg.Render("User:", styles.MutedText)+bg.Space()+
				bg.Render(m.snapshot.UserID, styles.Text))
	}

	if url := m.consoleURL(); url != "" {
		limit := 60
		if compact {
			limit = 30
		}
		parts = append(parts,
			bg.Render("Console:", styles.MutedText)+bg.Space()+
				bg.Render(truncateMiddle(url, limit), styles.InfoText))
	}

	if !compact && m.apiURL != "" {
		parts = append(parts,
			bg.Render("API:", styles.MutedText)+bg.Space()+
				bg.Render(truncateMiddle(m.apiURL, 40), styles.FaintText))
	}

	return styles.Header.Width(m.width).MaxHeight(1).Render(bg.Join(parts, "  "))
}

// consoleURL prefers the backend-provided link over the configured fallback.
func (m Model) consoleURL() string {
	if url := strings.TrimSpace(m.snapshot.ConsoleURL); url != "" {
		return url
	}
	return m.consoleFallback
}

// activityLabel names the operation the spinner stands for.
func (m Model) activityLabel() string {
	s := m.snapshot
	switch {
	case s.Sending:
		return "Sending"
	case s.Extract.Busy:
		return "Extracting"
	case s.Monitor.Busy:
		return "Monitor"
	case s.Vitals.Busy:
		return "Evaluating"
	case s.Imaging.Busy:
		return "Checking"
	default:
		return ""
	}
}

// renderCommandBar renders the panel tabs and the hints for the active panel.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	tabs := make([]string, 0, len(session.Panels))
	for i, p := range session.Panels {
		label := "F" + string(rune('1'+i)) + " " + p.String()
		if p == m.snapshot.Panel {
			tabs = append(tabs, styles.Selected.Bold(true).Padding(0, 1).Render(label))
			continue
		}
		tabs = append(tabs, bg.Render(" "+label+" ", styles.MutedText))
	}

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.snapshot.Panel {
	case session.PanelChat:
		commands = []cmd{
			{"Enter", "Send"},
			{"Alt+Enter", "Newline"},
			{"Alt+1-3", "Suggest"},
			{"PgUp/PgDn", "Scroll"},
		}
	case session.PanelExtract:
		commands = []cmd{
			{"Enter", "Extract"},
			{"Alt+Enter", "Newline"},
			{"PgUp/PgDn", "Scroll"},
		}
	case session.PanelMonitor:
		if m.vitals.active {
			commands = []cmd{
				{"Tab", "Field"},
				{"Enter", "Evaluate"},
				{"Esc", "Leave form"},
			}
		} else {
			commands = []cmd{
				{"r", "Reload"},
				{"x", "Run cycle"},
				{"v", "Vitals"},
				{"j/k", "Scroll"},
			}
		}
	case session.PanelImaging:
		commands = []cmd{
			{"r", "Check"},
			{"j/k", "Scroll"},
		}
	}
	commands = append(commands, cmd{"F5", "Help"}, cmd{"^L", "Log"})

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+2)
	segments = append(segments, strings.Join(tabs, bg.Space()))
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.notice != "" {
		segments = append(segments, bg.Render(truncate(m.notice, 50), styles.WarningText))
	}

	segments = append(segments,
		bg.Render("^T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(segments, sep))
}
