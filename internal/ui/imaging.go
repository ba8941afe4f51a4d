package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleImagingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Reload):
		task, ok := m.session.CheckImageServiceHealth()
		if !ok {
			return m, nil
		}
		return m.started(task)
	case key.Matches(msg, m.keys.LineUp):
		m.imagingViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.LineDown):
		m.imagingViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.ScrollUp):
		m.imagingViewport.PageUp()
	case key.Matches(msg, m.keys.ScrollDown):
		m.imagingViewport.PageDown()
	}
	return m, nil
}

func (m *Model) updateImagingViewport() {
	if m.imagingViewport.Width <= 0 {
		return
	}
	m.imagingViewport.SetContent(m.renderImagingHealth(m.imagingViewport.Width))
}

// renderImagingHealth renders availability and the raw health report.
func (m Model) renderImagingHealth(width int) string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.paneBackground(true))
	st := m.snapshot.Imaging

	var lines []string
	if st.Err != "" {
		lines = append(lines, gutterLines(bg, 1, wrap(st.Err, max(width-2, 10)), styles.DangerText), "")
	}

	switch {
	case st.Health == nil && st.Busy:
		lines = append(lines, " "+bg.Render("Checking image service...", styles.WarningText))
	case st.Health == nil:
		lines = append(lines, " "+bg.Render("Press r to check the image service.", styles.FaintText))
	default:
		status := "unavailable"
		if st.Health.Available {
			status = "available"
		}
		lines = append(lines,
			" "+bg.Render("Service:", styles.MutedText)+bg.Space()+
				styles.StatusStyle(status).Render(strings.ToUpper(status))+bg.Space()+
				bg.Render("checked "+formatClock(st.Checked), styles.FaintText),
			"",
			" "+bg.Render("Health report", styles.AccentText.Bold(true)),
			gutterLines(bg, 2, prettyJSON(st.Health.Health), styles.Text),
		)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderImaging() string {
	return m.renderTitledBox("Image analysis service", m.imagingViewport.View(), m.width, m.contentHeight(), true)
}
