package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleExtractKey handles keys while the extraction panel is active. The
// submitted text stays in the input so it can be refined and re-sent.
func (m Model) handleExtractKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		task, ok := m.session.ExtractClinicalInfo(m.extractInput.Value())
		if !ok {
			if strings.TrimSpace(m.extractInput.Value()) == "" {
				m.notice = "nothing to extract"
			}
			return m, nil
		}
		return m.started(task)

	case key.Matches(msg, m.keys.ScrollUp):
		m.extractViewport.PageUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.extractViewport.PageDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.extractInput, cmd = m.extractInput.Update(msg)
	return m, cmd
}

func (m *Model) updateExtractViewport() {
	if m.extractViewport.Width <= 0 {
		return
	}
	m.extractViewport.SetContent(m.renderExtractResult(m.extractViewport.Width))
	m.extractViewport.GotoTop()
}

// renderExtractResult renders summary, source and the structured records.
func (m Model) renderExtractResult(width int) string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.paneBackground(false))
	st := m.snapshot.Extract
	bodyWidth := max(width-2, 10)

	switch {
	case st.Busy:
		return bg.Render(" Extracting...", styles.WarningText)
	case st.Err != "":
		return gutterLines(bg, 1, wrap(st.Err, bodyWidth), styles.DangerText)
	case st.Result == nil:
		return bg.Render(" Paste notes above and press Enter.", styles.FaintText)
	}

	res := st.Result
	var sections []string
	sections = append(sections,
		" "+bg.Render("Source:", styles.MutedText)+bg.Space()+bg.Render(orDash(res.Source), styles.InfoText))
	sections = append(sections,
		m.renderSection(bg, styles, "Summary", wrap(orDash(res.Summary), bodyWidth)))
	sections = append(sections,
		m.renderSection(bg, styles, "Structured", prettyJSON(res.Structured)))
	sections = append(sections,
		m.renderSection(bg, styles, "Triage", prettyJSON(res.Triage)))
	return strings.Join(sections, "\n\n")
}

// renderSection renders a titled block of preformatted text.
func (m Model) renderSection(bg BgStyle, styles Styles, title, body string) string {
	return " " + bg.Render(title, styles.AccentText.Bold(true)) + "\n" + gutterLines(bg, 2, body, styles.Text)
}

// renderExtract renders the notes input above the extraction result.
func (m Model) renderExtract() string {
	input := m.renderTitledBox("Clinical notes", m.extractInput.View(), m.width, inputBoxHeight(), true)
	resultHeight := max(m.contentHeight()-inputBoxHeight(), 3)
	result := m.renderTitledBox("Extraction", m.extractViewport.View(), m.width, resultHeight, false)
	return input + "\n" + result
}
