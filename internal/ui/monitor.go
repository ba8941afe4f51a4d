package ui

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/triagedesk/internal/session"
	"github.com/five82/triagedesk/internal/triage"
)

// vitalsBoxHeight is the height of the vitals box when stacked.
const vitalsBoxHeight = 14

// vitalsForm holds the two reading inputs of the monitor panel.
type vitalsForm struct {
	temp   textinput.Model
	bpm    textinput.Model
	focus  int // 0 temperature, 1 heart rate
	active bool
}

func newVitalsForm() vitalsForm {
	temp := textinput.New()
	temp.Placeholder = "e.g. 37.5"
	temp.CharLimit = 8
	temp.Width = 10
	temp.Prompt = ""

	bpm := textinput.New()
	bpm.Placeholder = "e.g. 80"
	bpm.CharLimit = 8
	bpm.Width = 10
	bpm.Prompt = ""

	return vitalsForm{temp: temp, bpm: bpm}
}

func (f *vitalsForm) activate() tea.Cmd {
	f.active = true
	return f.applyFocus()
}

func (f *vitalsForm) blur() {
	f.active = false
	f.temp.Blur()
	f.bpm.Blur()
}

func (f *vitalsForm) nextField() tea.Cmd {
	f.focus = (f.focus + 1) % 2
	return f.applyFocus()
}

func (f *vitalsForm) applyFocus() tea.Cmd {
	if f.focus == 0 {
		f.bpm.Blur()
		return f.temp.Focus()
	}
	f.temp.Blur()
	return f.bpm.Focus()
}

func (f *vitalsForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.focus == 0 {
		f.temp, cmd = f.temp.Update(msg)
	} else {
		f.bpm, cmd = f.bpm.Update(msg)
	}
	return cmd
}

// handleMonitorKey handles keys while the monitoring panel is active.
func (m Model) handleMonitorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.vitals.active {
		return m.handleVitalsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Reload):
		task, ok := m.session.LoadMonitorLogs()
		if !ok {
			return m, nil
		}
		return m.started(task)

	case key.Matches(msg, m.keys.RunCycle):
		task, ok := m.session.RunMonitorCycle()
		if !ok {
			return m, nil
		}
		return m.started(task)

	case key.Matches(msg, m.keys.EditVitals):
		cmd := m.vitals.activate()
		m.updateMonitorViewport()
		return m, cmd

	case key.Matches(msg, m.keys.LineUp):
		m.monitorViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.LineDown):
		m.monitorViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.ScrollUp):
		m.monitorViewport.PageUp()
	case key.Matches(msg, m.keys.ScrollDown):
		m.monitorViewport.PageDown()
	}
	return m, nil
}

// handleVitalsKey handles keys while the vitals form has focus.
func (m Model) handleVitalsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.vitals.blur()
		m.updateMonitorViewport()
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		return m, m.vitals.nextField()

	case key.Matches(msg, m.keys.Submit):
		task, err := m.session.EvaluateVitals(m.vitals.temp.Value(), m.vitals.bpm.Value())
		switch {
		case errors.Is(err, session.ErrVitalsEmpty):
			m.notice = err.Error()
			return m, nil
		case err != nil:
			// Busy, or a bad reading already stored in the vitals error slot.
			m.snapshot = m.session.Snapshot()
			return m, nil
		}
		return m.started(task)
	}

	return m, m.vitals.update(msg)
}

func (m *Model) updateMonitorViewport() {
	if m.monitorViewport.Width <= 0 {
		return
	}
	m.monitorViewport.SetContent(m.renderMonitorLogs(m.monitorViewport.Width))
}

// renderMonitorLogs renders the cycle outcome, any error and the log records.
func (m Model) renderMonitorLogs(width int) string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.paneBackground(!m.vitals.active))
	st := m.snapshot.Monitor
	bodyWidth := max(width-4, 10)

	var blocks []string

	if c := st.LastCycle; c != nil {
		status, style := "ok", styles.SuccessText
		text := "Cycle completed"
		if !c.OK {
			status, style, text = "error", styles.DangerText, "Cycle failed"
		}
		blocks = append(blocks, " "+styles.StatusStyle(status).Render(strings.ToUpper(status))+bg.Space()+
			bg.Render(text, style)+bg.Space()+bg.Render(formatClock(c.At), styles.FaintText))
	}
	if st.Err != "" {
		blocks = append(blocks, gutterLines(bg, 1, wrap(st.Err, bodyWidth), styles.DangerText))
	}

	switch {
	case st.Busy && len(st.Logs) == 0:
		blocks = append(blocks, " "+bg.Render("Loading monitor log...", styles.WarningText))
	case !st.Loaded && len(st.Logs) == 0:
		blocks = append(blocks, " "+bg.Render("Press r to load the monitor log.", styles.FaintText))
	case len(st.Logs) == 0:
		blocks = append(blocks, " "+bg.Render("No monitor records.", styles.FaintText))
	}

	for _, entry := range st.Logs {
		blocks = append(blocks, m.renderLogEntry(entry, bg, styles, bodyWidth))
	}
	return strings.Join(blocks, "\n\n")
}

// renderLogEntry renders one monitoring record.
func (m Model) renderLogEntry(entry triage.LogEntry, bg BgStyle, styles Styles, width int) string {
	when := entry.Timestamp
	if t := entry.ParsedTime(); !t.IsZero() {
		when = t.Local().Format("2006-01-02 15:04:05")
	}

	head := " " + bg.Render(orDash(when), styles.FaintText) + bg.Space() +
		bg.Render(orDash(entry.Patient), styles.Text.Bold(true))
	if entry.Status != "" {
		head += bg.Space() + styles.StatusStyle(entry.Status).Render(entry.Status)
	}
	lines := []string{head}

	if len(entry.Vitals) > 0 {
		keys := make([]string, 0, len(entry.Vitals))
		for k := range entry.Vitals {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+formatValue(entry.Vitals[k]))
		}
		lines = append(lines, bg.Spaces(3)+bg.Render(strings.Join(pairs, "  "), styles.InfoText))
	}
	if entry.Analysis != "" {
		lines = append(lines, gutterLines(bg, 3, wrap(entry.Analysis, width), styles.Text))
	}
	if entry.Action != "" {
		lines = append(lines, bg.Spaces(3)+bg.Render("Action:", styles.MutedText)+bg.Space()+
			bg.Render(entry.Action, styles.WarningText))
	}
	if len(lines) == 1 && entry.Patient == "" && entry.Status == "" && len(entry.Raw) > 0 {
		lines = append(lines, gutterLines(bg, 3, wrap(string(entry.Raw), width), styles.MutedText))
	}
	return strings.Join(lines, "\n")
}

// gutterLines renders each line of text behind a gutter of blank cells.
func gutterLines(bg BgStyle, gutter int, text string, style lipgloss.Style) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = bg.Spaces(gutter) + bg.Render(line, style)
	}
	return strings.Join(lines, "\n")
}

// renderVitals renders the vitals form and the latest evaluation.
func (m Model) renderVitals(width int) string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.paneBackground(m.vitals.active))
	st := m.snapshot.Vitals

	field := func(label string, input textinput.Model, focused bool) string {
		labelStyle := styles.MutedText
		if focused && m.vitals.active {
			labelStyle = styles.AccentText.Bold(true)
		}
		return " " + labelStyle.Background(bg.Color()).Width(16).Render(label) + input.View()
	}

	lines := []string{
		field("Temperature °C", m.vitals.temp, m.vitals.focus == 0),
		field("Heart rate bpm", m.vitals.bpm, m.vitals.focus == 1),
		"",
	}

	switch {
	case st.Busy:
		lines = append(lines, " "+bg.Render("Evaluating...", styles.WarningText))
	case st.Err != "":
		lines = append(lines, gutterLines(bg, 1, wrap(st.Err, max(width-4, 10)), styles.DangerText))
	case st.Result != nil:
		lines = append(lines, m.renderVitalsResult(*st.Result, bg, styles, width)...)
	case !m.vitals.active:
		lines = append(lines, " "+bg.Render("Press v to enter readings.", styles.FaintText))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderVitalsResult(res triage.VitalsResult, bg BgStyle, styles Styles, width int) []string {
	var lines []string
	if risk := res.Risk(); risk != "" {
		lines = append(lines, " "+bg.Render("Risk:", styles.MutedText)+bg.Space()+
			styles.StatusStyle(risk).Render(strings.ToUpper(risk)))
	}
	for _, alert := range res.Alerts() {
		lines = append(lines, " "+bg.Render("! "+truncate(alert, max(width-6, 10)), styles.WarningText))
	}
	lines = append(lines, " "+bg.Render("Source:", styles.MutedText)+bg.Space()+
		bg.Render(orDash(res.Source), styles.InfoText))
	if res.Risk() == "" {
		lines = append(lines, gutterLines(bg, 3, prettyJSON(res.Result), styles.Text))
	}
	return lines
}

// renderMonitor renders the log list beside (or above) the vitals box.
func (m Model) renderMonitor() string {
	logsWidth, vitalsWidth := m.monitorWidths()
	logsTitle := "Monitor log"
	if n := len(m.snapshot.Monitor.Logs); n > 0 {
		logsTitle += " (" + strconv.Itoa(n) + ")"
	}
	logs := m.renderTitledBox(logsTitle, m.monitorViewport.View(), logsWidth, m.monitorLogsHeight(), !m.vitals.active)

	if m.width < LayoutCompactWidth {
		vitals := m.renderTitledBox("Vitals", m.renderVitals(vitalsWidth-2), vitalsWidth, vitalsBoxHeight, m.vitals.active)
		return logs + "\n" + vitals
	}
	vitals := m.renderTitledBox("Vitals", m.renderVitals(vitalsWidth-2), vitalsWidth, m.contentHeight(), m.vitals.active)
	return lipgloss.JoinHorizontal(lipgloss.Top, logs, vitals)
}
