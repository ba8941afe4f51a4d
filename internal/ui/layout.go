package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Layout constants.
const (
	// chromeHeight covers the header and command bar.
	chromeHeight = 2

	// chatInputLines is the visible height of the chat and extract textareas.
	chatInputLines = 3

	// LayoutCompactWidth is the threshold below which panes stack vertically.
	LayoutCompactWidth = 100

	// clientLogLines caps how much of the client log the overlay loads.
	clientLogLines = 400
)

// contentHeight is the height available below the header and command bar.
func (m Model) contentHeight() int {
	return max(m.height-chromeHeight, 3)
}

// inputBoxHeight is the height of a titled box holding a textarea.
func inputBoxHeight() int {
	return chatInputLines + 2
}

// chatBoxHeight is the height of the chat transcript box. One line is kept for
// the suggestion chips.
func (m Model) chatBoxHeight() int {
	return max(m.contentHeight()-inputBoxHeight()-1, 3)
}

// monitorWidths splits the monitor panel between the log list and vitals.
func (m Model) monitorWidths() (logs, vitals int) {
	if m.width < LayoutCompactWidth {
		return m.width, m.width
	}
	logs = m.width * 60 / 100
	return logs, m.width - logs
}

// resize recomputes component dimensions after a window change.
func (m *Model) resize() {
	inner := max(m.width-2, 1)

	m.chatInput.SetWidth(inner)
	m.chatInput.SetHeight(chatInputLines)
	m.chatViewport.Width = inner
	m.chatViewport.Height = m.chatBoxHeight() - 2

	m.extractInput.SetWidth(inner)
	m.extractInput.SetHeight(chatInputLines)
	m.extractViewport.Width = inner
	m.extractViewport.Height = max(m.contentHeight()-inputBoxHeight()-2, 1)

	logsWidth, _ := m.monitorWidths()
	m.monitorViewport.Width = max(logsWidth-2, 1)
	m.monitorViewport.Height = max(m.monitorLogsHeight()-2, 1)

	m.imagingViewport.Width = inner
	m.imagingViewport.Height = max(m.contentHeight()-2, 1)

	m.logViewport.Width = inner
	m.logViewport.Height = max(m.height-3, 1)
}

// monitorLogsHeight is the height of the monitor log box. In compact mode the
// vitals box stacks below it.
func (m Model) monitorLogsHeight() int {
	if m.width < LayoutCompactWidth {
		return max(m.contentHeight()-vitalsBoxHeight, 3)
	}
	return m.contentHeight()
}

// renderTitledBox renders content in a box with the title embedded in the top
// border: ┌─── Title ───┐. Focused boxes use the focus border and background.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().
		Width(innerWidth).
		MaxWidth(innerWidth).
		Background(lipgloss.Color(bgColorStr))

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	lines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}

// paneBackground returns the background color used inside a titled box.
func (m Model) paneBackground(focused bool) string {
	if focused {
		return m.theme.FocusBg
	}
	return m.theme.SurfaceAlt
}

// refreshViewports re-renders every panel body from the current snapshot.
func (m *Model) refreshViewports() {
	m.updateChatViewport()
	m.updateExtractViewport()
	m.updateMonitorViewport()
	m.updateImagingViewport()
}
