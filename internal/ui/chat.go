package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/triagedesk/internal/session"
)

// handleChatKey handles keys while the chat panel is active.
func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		task, ok := m.session.SendMessage(m.chatInput.Value())
		if !ok {
			return m, nil
		}
		m.chatInput.Reset()
		return m.started(task)

	case key.Matches(msg, m.keys.Suggestion):
		i := suggestionIndex(msg.String())
		task, ok := m.session.SendSuggestion(i)
		if !ok {
			return m, nil
		}
		return m.started(task)

	case key.Matches(msg, m.keys.ScrollUp):
		m.chatViewport.PageUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.chatViewport.PageDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// suggestionIndex maps "alt+N" to a zero-based suggestion index.
func suggestionIndex(keyName string) int {
	n := strings.TrimPrefix(keyName, "alt+")
	if len(n) != 1 || n[0] < '1' || n[0] > '9' {
		return -1
	}
	return int(n[0] - '1')
}

// updateChatViewport re-renders the transcript. The view follows new messages
// unless the user has scrolled up.
func (m *Model) updateChatViewport() {
	if m.chatViewport.Width <= 0 {
		return
	}
	follow := m.chatViewport.AtBottom() || len(m.snapshot.Messages) != m.chatCount
	m.chatCount = len(m.snapshot.Messages)

	m.chatViewport.SetContent(m.renderTranscript(m.chatViewport.Width))
	if follow {
		m.chatViewport.GotoBottom()
	}
}

// renderTranscript renders the conversation as labelled, wrapped blocks.
func (m Model) renderTranscript(width int) string {
	styles := m.theme.Styles()
	bgColor := m.paneBackground(true)
	bg := NewBgStyle(bgColor)

	if len(m.snapshot.Messages) == 0 {
		return bg.Render(" No messages yet.", styles.FaintText)
	}

	bodyWidth := max(width-4, 10)
	blocks := make([]string, 0, len(m.snapshot.Messages))
	for _, msg := range m.snapshot.Messages {
		var label string
		var labelStyle, textStyle lipgloss.Style
		switch msg.Role {
		case session.RoleUser:
			label, labelStyle, textStyle = "You", styles.AccentText.Bold(true), styles.Text
		default:
			label, labelStyle, textStyle = "Assistant", styles.SuccessText, styles.Text
		}
		switch {
		case msg.Pending:
			textStyle = styles.FaintText.Italic(true)
		case msg.Role == session.RoleAssistant && strings.HasPrefix(msg.Text, "Error: "):
			textStyle = styles.DangerText
		}

		header := " " + bg.Render(label, labelStyle) + bg.Space() +
			bg.Render(formatClock(msg.CreatedAt), styles.FaintText)

		blocks = append(blocks, header+"\n"+gutterLines(bg, 3, wrap(msg.Text, bodyWidth), textStyle))
	}
	return strings.Join(blocks, "\n\n")
}

// renderChat renders the transcript, the suggestion chips and the input.
func (m Model) renderChat() string {
	transcript := m.renderTitledBox("Conversation", m.chatViewport.View(), m.width, m.chatBoxHeight(), false)
	input := m.renderTitledBox(m.chatInputTitle(), m.chatInput.View(), m.width, inputBoxHeight(), true)
	return transcript + "\n" + m.renderSuggestions() + "\n" + input
}

func (m Model) chatInputTitle() string {
	if m.snapshot.Sending {
		return "Message (waiting for reply)"
	}
	return "Message"
}

// renderSuggestions renders the quick prompts with their shortcuts.
func (m Model) renderSuggestions() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	labelStyle := styles.Text
	if m.snapshot.Sending {
		labelStyle = styles.FaintText
	}

	parts := []string{bg.Render("Try:", styles.MutedText)}
	for i, s := range session.Suggestions {
		parts = append(parts,
			bg.Render("alt+"+string(rune('1'+i)), styles.AccentText)+bg.Space()+
				bg.Render(s.Label, labelStyle))
	}
	return bg.FillLine(" "+bg.Join(parts, "   "), m.width)
}
