package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/five82/triagedesk/internal/logtail"
	"github.com/five82/triagedesk/internal/prefs"
	"github.com/five82/triagedesk/internal/session"
)

// Options configures the UI.
type Options struct {
	Context            context.Context
	Session            *session.Controller
	Startup            []session.Task // run once when the program starts
	ThemeName          string
	PrefsPath          string
	LogPath            string
	APIURL             string
	ConsoleFallbackURL string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx             context.Context
	session         *session.Controller
	startup         []session.Task
	keys            keyMap
	prefsPath       string
	logPath         string
	apiURL          string
	consoleFallback string

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	spinner  spinner.Model
	spinning bool
	notice   string

	// Data state
	snapshot  session.Snapshot
	chatCount int

	// Chat
	chatInput    textarea.Model
	chatViewport viewport.Model

	// Extract
	extractInput    textarea.Model
	extractViewport viewport.Model

	// Monitor
	monitorViewport viewport.Model
	vitals          vitalsForm

	// Imaging
	imagingViewport viewport.Model

	// Overlays
	showHelp    bool
	showLog     bool
	logViewport viewport.Model
	logLines    []logtail.Line
	logErr      string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.DefaultTheme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	keys := DefaultKeyMap()

	m := Model{
		ctx:             ctx,
		session:         opts.Session,
		startup:         opts.Startup,
		keys:            keys,
		prefsPath:       prefsPath,
		logPath:         opts.LogPath,
		apiURL:          opts.APIURL,
		consoleFallback: strings.TrimSpace(opts.ConsoleFallbackURL),
		theme:           GetTheme(themeName),
		spinner:         spinner.New(spinner.WithSpinner(spinner.Dot)),
		chatInput:       newTextarea("Type a message...", keys),
		extractInput:    newTextarea("Paste clinical notes to structure...", keys),
		vitals:          newVitalsForm(),
		chatViewport:    viewport.New(0, 0),
		extractViewport: viewport.New(0, 0),
		monitorViewport: viewport.New(0, 0),
		imagingViewport: viewport.New(0, 0),
		logViewport:     viewport.New(0, 0),
	}
	if m.session != nil {
		m.snapshot = m.session.Snapshot()
	}
	m.focusInputs()
	return m
}

func newTextarea(placeholder string, keys keyMap) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = "│ "
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = keys.Newline
	return ta
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	for _, task := range m.startup {
		cmds = append(cmds, runTaskCmd(m.ctx, task))
	}
	if len(m.startup) > 0 {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		m.refreshViewports()
		return m, nil

	case sessionMsg:
		m.snapshot = m.session.Snapshot()
		m.refreshViewports()
		return m, m.startSpinner()

	case spinner.TickMsg:
		m.snapshot = m.session.Snapshot()
		if !m.snapshot.Busy() {
			m.refreshViewports()
			m.spinning = false
			return m, nil
		}
		m.spinning = true
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clientLogMsg:
		m.logLines = msg.lines
		m.logErr = ""
		if msg.err != nil {
			m.logErr = msg.err.Error()
		}
		m.updateLogViewport()
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Str("path", m.prefsPath).Msg("save prefs failed")
			m.notice = "theme not saved: " + msg.err.Error()
		}
		return m, nil
	}

	// Cursor blink and other internal messages go to the focused input.
	return m.updateFocusedInput(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showLog {
		return m.renderClientLog()
	}
	return m.renderMain()
}

// handleKey processes keyboard input: overlays first, then global keys, then
// the active panel.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.showLog {
		return m.handleClientLogKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help),
		key.Matches(msg, m.keys.HelpAlt) && !m.inputFocused():
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.refreshViewports()
		return m, savePrefsCmd(m.prefsPath, m.theme.Name)

	case key.Matches(msg, m.keys.ClientLog):
		m.showLog = true
		return m, readClientLogCmd(m.logPath)

	case key.Matches(msg, m.keys.PanelChat):
		return m.switchPanel(session.PanelChat)
	case key.Matches(msg, m.keys.PanelExtract):
		return m.switchPanel(session.PanelExtract)
	case key.Matches(msg, m.keys.PanelMonitor):
		return m.switchPanel(session.PanelMonitor)
	case key.Matches(msg, m.keys.PanelImaging):
		return m.switchPanel(session.PanelImaging)

	case key.Matches(msg, m.keys.NextPanel) && !m.vitals.active:
		return m.switchPanel(cyclePanel(m.snapshot.Panel, 1))
	case key.Matches(msg, m.keys.PrevPanel) && !m.vitals.active:
		return m.switchPanel(cyclePanel(m.snapshot.Panel, -1))
	}

	switch m.snapshot.Panel {
	case session.PanelChat:
		return m.handleChatKey(msg)
	case session.PanelExtract:
		return m.handleExtractKey(msg)
	case session.PanelMonitor:
		return m.handleMonitorKey(msg)
	case session.PanelImaging:
		return m.handleImagingKey(msg)
	}
	return m, nil
}

// switchPanel activates p and runs whatever loads the controller schedules for
// the transition.
func (m Model) switchPanel(p session.Panel) (tea.Model, tea.Cmd) {
	if m.session == nil {
		return m, nil
	}
	m.vitals.blur()
	tasks := m.session.SetPanel(p)
	m.snapshot = m.session.Snapshot()
	m.focusInputs()
	m.refreshViewports()
	return m, m.runTasks(tasks...)
}

func cyclePanel(current session.Panel, step int) session.Panel {
	n := len(session.Panels)
	for i, p := range session.Panels {
		if p == current {
			return session.Panels[((i+step)%n+n)%n]
		}
	}
	return session.PanelChat
}

// started records the optimistic state of an accepted operation and schedules
// its task.
func (m Model) started(task session.Task) (tea.Model, tea.Cmd) {
	m.snapshot = m.session.Snapshot()
	m.refreshViewports()
	return m, m.runTasks(task)
}

func (m *Model) runTasks(tasks ...session.Task) tea.Cmd {
	var cmds []tea.Cmd
	for _, task := range tasks {
		if task != nil {
			cmds = append(cmds, runTaskCmd(m.ctx, task))
		}
	}
	if cmd := m.startSpinner(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning || !m.snapshot.Busy() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// inputFocused reports whether keystrokes are going into a text field.
func (m Model) inputFocused() bool {
	switch m.snapshot.Panel {
	case session.PanelChat, session.PanelExtract:
		return true
	case session.PanelMonitor:
		return m.vitals.active
	}
	return false
}

func (m *Model) focusInputs() {
	m.chatInput.Blur()
	m.extractInput.Blur()
	switch m.snapshot.Panel {
	case session.PanelChat:
		m.chatInput.Focus()
	case session.PanelExtract:
		m.extractInput.Focus()
	}
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.snapshot.Panel {
	case session.PanelChat:
		m.chatInput, cmd = m.chatInput.Update(msg)
	case session.PanelExtract:
		m.extractInput, cmd = m.extractInput.Update(msg)
	case session.PanelMonitor:
		if m.vitals.active {
			cmd = m.vitals.update(msg)
		}
	}
	return m, cmd
}

// renderMain renders header, command bar and the active panel.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.snapshot.Panel {
	case session.PanelChat:
		return m.renderChat()
	case session.PanelExtract:
		return m.renderExtract()
	case session.PanelMonitor:
		return m.renderMonitor()
	case session.PanelImaging:
		return m.renderImaging()
	default:
		return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, "")
	}
}

// Messages

// sessionMsg signals that a task finished. Results from different tasks can
// arrive out of order, so Update re-reads the controller instead of trusting a
// copy taken on the task's goroutine.
type sessionMsg struct{}

type clientLogMsg struct {
	lines []logtail.Line
	err   error
}

type prefsSavedMsg struct{ err error }

// Commands

func runTaskCmd(ctx context.Context, task session.Task) tea.Cmd {
	return func() tea.Msg {
		task(ctx)
		return sessionMsg{}
	}
}

func savePrefsCmd(path, theme string) tea.Cmd {
	return func() tea.Msg {
		return prefsSavedMsg{err: prefs.Save(path, prefs.Prefs{Theme: theme})}
	}
}

func readClientLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if strings.TrimSpace(path) == "" {
			return clientLogMsg{err: errors.New("file logging is disabled")}
		}
		raw, err := logtail.Read(path, clientLogLines)
		if err != nil {
			return clientLogMsg{err: err}
		}
		lines := make([]logtail.Line, 0, len(raw))
		for _, r := range raw {
			lines = append(lines, logtail.Parse(r))
		}
		return clientLogMsg{lines: lines}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
