package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	HelpAlt    key.Binding // only outside text inputs
	CycleTheme key.Binding
	ClientLog  key.Binding
	NextPanel  key.Binding
	PrevPanel  key.Binding
	Escape     key.Binding

	// Panel jumps
	PanelChat    key.Binding
	PanelExtract key.Binding
	PanelMonitor key.Binding
	PanelImaging key.Binding

	// Scrolling
	ScrollUp   key.Binding
	ScrollDown key.Binding
	LineUp     key.Binding
	LineDown   key.Binding

	// Chat and extract
	Submit     key.Binding
	Newline    key.Binding
	Suggestion key.Binding

	// Monitor and imaging
	Reload     key.Binding
	RunCycle   key.Binding
	EditVitals key.Binding
	NextField  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f5"),
			key.WithHelp("f5", "Help and about"),
		),
		HelpAlt: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Help (outside inputs)"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "Cycle theme"),
		),
		ClientLog: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "Client log"),
		),
		NextPanel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next panel"),
		),
		PrevPanel: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous panel"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close / leave form"),
		),

		PanelChat: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "Chat"),
		),
		PanelExtract: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "Extract"),
		),
		PanelMonitor: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("f3", "Monitor"),
		),
		PanelImaging: key.NewBinding(
			key.WithKeys("f4"),
			key.WithHelp("f4", "Imaging"),
		),

		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Page up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "Page down"),
		),
		LineUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("k/up", "Scroll up"),
		),
		LineDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("j/down", "Scroll down"),
		),

		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("alt+enter", "Newline"),
		),
		Suggestion: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3"),
			key.WithHelp("alt+1..3", "Send suggestion"),
		),

		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),
		RunCycle: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Run monitor cycle"),
		),
		EditVitals: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Vitals form"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "Next field"),
		),
	}
}

// FullHelp returns key bindings grouped for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPanel, k.PrevPanel, k.PanelChat, k.PanelExtract, k.PanelMonitor, k.PanelImaging, k.ScrollUp, k.ScrollDown},
		{k.Submit, k.Newline, k.Suggestion},
		{k.Reload, k.RunCycle, k.EditVitals, k.NextField, k.Escape},
		{k.CycleTheme, k.ClientLog, k.Help, k.HelpAlt, k.Quit},
	}
}
