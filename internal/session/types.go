package session

import (
	"context"
	"time"

	"github.com/five82/triagedesk/internal/triage"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation thread.
type Message struct {
	ID        string
	Role      Role
	Text      string
	CreatedAt time.Time
	Pending   bool // placeholder still waiting for its reply
}

// Panel selects the active view.
type Panel int

const (
	PanelChat Panel = iota
	PanelExtract
	PanelMonitor
	PanelImaging
)

// Panels lists the panels in display order.
var Panels = []Panel{PanelChat, PanelExtract, PanelMonitor, PanelImaging}

func (p Panel) String() string {
	switch p {
	case PanelChat:
		return "Chat"
	case PanelExtract:
		return "Extract"
	case PanelMonitor:
		return "Monitor"
	case PanelImaging:
		return "Imaging"
	default:
		return "Unknown"
	}
}

// Task is the blocking half of an operation started on the Controller. It
// performs the request, stores the outcome and releases the operation's busy
// flag before returning.
type Task func(ctx context.Context)

// ExtractState holds the structured-extraction panel cells.
type ExtractState struct {
	Busy   bool
	Result *triage.ExtractionResult
	Err    string
}

// CycleOutcome records the most recent monitor cycle trigger.
type CycleOutcome struct {
	OK    bool
	Error string
	At    time.Time
}

// MonitorState holds the monitoring panel cells. Busy and Err are shared by
// the log read and the cycle trigger.
type MonitorState struct {
	Busy      bool
	Logs      []triage.LogEntry
	Err       string
	Loaded    bool
	LastCycle *CycleOutcome
}

// VitalsState holds the vitals evaluation cells.
type VitalsState struct {
	Busy   bool
	Result *triage.VitalsResult
	Err    string
}

// ImagingState holds the image-service health cells.
type ImagingState struct {
	Busy    bool
	Health  *triage.ServiceHealth
	Err     string
	Checked time.Time
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	UserID     string
	Mode       triage.AssistantMode
	ConsoleURL string
	Panel      Panel
	Messages   []Message
	Sending    bool

	Extract ExtractState
	Monitor MonitorState
	Vitals  VitalsState
	Imaging ImagingState
}

// Busy reports whether any request is in flight.
func (s Snapshot) Busy() bool {
	return s.Sending || s.Extract.Busy || s.Monitor.Busy || s.Vitals.Busy || s.Imaging.Busy
}

// Suggestion is a canned prompt offered below the chat input.
type Suggestion struct {
	Label string
	Text  string
}

// Suggestions are the quick prompts shown in the chat panel.
var Suggestions = []Suggestion{
	{Label: "Agendar consulta", Text: "Quero agendar uma consulta"},
	{Label: "Dor no peito", Text: "Estou com dor no peito"},
	{Label: "Pressão alta", Text: "O que é pressão alta?"},
}
