package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/five82/triagedesk/internal/triage"
)

// Display strings written into the thread.
const (
	TypingText     = "Typing..."
	NoResponseText = "No response."
	errorPrefix    = "Error: "
)

// ErrBusy is returned when an operation's previous request is still in flight.
var ErrBusy = errors.New("request already in flight")

// Options configure a Controller.
type Options struct {
	// Greeting seeds the thread with one assistant message. Empty disables it.
	Greeting string
	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// Controller owns all mutable UI state and mediates between user actions and
// the backend. Start methods run synchronously and return a Task that performs
// the request; every busy flag is released by its Task regardless of outcome.
type Controller struct {
	api   triage.API
	now   func() time.Time
	newID func() string

	mu         sync.RWMutex
	userID     string
	mode       triage.AssistantMode
	consoleURL string
	panel      Panel
	messages   []Message
	sending    bool
	extract    ExtractState
	monitor    MonitorState
	vitals     VitalsState
	imaging    ImagingState
}

// New creates a Controller with a fresh per-session user id.
func New(api triage.API, opts Options) *Controller {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	c := &Controller{
		api:    api,
		now:    now,
		newID:  newID,
		userID: "user_" + uuid.NewString(),
		mode:   triage.ModeUnavailable,
		panel:  PanelChat,
	}
	if greeting := strings.TrimSpace(opts.Greeting); greeting != "" {
		c.messages = append(c.messages, Message{
			ID:        newID(),
			Role:      RoleAssistant,
			Text:      greeting,
			CreatedAt: now(),
		})
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UserID:     c.userID,
		Mode:       c.mode,
		ConsoleURL: c.consoleURL,
		Panel:      c.panel,
		Messages:   cloneMessages(c.messages),
		Sending:    c.sending,
		Extract:    c.extract,
		Monitor:    c.monitor,
		Vitals:     c.vitals,
		Imaging:    c.imaging,
	}
	snap.Monitor.Logs = cloneLogs(c.monitor.Logs)
	if c.monitor.LastCycle != nil {
		cycle := *c.monitor.LastCycle
		snap.Monitor.LastCycle = &cycle
	}
	return snap
}

// Initialize returns the two independent startup fetches: the status probe and
// the configuration. Both fail silently into safe defaults.
func (c *Controller) Initialize() []Task {
	return []Task{c.refreshMode, c.loadConfig}
}

// SetPanel switches the active panel. Panel-specific loads are returned only
// when the panel actually changes, so each activation loads exactly once.
func (c *Controller) SetPanel(p Panel) []Task {
	c.mu.Lock()
	if p == c.panel {
		c.mu.Unlock()
		return nil
	}
	c.panel = p
	c.mu.Unlock()

	var task Task
	var ok bool
	switch p {
	case PanelMonitor:
		task, ok = c.startMonitorLoad(true)
	case PanelImaging:
		task, ok = c.startImagingCheck(true)
	}
	if !ok {
		return nil
	}
	return []Task{task}
}

func (c *Controller) refreshMode(ctx context.Context) {
	mode := triage.ModeUnavailable
	status, err := c.api.FetchStatus(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("status probe failed")
	} else {
		mode = status.AssistantMode()
	}
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
}

func (c *Controller) loadConfig(ctx context.Context) {
	cfg, err := c.api.FetchConfig(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("config fetch failed")
		cfg = triage.ConfigResponse{}
	}
	c.mu.Lock()
	c.consoleURL = strings.TrimSpace(cfg.ConsoleURL)
	c.mu.Unlock()
}

// acquire flips flag to true unless it already is. Caller must not hold mu.
func (c *Controller) acquire(flag *bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if *flag {
		return false
	}
	*flag = true
	return true
}

func (c *Controller) release(flag *bool) {
	c.mu.Lock()
	*flag = false
	c.mu.Unlock()
}

// failureReason turns an error into display text, falling back when empty.
func failureReason(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

func cloneMessages(msgs []Message) []Message {
	if len(msgs) == 0 {
		return nil
	}
	dup := make([]Message, len(msgs))
	copy(dup, msgs)
	return dup
}

func cloneLogs(entries []triage.LogEntry) []triage.LogEntry {
	if entries == nil {
		return nil
	}
	dup := make([]triage.LogEntry, len(entries))
	copy(dup, entries)
	return dup
}
