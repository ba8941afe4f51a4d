package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/triagedesk/internal/triage"
)

// fakeAPI records calls and returns canned replies. A non-nil gate blocks
// SendMessage until it is closed.
type fakeAPI struct {
	mu sync.Mutex

	status    triage.StatusResponse
	statusErr error
	config    triage.ConfigResponse
	configErr error

	reply    triage.MessageResponse
	replyErr error
	gate     chan struct{}
	messages []triage.MessageRequest

	extraction    triage.ExtractionResult
	extractionErr error

	logs      []triage.LogEntry
	logsErr   error
	logsCalls int
	cycle     triage.CycleResult
	cycleErr  error

	vitals    triage.VitalsResult
	vitalsErr error
	vitalsReq []triage.VitalsRequest

	health      triage.ServiceHealth
	healthErr   error
	healthCalls int
	statusCalls int
}

func (f *fakeAPI) FetchStatus(context.Context) (triage.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	return f.status, f.statusErr
}

func (f *fakeAPI) FetchConfig(context.Context) (triage.ConfigResponse, error) {
	return f.config, f.configErr
}

func (f *fakeAPI) SendMessage(_ context.Context, req triage.MessageRequest) (triage.MessageResponse, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, req)
	return f.reply, f.replyErr
}

func (f *fakeAPI) ExtractClinical(context.Context, string) (triage.ExtractionResult, error) {
	return f.extraction, f.extractionErr
}

func (f *fakeAPI) FetchMonitorLogs(context.Context) ([]triage.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logsCalls++
	return f.logs, f.logsErr
}

func (f *fakeAPI) RunMonitorCycle(context.Context) (triage.CycleResult, error) {
	return f.cycle, f.cycleErr
}

func (f *fakeAPI) EvaluateVitals(_ context.Context, req triage.VitalsRequest) (triage.VitalsResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vitalsReq = append(f.vitalsReq, req)
	return f.vitals, f.vitalsErr
}

func (f *fakeAPI) FetchImagingHealth(context.Context) (triage.ServiceHealth, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthCalls++
	return f.health, f.healthErr
}

func newTestController(api triage.API, greeting string) *Controller {
	var n int
	return New(api, Options{
		Greeting: greeting,
		Now:      func() time.Time { return time.Unix(1700000000, 0) },
		NewID: func() string {
			n++
			return fmt.Sprintf("m%d", n)
		},
	})
}

func runAll(tasks []Task) {
	for _, task := range tasks {
		task(context.Background())
	}
}

func TestNew_GreetingAndUserID(t *testing.T) {
	c := newTestController(&fakeAPI{}, "Olá! Como posso ajudar?")
	snap := c.Snapshot()

	require.Len(t, snap.Messages, 1)
	assert.Equal(t, RoleAssistant, snap.Messages[0].Role)
	assert.Equal(t, "Olá! Como posso ajudar?", snap.Messages[0].Text)
	assert.Regexp(t, `^user_[0-9a-f-]{36}$`, snap.UserID)
	assert.Equal(t, triage.ModeUnavailable, snap.Mode)
	assert.Equal(t, PanelChat, snap.Panel)

	quiet := newTestController(&fakeAPI{}, "  ")
	assert.Empty(t, quiet.Snapshot().Messages)
}

func TestInitialize_ResolvesModeAndConsoleURL(t *testing.T) {
	api := &fakeAPI{
		status: triage.StatusResponse{ConfiguredMode: "watson"},
		config: triage.ConfigResponse{ConsoleURL: " https://console.example.com "},
	}
	c := newTestController(api, "")

	tasks := c.Initialize()
	require.Len(t, tasks, 2)
	runAll(tasks)

	snap := c.Snapshot()
	assert.Equal(t, triage.ModeRemote, snap.Mode)
	assert.Equal(t, "https://console.example.com", snap.ConsoleURL)
}

func TestInitialize_FailuresFallBackSilently(t *testing.T) {
	api := &fakeAPI{
		statusErr: errors.New("connection refused"),
		configErr: errors.New("connection refused"),
	}
	c := newTestController(api, "")
	runAll(c.Initialize())

	snap := c.Snapshot()
	assert.Equal(t, triage.ModeUnavailable, snap.Mode)
	assert.Empty(t, snap.ConsoleURL)
	assert.Empty(t, snap.Messages)
	assert.False(t, snap.Busy())
}

func TestSetPanel_LoadsOncePerActivation(t *testing.T) {
	api := &fakeAPI{logs: []triage.LogEntry{{Patient: "Maria", Status: "CRITICAL"}}}
	c := newTestController(api, "")

	runAll(c.SetPanel(PanelMonitor))
	assert.Nil(t, c.SetPanel(PanelMonitor), "re-selecting the active panel must not reload")
	assert.Equal(t, 1, api.logsCalls)

	runAll(c.SetPanel(PanelChat))
	runAll(c.SetPanel(PanelMonitor))
	assert.Equal(t, 2, api.logsCalls)

	snap := c.Snapshot()
	assert.Equal(t, PanelMonitor, snap.Panel)
	require.Len(t, snap.Monitor.Logs, 1)
	assert.True(t, snap.Monitor.Loaded)
}

func TestSetPanel_QuietLoadFailureLeavesErrorSlot(t *testing.T) {
	api := &fakeAPI{
		logsErr:   &triage.APIError{Status: 500, Message: "db down"},
		healthErr: errors.New("timeout"),
	}
	c := newTestController(api, "")

	runAll(c.SetPanel(PanelMonitor))
	runAll(c.SetPanel(PanelImaging))

	snap := c.Snapshot()
	assert.Empty(t, snap.Monitor.Err)
	assert.Empty(t, snap.Imaging.Err)
	assert.False(t, snap.Monitor.Busy)
	assert.False(t, snap.Imaging.Busy)
	assert.Equal(t, 1, api.healthCalls)
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	api := &fakeAPI{logs: []triage.LogEntry{{Patient: "Ana"}}}
	c := newTestController(api, "Oi")
	runAll(c.SetPanel(PanelMonitor))

	snap := c.Snapshot()
	snap.Messages[0].Text = "changed"
	snap.Monitor.Logs[0].Patient = "changed"

	again := c.Snapshot()
	assert.Equal(t, "Oi", again.Messages[0].Text)
	assert.Equal(t, "Ana", again.Monitor.Logs[0].Patient)
}
