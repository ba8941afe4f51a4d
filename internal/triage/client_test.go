package triage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, defaultAPIURL, u.Host)

	u, err = parseBaseURL("https://triage.example.com:8443/ui?x=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "https://triage.example.com:8443", u.String())

	_, err = parseBaseURL("http://")
	assert.Error(t, err)
}

func TestParseAssistantMode(t *testing.T) {
	tests := []struct {
		in   string
		want AssistantMode
	}{
		{"local", ModeLocal},
		{"  MOCK ", ModeLocal},
		{"watson", ModeRemote},
		{"Watson", ModeRemote},
		{"", ModeUnavailable},
		{"gemini", ModeUnavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAssistantMode(tt.in), "ParseAssistantMode(%q)", tt.in)
	}
}

func TestClient_EndpointsRequestsAndDecoding(t *testing.T) {
	t.Parallel()

	var gotMessage MessageRequest
	var gotExtract map[string]any
	var gotVitals map[string]any
	var gotUserAgent, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/status":
			_, _ = io.WriteString(w, `{"mode":"watson","assistant":"watson","assistant_id":"a-1","environment_id":null}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/config":
			_, _ = io.WriteString(w, `{"watson_console_url":"https://console.example.com"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/message":
			gotContentType = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&gotMessage)
			_, _ = io.WriteString(w, `{"response":"Vamos agendar...","intents":[{"intent":"agendar"}],"entities":[]}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/clinical/extract":
			_ = json.NewDecoder(r.Body).Decode(&gotExtract)
			_, _ = io.WriteString(w, `{"source":"local-fallback","summary":"febre","structured":{"sintomas":["febre"]},"triage":{"risk":"medio"}}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/monitor/logs":
			_, _ = io.WriteString(w, `{"logs":[{"patient":"Maria","timestamp":"2025-03-01T10:00:00","status":"CRITICAL","vitals":{"bp":"180/110","hr":130},"ai_analysis":"Notificar"}]}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/monitor/run_once":
			_, _ = io.WriteString(w, `{"ok":true,"logs":[{"patient":7,"timestamp":"2025-03-01T10:05:00","status":"CRITICAL"}]}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/phase3/vitals":
			_ = json.NewDecoder(r.Body).Decode(&gotVitals)
			_, _ = io.WriteString(w, `{"source":"local-fallback","result":{"risk":"high","alerts":["Febre"]}}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/phase4/health":
			_, _ = io.WriteString(w, `{"available":true,"health":{"status":"ok"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	status, err := c.FetchStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, ModeRemote, status.AssistantMode())
	assert.Equal(t, "a-1", status.AssistantID)

	cfg, err := c.FetchConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://console.example.com", cfg.ConsoleURL)

	reply, err := c.SendMessage(ctx, MessageRequest{Message: "Quero agendar uma consulta", UserID: "user_1"})
	require.NoError(t, err)
	assert.Equal(t, "Vamos agendar...", reply.Response)
	assert.Equal(t, MessageRequest{Message: "Quero agendar uma consulta", UserID: "user_1"}, gotMessage)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `[{"intent":"agendar"}]`, string(reply.Intents))

	extraction, err := c.ExtractClinical(ctx, "tenho febre")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "tenho febre"}, gotExtract)
	assert.Equal(t, "local-fallback", extraction.Source)
	assert.Equal(t, "febre", extraction.Summary)
	assert.JSONEq(t, `{"sintomas":["febre"]}`, string(extraction.Structured))
	assert.JSONEq(t, `{"risk":"medio"}`, string(extraction.Triage))

	logs, err := c.FetchMonitorLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Maria", logs[0].Patient)
	assert.Equal(t, "CRITICAL", logs[0].Status)
	assert.Equal(t, "Notificar", logs[0].Analysis)
	assert.Equal(t, "180/110", logs[0].Vitals["bp"])
	assert.False(t, logs[0].ParsedTime().IsZero())

	cycle, err := c.RunMonitorCycle(ctx)
	require.NoError(t, err)
	assert.True(t, cycle.OK)
	require.Len(t, cycle.Logs, 1)
	assert.Equal(t, "7", cycle.Logs[0].Patient)

	temp := 39.0
	vitals, err := c.EvaluateVitals(ctx, VitalsRequest{TS: 1700000000, Temp: &temp})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ts": float64(1700000000), "temp": float64(39), "bpm": nil}, gotVitals)
	assert.Equal(t, "local-fallback", vitals.Source)
	assert.Equal(t, "high", vitals.Risk())
	assert.Equal(t, []string{"Febre"}, vitals.Alerts())

	health, err := c.FetchImagingHealth(ctx)
	require.NoError(t, err)
	assert.True(t, health.Available)
	assert.JSONEq(t, `{"status":"ok"}`, string(health.Health))

	assert.True(t, strings.HasPrefix(gotUserAgent, "triagedesk/"), "User-Agent = %q", gotUserAgent)
}

func TestClient_FailureStatusUsesErrorFieldOrFallback(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/message":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, `{"error":"assistant offline"}`)
		case "/api/clinical/extract":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `<html>boom</html>`)
		case "/api/phase3/vitals":
			// Success-shaped body on a failure status is still a failure.
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"source":"x","result":{}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.SendMessage(ctx, MessageRequest{Message: "oi", UserID: "u"})
	require.Error(t, err)
	assert.True(t, IsAPIError(err))
	assert.Equal(t, "assistant offline", err.Error())

	_, err = c.ExtractClinical(ctx, "texto")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "/api/clinical/extract", apiErr.Path)
	assert.Equal(t, FallbackExtraction, apiErr.Message)

	_, err = c.EvaluateVitals(ctx, VitalsRequest{TS: 1})
	require.Error(t, err)
	assert.Equal(t, FallbackVitals, err.Error())

	_, err = c.FetchMonitorLogs(ctx)
	require.Error(t, err)
	assert.Equal(t, FallbackLogs, err.Error())
}

func TestClient_UndecodableSuccessBodyIsEmpty(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{not-json")
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	status, err := c.FetchStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeUnavailable, status.AssistantMode())

	reply, err := c.SendMessage(context.Background(), MessageRequest{Message: "oi"})
	require.NoError(t, err)
	assert.Empty(t, reply.Response)
}

func TestClient_TransportErrorIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	c, err := NewClient(addr, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = c.FetchStatus(context.Background())
	require.Error(t, err)
	assert.False(t, IsAPIError(err))
	assert.Contains(t, err.Error(), "execute request")
}

func TestClient_WithHTTPClientIsUsed(t *testing.T) {
	t.Parallel()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"assistant":"mock"}`)
	}))
	t.Cleanup(server.Close)

	// The default client rejects the test certificate; the server's own client trusts it.
	c, err := NewClient(server.URL, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	status, err := c.FetchStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, status.AssistantMode())
}

func TestClient_MonitorLogsKeepNonObjectRecords(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"logs":["rotated at 10:00",{"patient":"Ana","status":"OK"},42]}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	logs, err := c.FetchMonitorLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Empty(t, logs[0].Patient)
	assert.JSONEq(t, `"rotated at 10:00"`, string(logs[0].Raw))
	assert.Equal(t, "Ana", logs[1].Patient)
	assert.Equal(t, "OK", logs[1].Status)
	assert.JSONEq(t, `42`, string(logs[2].Raw))

	out, err := json.Marshal(logs[0])
	require.NoError(t, err)
	assert.JSONEq(t, `"rotated at 10:00"`, string(out))
}

func TestLogEntry_RoundTripKeepsRawRecord(t *testing.T) {
	raw := `{"patient":"Ana","timestamp":"2025-03-01T10:00:00.123456","status":"CRITICAL","extra":{"k":1}}`
	var e LogEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, "Ana", e.Patient)
	assert.Empty(t, e.Analysis)

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestVitalsResult_RiskMissing(t *testing.T) {
	assert.Empty(t, VitalsResult{}.Risk())
	assert.Empty(t, VitalsResult{Result: json.RawMessage(`{"alerts":[]}`)}.Risk())
	assert.Empty(t, VitalsResult{Result: json.RawMessage(`[1,2]`)}.Alerts())
}
