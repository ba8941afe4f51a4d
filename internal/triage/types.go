package triage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AssistantMode describes which assistant implementation the backend is running.
type AssistantMode string

const (
	ModeLocal       AssistantMode = "LOCAL"
	ModeRemote      AssistantMode = "REMOTE-SERVICE"
	ModeUnavailable AssistantMode = "UNAVAILABLE"
)

// ParseAssistantMode maps the status probe's assistant field to a mode.
func ParseAssistantMode(value string) AssistantMode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "local", "mock":
		return ModeLocal
	case "watson":
		return ModeRemote
	default:
		return ModeUnavailable
	}
}

// StatusResponse mirrors the payload returned by /api/status.
type StatusResponse struct {
	ConfiguredMode string `json:"mode"`
	Assistant      string `json:"assistant"`
	AssistantID    string `json:"assistant_id"`
	EnvironmentID  string `json:"environment_id"`
}

// AssistantMode returns the mode derived from the assistant field.
func (s StatusResponse) AssistantMode() AssistantMode {
	return ParseAssistantMode(s.Assistant)
}

// ConfigResponse mirrors /api/config.
type ConfigResponse struct {
	ConsoleURL string `json:"watson_console_url"`
}

// MessageRequest is the body posted to /api/message.
type MessageRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// MessageResponse mirrors the assistant reply. Intents and entities are passed
// through untouched.
type MessageResponse struct {
	Response string          `json:"response"`
	Intents  json.RawMessage `json:"intents,omitempty"`
	Entities json.RawMessage `json:"entities,omitempty"`
}

type extractionRequest struct {
	Text string `json:"text"`
}

// ExtractionResult mirrors /api/clinical/extract. Structured and Triage are
// opaque records rendered as-is.
type ExtractionResult struct {
	Source     string          `json:"source"`
	Summary    string          `json:"summary"`
	Structured json.RawMessage `json:"structured"`
	Triage     json.RawMessage `json:"triage"`
}

// LogEntry is a monitoring record produced by the automation robot. Only the
// display fields are lifted out; Raw keeps the full record.
type LogEntry struct {
	Patient   string
	Timestamp string
	Status    string
	Vitals    map[string]any
	Analysis  string
	Action    string
	Raw       json.RawMessage
}

// UnmarshalJSON decodes a log record leniently: non-string scalars are
// formatted rather than rejected, and a record that is not an object is kept
// only as Raw.
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		*e = LogEntry{Raw: append(json.RawMessage(nil), data...)}
		return nil
	}
	*e = LogEntry{
		Patient:   firstField(fields, "patient", "patient_id", "paciente"),
		Timestamp: firstField(fields, "timestamp", "ts"),
		Status:    firstField(fields, "status"),
		Analysis:  firstField(fields, "ai_analysis", "analysis"),
		Action:    firstField(fields, "action"),
		Raw:       append(json.RawMessage(nil), data...),
	}
	if vitals, ok := fields["vitals"].(map[string]any); ok {
		e.Vitals = vitals
	}
	return nil
}

// MarshalJSON writes the original record back out.
func (e LogEntry) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	out := map[string]any{
		"patient":   e.Patient,
		"timestamp": e.Timestamp,
		"status":    e.Status,
	}
	if e.Vitals != nil {
		out["vitals"] = e.Vitals
	}
	if e.Analysis != "" {
		out["ai_analysis"] = e.Analysis
	}
	if e.Action != "" {
		out["action"] = e.Action
	}
	return json.Marshal(out)
}

// ParsedTime returns the timestamp as time.Time when possible.
func (e LogEntry) ParsedTime() time.Time {
	return parseTime(e.Timestamp)
}

type logsResponse struct {
	Logs []LogEntry `json:"logs"`
}

// CycleResult mirrors /api/monitor/run_once.
type CycleResult struct {
	OK    bool       `json:"ok"`
	Error string     `json:"error"`
	Logs  []LogEntry `json:"logs"`
}

// VitalsRequest is posted to /api/phase3/vitals. Absent readings encode as null.
type VitalsRequest struct {
	TS   int64    `json:"ts"`
	Temp *float64 `json:"temp"`
	BPM  *float64 `json:"bpm"`
}

// VitalsResult mirrors the risk evaluation reply.
type VitalsResult struct {
	Source string          `json:"source"`
	Result json.RawMessage `json:"result"`
}

// Risk returns result.risk when the payload carries one.
func (v VitalsResult) Risk() string {
	var body struct {
		Risk any `json:"risk"`
	}
	if err := json.Unmarshal(v.Result, &body); err != nil || body.Risk == nil {
		return ""
	}
	return scalarString(body.Risk)
}

// Alerts returns result.alerts when the payload carries a list of them.
func (v VitalsResult) Alerts() []string {
	var body struct {
		Alerts []any `json:"alerts"`
	}
	if err := json.Unmarshal(v.Result, &body); err != nil {
		return nil
	}
	alerts := make([]string, 0, len(body.Alerts))
	for _, a := range body.Alerts {
		if s := scalarString(a); s != "" {
			alerts = append(alerts, s)
		}
	}
	return alerts
}

// ServiceHealth mirrors /api/phase4/health.
type ServiceHealth struct {
	Available bool            `json:"available"`
	Health    json.RawMessage `json:"health"`
}

func firstField(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != nil {
			if s := scalarString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts[:2] {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	for _, layout := range timeLayouts[2:] {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
