// Package triage provides an HTTP client for the triage assistant backend.
//
// # Overview
//
// The backend fronts several collaborators (the conversational assistant, a
// clinical-text extraction service, the monitoring robot, a vitals risk
// evaluator and an image-analysis service). This package treats all of them as
// opaque JSON-over-HTTP endpoints and only lifts out the fields the terminal
// client renders.
//
// # API Endpoints
//
//   - GET  /api/status            assistant implementation probe
//   - GET  /api/config            console URL for the header link
//   - POST /api/message           {message, user_id} -> {response}
//   - POST /api/clinical/extract  {text} -> {source, summary, structured, triage}
//   - GET  /api/monitor/logs      {logs}
//   - POST /api/monitor/run_once  {ok, error, logs}
//   - POST /api/phase3/vitals     {ts, temp, bpm} -> {source, result}
//   - GET  /api/phase4/health     {available, health}
//
// # Error Handling
//
// Any non-2xx status is a failure regardless of the body. Such failures are
// returned as *APIError whose message is the body's "error" field, or a
// per-endpoint fallback string when that field is missing or the body is not
// JSON. Transport failures are wrapped with fmt.Errorf:
//
//   - "execute request: dial tcp 127.0.0.1:5000: connect: connection refused"
//   - "assistant offline" (APIError from the body)
//   - "extraction failed" (APIError fallback)
//
// A success body that does not decode is treated as an empty object, so the
// caller sees zero values rather than an error.
//
// # Request Handling
//
// Requests carry Accept and User-Agent headers, and Content-Type when a body is
// sent. There are no retries. The client is unbounded by default; WithTimeout
// adds a per-request deadline.
//
// # Thread Safety
//
// Client is safe for concurrent use.
package triage
