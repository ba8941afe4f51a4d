package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// API defines the backend operations the session controller depends on.
// It is implemented by *Client and can be replaced in tests.
type API interface {
	FetchStatus(ctx context.Context) (StatusResponse, error)
	FetchConfig(ctx context.Context) (ConfigResponse, error)
	SendMessage(ctx context.Context, req MessageRequest) (MessageResponse, error)
	ExtractClinical(ctx context.Context, text string) (ExtractionResult, error)
	FetchMonitorLogs(ctx context.Context) ([]LogEntry, error)
	RunMonitorCycle(ctx context.Context) (CycleResult, error)
	EvaluateVitals(ctx context.Context, req VitalsRequest) (VitalsResult, error)
	FetchImagingHealth(ctx context.Context) (ServiceHealth, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the triage backend HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIURL    = "127.0.0.1:5000"
	defaultUserAgent = "triagedesk/0.1"
	maxResponseBytes = 4 << 20
)

// Fallback messages used when a failed response carries no error field.
const (
	FallbackMessage    = "failed to send message"
	FallbackExtraction = "extraction failed"
	FallbackLogs       = "failed to load monitor logs"
	FallbackCycle      = "monitor cycle failed"
	FallbackVitals     = "vitals evaluation failed"
	FallbackImaging    = "image service health check failed"
	fallbackStatus     = "status probe failed"
	fallbackConfig     = "config fetch failed"
)

// APIError reports a non-success HTTP status. Message comes from the body's
// error field, or a per-endpoint fallback when the body has none.
type APIError struct {
	Status  int
	Path    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsAPIError reports whether err is a server-reported failure.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

type errorBody struct {
	Error string `json:"error"`
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout bounds every request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client for apiURL, which may be host:port or a full URL.
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// FetchStatus probes which assistant implementation is active.
func (c *Client) FetchStatus(ctx context.Context) (StatusResponse, error) {
	return doJSON[StatusResponse](ctx, c, http.MethodGet, "/api/status", nil, fallbackStatus)
}

// FetchConfig retrieves UI configuration such as the console URL.
func (c *Client) FetchConfig(ctx context.Context) (ConfigResponse, error) {
	return doJSON[ConfigResponse](ctx, c, http.MethodGet, "/api/config", nil, fallbackConfig)
}

// SendMessage posts a user message and returns the assistant reply.
func (c *Client) SendMessage(ctx context.Context, req MessageRequest) (MessageResponse, error) {
	return doJSON[MessageResponse](ctx, c, http.MethodPost, "/api/message", req, FallbackMessage)
}

// ExtractClinical asks the backend to turn free text into a structured record.
func (c *Client) ExtractClinical(ctx context.Context, text string) (ExtractionResult, error) {
	return doJSON[ExtractionResult](ctx, c, http.MethodPost, "/api/clinical/extract", extractionRequest{Text: text}, FallbackExtraction)
}

// FetchMonitorLogs reads the automation robot's log records.
func (c *Client) FetchMonitorLogs(ctx context.Context) ([]LogEntry, error) {
	payload, err := doJSON[logsResponse](ctx, c, http.MethodGet, "/api/monitor/logs", nil, FallbackLogs)
	if err != nil {
		return nil, err
	}
	return payload.Logs, nil
}

// RunMonitorCycle triggers one automation cycle and returns the refreshed logs.
func (c *Client) RunMonitorCycle(ctx context.Context) (CycleResult, error) {
	return doJSON[CycleResult](ctx, c, http.MethodPost, "/api/monitor/run_once", nil, FallbackCycle)
}

// EvaluateVitals submits readings for risk evaluation.
func (c *Client) EvaluateVitals(ctx context.Context, req VitalsRequest) (VitalsResult, error) {
	return doJSON[VitalsResult](ctx, c, http.MethodPost, "/api/phase3/vitals", req, FallbackVitals)
}

// FetchImagingHealth probes the external image-analysis service through the backend.
func (c *Client) FetchImagingHealth(ctx context.Context) (ServiceHealth, error) {
	return doJSON[ServiceHealth](ctx, c, http.MethodGet, "/api/phase4/health", nil, FallbackImaging)
}

// doJSON performs the request and decodes the reply into T. A body that fails
// to decode is treated as an empty object.
func doJSON[T any](ctx context.Context, c *Client, method, path string, body any, fallback string) (T, error) {
	var zero T
	if c == nil {
		return zero, fmt.Errorf("client is nil")
	}
	raw, err := c.do(ctx, method, path, body, fallback)
	if err != nil {
		return zero, err
	}
	return decodeLenient[T](raw, path), nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, fallback string) ([]byte, error) {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		failure := decodeLenient[errorBody](raw, path)
		msg := strings.TrimSpace(failure.Error)
		if msg == "" {
			msg = fallback
		}
		return nil, &APIError{Status: resp.StatusCode, Path: path, Message: msg}
	}
	return raw, nil
}

func decodeLenient[T any](raw []byte, path string) T {
	var v T
	if len(bytes.TrimSpace(raw)) == 0 {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("response body not decodable, treating as empty")
		var zero T
		return zero
	}
	return v
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", apiURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
