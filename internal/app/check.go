package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/five82/triagedesk/internal/triage"
)

const probeTimeout = 5 * time.Second

// ProbeResult is the outcome of one backend probe.
type ProbeResult struct {
	Name   string
	Err    error
	Detail string
}

// CheckReport collects the probe results in display order.
type CheckReport struct {
	APIURL string
	Probes []ProbeResult
}

// Healthy reports whether the status probe succeeded. The other endpoints are
// optional features of the backend.
func (r CheckReport) Healthy() bool {
	for _, p := range r.Probes {
		if p.Name == "status" {
			return p.Err == nil
		}
	}
	return false
}

// WriteTo prints one aligned line per probe.
func (r CheckReport) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := fmt.Fprintf(w, "backend  %s\n", r.APIURL)
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, p := range r.Probes {
		state, detail := "ok", p.Detail
		if p.Err != nil {
			state, detail = "error", p.Err.Error()
		}
		n, err = fmt.Fprintf(w, "%-8s %-6s %s\n", p.Name, state, detail)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type probe struct {
	name string
	run  func(ctx context.Context, api triage.API) (string, error)
}

var probes = []probe{
	{"status", func(ctx context.Context, api triage.API) (string, error) {
		status, err := api.FetchStatus(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("mode=%s", status.AssistantMode()), nil
	}},
	{"config", func(ctx context.Context, api triage.API) (string, error) {
		cfg, err := api.FetchConfig(ctx)
		if err != nil {
			return "", err
		}
		if cfg.ConsoleURL == "" {
			return "console=-", nil
		}
		return "console=" + cfg.ConsoleURL, nil
	}},
	{"monitor", func(ctx context.Context, api triage.API) (string, error) {
		logs, err := api.FetchMonitorLogs(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("records=%d", len(logs)), nil
	}},
	{"imaging", func(ctx context.Context, api triage.API) (string, error) {
		health, err := api.FetchImagingHealth(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("available=%t", health.Available), nil
	}},
}

// Check runs every probe concurrently and waits for all of them.
func Check(ctx context.Context, api triage.API, apiURL string) CheckReport {
	report := CheckReport{
		APIURL: apiURL,
		Probes: make([]ProbeResult, len(probes)),
	}

	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()

			detail, err := p.run(probeCtx, api)
			if err != nil {
				log.Warn().Err(err).Str("probe", p.name).Msg("backend probe failed")
			}
			report.Probes[i] = ProbeResult{Name: p.name, Err: err, Detail: detail}
		}()
	}
	wg.Wait()
	return report
}
