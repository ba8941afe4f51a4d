package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/five82/triagedesk/internal/triage"
)

// ErrVitalsEmpty rejects an evaluation with neither reading filled in.
var ErrVitalsEmpty = errors.New("enter a temperature or a heart rate")

// ExtractClinicalInfo starts a structured extraction of free clinical text.
// The previous result and error are cleared when the request starts.
func (c *Controller) ExtractClinicalInfo(text string) (Task, bool) {
	body := strings.TrimSpace(text)
	if body == "" {
		return nil, false
	}
	c.mu.Lock()
	if c.extract.Busy {
		c.mu.Unlock()
		return nil, false
	}
	c.extract = ExtractState{Busy: true}
	c.mu.Unlock()

	return func(ctx context.Context) {
		defer c.release(&c.extract.Busy)

		result, err := c.api.ExtractClinical(ctx, body)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			log.Warn().Err(err).Msg("clinical extraction failed")
			c.extract.Err = failureReason(err, triage.FallbackExtraction)
			return
		}
		c.extract.Result = &result
	}, true
}

// LoadMonitorLogs reads the monitoring robot's log.
func (c *Controller) LoadMonitorLogs() (Task, bool) {
	return c.startMonitorLoad(false)
}

// startMonitorLoad reads the log. Quiet loads come from panel activation and
// leave the error slot alone on failure.
func (c *Controller) startMonitorLoad(quiet bool) (Task, bool) {
	if !c.acquire(&c.monitor.Busy) {
		return nil, false
	}
	return func(ctx context.Context) {
		defer c.release(&c.monitor.Busy)

		logs, err := c.api.FetchMonitorLogs(ctx)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			log.Warn().Err(err).Bool("quiet", quiet).Msg("monitor log load failed")
			if !quiet {
				c.monitor.Err = failureReason(err, triage.FallbackLogs)
			}
			return
		}
		c.monitor.Logs = nonNilLogs(logs)
		c.monitor.Loaded = true
		c.monitor.Err = ""
	}, true
}

// RunMonitorCycle triggers one automation cycle. A reply with ok=false still
// replaces the log list and records its error.
func (c *Controller) RunMonitorCycle() (Task, bool) {
	if !c.acquire(&c.monitor.Busy) {
		return nil, false
	}
	return func(ctx context.Context) {
		defer c.release(&c.monitor.Busy)

		result, err := c.api.RunMonitorCycle(ctx)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			log.Warn().Err(err).Msg("monitor cycle failed")
			c.monitor.Err = failureReason(err, triage.FallbackCycle)
			c.monitor.LastCycle = &CycleOutcome{Error: c.monitor.Err, At: c.now()}
			return
		}
		c.monitor.Logs = nonNilLogs(result.Logs)
		c.monitor.Loaded = true
		outcome := &CycleOutcome{OK: result.OK, At: c.now()}
		if result.OK {
			c.monitor.Err = ""
		} else {
			outcome.Error = strings.TrimSpace(result.Error)
			if outcome.Error == "" {
				outcome.Error = triage.FallbackCycle
			}
			c.monitor.Err = outcome.Error
		}
		c.monitor.LastCycle = outcome
	}, true
}

// CanEvaluateVitals reports whether at least one reading is filled in.
func CanEvaluateVitals(temp, bpm string) bool {
	return strings.TrimSpace(temp) != "" || strings.TrimSpace(bpm) != ""
}

// EvaluateVitals submits the readings for risk evaluation. Blank fields are
// sent as null and the timestamp is the current Unix time in seconds. Both
// fields blank yields ErrVitalsEmpty; an in-flight evaluation yields ErrBusy.
// A non-numeric reading is reported through the vitals error slot as well as
// the returned error.
func (c *Controller) EvaluateVitals(temp, bpm string) (Task, error) {
	if !CanEvaluateVitals(temp, bpm) {
		return nil, ErrVitalsEmpty
	}

	c.mu.Lock()
	if c.vitals.Busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.vitals = VitalsState{}

	tempVal, err := parseReading(temp, "temperature")
	if err == nil {
		var bpmVal *float64
		bpmVal, err = parseReading(bpm, "heart rate")
		if err == nil {
			req := triage.VitalsRequest{TS: c.now().Unix(), Temp: tempVal, BPM: bpmVal}
			c.vitals.Busy = true
			c.mu.Unlock()
			return c.vitalsTask(req), nil
		}
	}
	c.vitals.Err = err.Error()
	c.mu.Unlock()
	return nil, err
}

func (c *Controller) vitalsTask(req triage.VitalsRequest) Task {
	return func(ctx context.Context) {
		defer c.release(&c.vitals.Busy)

		result, err := c.api.EvaluateVitals(ctx, req)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			log.Warn().Err(err).Msg("vitals evaluation failed")
			c.vitals.Err = failureReason(err, triage.FallbackVitals)
			return
		}
		c.vitals.Result = &result
	}
}

// parseReading converts a form field into an optional number. Blank is nil;
// a comma decimal separator is accepted.
func parseReading(raw, label string) (*float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("invalid %s %q", label, trimmed)
	}
	return &v, nil
}

// CheckImageServiceHealth probes the image-analysis service.
func (c *Controller) CheckImageServiceHealth() (Task, bool) {
	return c.startImagingCheck(false)
}

func (c *Controller) startImagingCheck(quiet bool) (Task, bool) {
	if !c.acquire(&c.imaging.Busy) {
		return nil, false
	}
	return func(ctx context.Context) {
		defer c.release(&c.imaging.Busy)

		health, err := c.api.FetchImagingHealth(ctx)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			log.Warn().Err(err).Bool("quiet", quiet).Msg("image service health check failed")
			if !quiet {
				c.imaging.Err = failureReason(err, triage.FallbackImaging)
			}
			return
		}
		c.imaging.Health = &health
		c.imaging.Err = ""
		c.imaging.Checked = c.now()
	}, true
}

func nonNilLogs(entries []triage.LogEntry) []triage.LogEntry {
	if entries == nil {
		return []triage.LogEntry{}
	}
	return entries
}
