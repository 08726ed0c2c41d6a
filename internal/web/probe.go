package web

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/latoulicious/holocron/pkg/logging"
)

// Pinger checks that the upstream API answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeResult is the outcome of the most recent upstream check
type ProbeResult struct {
	Checked   bool      `json:"checked"`
	Reachable bool      `json:"reachable"`
	CheckedAt time.Time `json:"checked_at,omitempty"`
	Latency   string    `json:"latency,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// UpstreamProbe pings the API on a cron schedule
type UpstreamProbe struct {
	cron     *cron.Cron
	pinger   Pinger
	schedule string
	timeout  time.Duration
	logger   logging.Logger

	mu   sync.RWMutex
	last ProbeResult
}

// NewUpstreamProbe registers the probe on a standard 5-field cron schedule.
// An empty schedule disables the probe; health then never reports the upstream as down.
func NewUpstreamProbe(pinger Pinger, schedule string, timeout time.Duration, logger logging.Logger) (*UpstreamProbe, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	p := &UpstreamProbe{
		cron:     cron.New(),
		pinger:   pinger,
		schedule: schedule,
		timeout:  timeout,
		logger:   logger,
	}
	if schedule == "" {
		return p, nil
	}
	if _, err := p.cron.AddFunc(schedule, func() { p.Check(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid probe schedule %q: %w", schedule, err)
	}
	return p, nil
}

// Start runs one check immediately and then follows the schedule
func (p *UpstreamProbe) Start() {
	if !p.Enabled() {
		p.logger.Info("Upstream probe disabled", nil)
		return
	}
	p.logger.Info("Starting upstream probe", map[string]interface{}{"schedule": p.schedule})
	go p.Check(context.Background())
	p.cron.Start()
}

// Enabled reports whether a schedule was configured
func (p *UpstreamProbe) Enabled() bool {
	return p != nil && p.schedule != ""
}

// Stop halts the scheduler and waits for a running check or ctx
func (p *UpstreamProbe) Stop(ctx context.Context) {
	done := p.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Check pings the upstream once and stores the result
func (p *UpstreamProbe) Check(ctx context.Context) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err := p.pinger.Ping(ctx)
	result := ProbeResult{
		Checked:   true,
		Reachable: err == nil,
		CheckedAt: start.UTC(),
		Latency:   time.Since(start).Round(time.Millisecond).String(),
	}
	if err != nil {
		result.Error = err.Error()
		p.logger.Warn("Upstream probe failed", map[string]interface{}{"error": err.Error()})
	} else {
		p.logger.Debug("Upstream probe succeeded", map[string]interface{}{"latency": result.Latency})
	}

	p.mu.Lock()
	p.last = result
	p.mu.Unlock()
	return result
}

// Last returns the most recent result
func (p *UpstreamProbe) Last() ProbeResult {
	if p == nil {
		return ProbeResult{}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}
