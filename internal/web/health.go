package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/latoulicious/holocron/internal/version"
	"github.com/latoulicious/holocron/pkg/swapi"
)

// Health reports process health and upstream fetch statistics
type Health struct {
	StartTime time.Time
	metrics   *swapi.FetchMetrics
	probe     *UpstreamProbe
	// Database is true when operational logs are persisted
	Database bool
}

// NewHealth creates a Health reporter; both arguments may be nil
func NewHealth(metrics *swapi.FetchMetrics, probe *UpstreamProbe) *Health {
	return &Health{StartTime: time.Now(), metrics: metrics, probe: probe}
}

type healthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	StartTime string `json:"start_time"`
	Upstream  bool   `json:"upstream_reachable"`
	Database  bool   `json:"database_connected"`
}

type statusResponse struct {
	Application string            `json:"application"`
	Version     version.Info      `json:"version"`
	Uptime      string            `json:"uptime"`
	StartTime   string            `json:"start_time"`
	Upstream    ProbeResult       `json:"upstream"`
	Fetch       fetchStatsPayload `json:"fetch"`
	Database    bool              `json:"database_connected"`
}

type fetchStatsPayload struct {
	Requests       int            `json:"requests"`
	Failures       int            `json:"failures"`
	AverageLatency string         `json:"average_latency"`
	ErrorsByClass  map[string]int `json:"errors_by_class"`
	LastError      string         `json:"last_error,omitempty"`
}

// Healthy is false only when the upstream probe has run and failed
func (h *Health) Healthy() bool {
	last := h.probe.Last()
	return !last.Checked || last.Reachable
}

func (h *Health) uptime() string {
	return time.Since(h.StartTime).Round(time.Second).String()
}

// HandleHealth serves /health
func (h *Health) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Uptime:    h.uptime(),
		StartTime: h.StartTime.Format(time.RFC3339),
		Upstream:  h.Healthy(),
		Database:  h.Database,
	}
	status := http.StatusOK
	if !resp.Upstream {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// HandleStatus serves /status
func (h *Health) HandleStatus(w http.ResponseWriter, r *http.Request) {
	stats := h.metrics.GetStats()
	resp := statusResponse{
		Application: "holocron",
		Version:     version.Get(),
		Uptime:      h.uptime(),
		StartTime:   h.StartTime.Format(time.RFC3339),
		Upstream:    h.probe.Last(),
		Fetch: fetchStatsPayload{
			Requests:       stats.Requests,
			Failures:       stats.Failures,
			AverageLatency: stats.AverageLatency.String(),
			ErrorsByClass:  stats.ErrorsByClass,
			LastError:      stats.LastError,
		},
		Database: h.Database,
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
