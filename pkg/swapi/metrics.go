package swapi

import (
	"sync"
	"time"
)

// maxLatencySamples caps the in-memory latency window
const maxLatencySamples = 256

// FetchStats contains aggregated upstream fetch metrics
type FetchStats struct {
	Requests       int            `json:"requests"`
	Failures       int            `json:"failures"`
	AverageLatency time.Duration  `json:"average_latency"`
	ErrorsByClass  map[string]int `json:"errors_by_class"`
	LastError      string         `json:"last_error,omitempty"`
	LastErrorTime  time.Time      `json:"last_error_time,omitempty"`
}

// FetchMetrics keeps simple in-memory counters for upstream requests
type FetchMetrics struct {
	latencies     []time.Duration
	requests      int
	errorCounts   map[string]int
	lastError     string
	lastErrorTime time.Time
	mu            sync.RWMutex
}

// NewFetchMetrics creates a new FetchMetrics instance
func NewFetchMetrics() *FetchMetrics {
	return &FetchMetrics{
		latencies:   make([]time.Duration, 0),
		errorCounts: make(map[string]int),
	}
}

// RecordRequest records one upstream call and its outcome
func (m *FetchMetrics) RecordRequest(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests++
	m.latencies = append(m.latencies, duration)
	if len(m.latencies) > maxLatencySamples {
		m.latencies = m.latencies[len(m.latencies)-maxLatencySamples:]
	}

	if err != nil {
		m.errorCounts[Classify(err)]++
		m.lastError = err.Error()
		m.lastErrorTime = time.Now()
	}
}

// GetStats returns basic aggregated statistics
func (m *FetchMetrics) GetStats() FetchStats {
	if m == nil {
		return FetchStats{ErrorsByClass: map[string]int{}}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := FetchStats{
		Requests:      m.requests,
		ErrorsByClass: make(map[string]int, len(m.errorCounts)),
		LastError:     m.lastError,
		LastErrorTime: m.lastErrorTime,
	}
	for class, count := range m.errorCounts {
		stats.ErrorsByClass[class] = count
		stats.Failures += count
	}

	if len(m.latencies) > 0 {
		var total time.Duration
		for _, d := range m.latencies {
			total += d
		}
		stats.AverageLatency = total / time.Duration(len(m.latencies))
	}

	return stats
}
