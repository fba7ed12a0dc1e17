package observability

import (
	"sync"
	"time"
)

// RouteStats accumulates request counters for one route and method.
type RouteStats struct {
	Count        int64
	ServerErrors int64
	ClientErrors int64
	TotalLatency time.Duration
	MaxLatency   time.Duration
}

// Snapshot is a point-in-time copy of the collected counters, suitable for
// JSON responses. Latencies are reported in milliseconds.
type Snapshot struct {
	Routes map[string]RouteSnapshot `json:"routes"`
	Errors map[string]int64         `json:"errors"`
}

// RouteSnapshot is the exported view of RouteStats.
type RouteSnapshot struct {
	Count        int64   `json:"count"`
	ServerErrors int64   `json:"server_errors"`
	ClientErrors int64   `json:"client_errors"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
	MaxLatencyMS float64 `json:"max_latency_ms"`
}

// Metrics keeps in-memory request and error counters. Routes are keyed by
// "METHOD path"; errors are keyed by domain error code, so the health surface
// can show how often conflicts and dependency failures occur.
type Metrics struct {
	mu     sync.Mutex
	routes map[string]*RouteStats
	errors map[string]int64
}

// NewMetrics initializes empty counter storage.
func NewMetrics() *Metrics {
	return &Metrics{
		routes: make(map[string]*RouteStats),
		errors: make(map[string]int64),
	}
}

// RecordRequest counts one completed request against its route.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := method + " " + path
	stats, ok := m.routes[key]
	if !ok {
		stats = &RouteStats{}
		m.routes[key] = stats
	}
	stats.Count++
	stats.TotalLatency += duration
	if duration > stats.MaxLatency {
		stats.MaxLatency = duration
	}
	switch {
	case status >= 500:
		stats.ServerErrors++
	case status >= 400:
		stats.ClientErrors++
	}
}

// RecordError counts one domain error by its code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[code]++
}

// TakeSnapshot copies the counters for reporting. Counters keep accumulating;
// the snapshot is not a reset.
func (m *Metrics) TakeSnapshot() Snapshot {
	snap := Snapshot{
		Routes: make(map[string]RouteSnapshot),
		Errors: make(map[string]int64),
	}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, stats := range m.routes {
		route := RouteSnapshot{
			Count:        stats.Count,
			ServerErrors: stats.ServerErrors,
			ClientErrors: stats.ClientErrors,
			MaxLatencyMS: float64(stats.MaxLatency) / float64(time.Millisecond),
		}
		if stats.Count > 0 {
			route.AvgLatencyMS = float64(stats.TotalLatency) / float64(stats.Count) / float64(time.Millisecond)
		}
		snap.Routes[key] = route
	}
	for code, count := range m.errors {
		snap.Errors[code] = count
	}
	return snap
}
