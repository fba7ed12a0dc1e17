package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_RequestCountersPerRoute(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/tickets", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/tickets", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/api/tickets", "POST", 409, 5*time.Millisecond)
	m.RecordRequest("/api/tickets", "POST", 500, 5*time.Millisecond)

	snap := m.TakeSnapshot()

	get := snap.Routes["GET /api/tickets"]
	assert.Equal(t, int64(2), get.Count)
	assert.Equal(t, 20.0, get.AvgLatencyMS)
	assert.Equal(t, 30.0, get.MaxLatencyMS)

	post := snap.Routes["POST /api/tickets"]
	assert.Equal(t, int64(2), post.Count)
	assert.Equal(t, int64(1), post.ClientErrors)
	assert.Equal(t, int64(1), post.ServerErrors)
}

func TestMetrics_ErrorCountersByCode(t *testing.T) {
	m := NewMetrics()
	m.RecordError("/api/tickets/1/assign", "PATCH", "CONFLICT")
	m.RecordError("/api/tickets/2/assign", "PATCH", "CONFLICT")
	m.RecordError("/api/stats", "GET", "DEPENDENCY_FAILURE")

	snap := m.TakeSnapshot()
	assert.Equal(t, int64(2), snap.Errors["CONFLICT"])
	assert.Equal(t, int64(1), snap.Errors["DEPENDENCY_FAILURE"])
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/api/tickets", "GET", 200, time.Millisecond)
	m.RecordError("/api/tickets", "GET", "CONFLICT")

	snap := m.TakeSnapshot()
	assert.Empty(t, snap.Routes)
	assert.Empty(t, snap.Errors)
}
