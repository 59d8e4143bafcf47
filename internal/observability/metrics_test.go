package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCountsRequestsAndErrors(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/tickets", "POST", 201, 5*time.Millisecond)
	m.RecordRequest("/tickets", "POST", 201, 7*time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, time.Millisecond)
	m.RecordError("/tickets", "POST", "VALIDATION_FAILED")

	assert.Equal(t, int64(2), m.RequestCount("/tickets", "POST", 201))
	assert.Equal(t, int64(1), m.RequestCount("/tickets", "GET", 200))
	assert.Zero(t, m.RequestCount("/tickets", "GET", 404))
	assert.Equal(t, int64(1), m.ErrorCount("/tickets", "POST", "VALIDATION_FAILED"))
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/tickets", "GET", 200, 0)
	m.RecordError("/tickets", "GET", "NOT_FOUND")
	assert.Zero(t, m.RequestCount("/tickets", "GET", 200))
}
