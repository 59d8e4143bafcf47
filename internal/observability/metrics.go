package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics keeps in-process counters for the ticket API: completed requests
// keyed by route/method/status, and domain errors keyed by route/method/code.
// There is no external metrics backend; the request logger is the consumer.
type Metrics struct {
	mu       sync.Mutex
	requests map[string]int64
	errors   map[string]int64
}

// NewMetrics initializes empty counters.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[string]int64),
		errors:   make(map[string]int64),
	}
}

// RecordRequest counts a completed request against its route and status.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[counterKey(path, method, strconv.Itoa(status))]++
}

// RecordError counts a request that resolved to a domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[counterKey(path, method, code)]++
}

// RequestCount reads the counter for a route/method/status combination.
func (m *Metrics) RequestCount(path, method string, status int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[counterKey(path, method, strconv.Itoa(status))]
}

// ErrorCount reads the counter for a route/method/error-code combination.
func (m *Metrics) ErrorCount(path, method, code string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[counterKey(path, method, code)]
}

func counterKey(path, method, outcome string) string {
	return path + "|" + method + "|" + outcome
}
