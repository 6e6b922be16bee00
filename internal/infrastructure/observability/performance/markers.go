// Package performance provides lightweight operation timing for request
// handlers and background work.
package performance

import (
	"sync"
	"time"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation string         `json:"operation"`       // e.g., "send_trace_request"
	SessionID string         `json:"sessionId"`       // Session the operation ran for, if any
	StartTime time.Time      `json:"startTime"`       // When the operation started
	EndTime   time.Time      `json:"endTime"`         // When the operation completed
	Duration  time.Duration  `json:"duration"`        // Total operation duration
	Success   bool           `json:"success"`         // Whether the operation completed successfully
	Error     string         `json:"error,omitempty"` // Error message if operation failed
	Metadata  map[string]any `json:"metadata"`        // Additional operation-specific data
	Completed bool           `json:"completed"`       // Whether Complete() has been called

	mu sync.Mutex
}

// Complete marks the operation as finished and calculates final metrics
func (m *Marker) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Completed {
		return
	}
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.mu.Lock()
	m.Success = success
	m.mu.Unlock()
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	m.Error = err.Error()
	m.Success = false
	m.mu.Unlock()
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// Elapsed returns the final duration once completed, or the running time.
func (m *Marker) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Completed {
		return m.Duration
	}
	return time.Since(m.StartTime)
}

type markerState struct {
	operation string
	completed bool
	success   bool
	duration  time.Duration
}

func (m *Marker) state() markerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return markerState{
		operation: m.Operation,
		completed: m.Completed,
		success:   m.Success,
		duration:  m.Duration,
	}
}

// OperationSummary aggregates completed markers for one operation name.
type OperationSummary struct {
	Operation   string        `json:"operation"`
	Count       int           `json:"count"`
	Failures    int           `json:"failures"`
	AvgDuration time.Duration `json:"avgDuration"`
	MaxDuration time.Duration `json:"maxDuration"`
	SlowCount   int           `json:"slowCount"`
}
