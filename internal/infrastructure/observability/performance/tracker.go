package performance

import (
	"sort"
	"sync"
	"time"
)

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	markers []*Marker
	config  *TrackerConfig
	started time.Time
	mu      sync.RWMutex
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers    int           `json:"maxMarkers"`    // Maximum number of markers to retain
	SlowThreshold time.Duration `json:"slowThreshold"` // Operations slower than this count as slow
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:    5000,
		SlowThreshold: 500 * time.Millisecond,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}
	return &Tracker{
		markers: make([]*Marker, 0, 64),
		config:  config,
		started: time.Now(),
	}
}

// StartOperation creates and tracks a new performance marker for an operation
func (t *Tracker) StartOperation(operation, sessionID string) *Marker {
	marker := &Marker{
		Operation: operation,
		SessionID: sessionID,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true, // Assume success until proven otherwise
	}

	t.mu.Lock()
	t.markers = append(t.markers, marker)
	if over := len(t.markers) - t.config.MaxMarkers; over > 0 {
		t.markers = append(t.markers[:0:0], t.markers[over:]...)
	}
	t.mu.Unlock()

	return marker
}

// Summary aggregates completed markers per operation, sorted by name.
func (t *Tracker) Summary() []OperationSummary {
	t.mu.RLock()
	markers := make([]*Marker, len(t.markers))
	copy(markers, t.markers)
	t.mu.RUnlock()

	byOp := make(map[string]*OperationSummary)
	totals := make(map[string]time.Duration)
	for _, m := range markers {
		s := m.state()
		if !s.completed {
			continue
		}
		sum, ok := byOp[s.operation]
		if !ok {
			sum = &OperationSummary{Operation: s.operation}
			byOp[s.operation] = sum
		}
		sum.Count++
		if !s.success {
			sum.Failures++
		}
		if s.duration > sum.MaxDuration {
			sum.MaxDuration = s.duration
		}
		if s.duration > t.config.SlowThreshold {
			sum.SlowCount++
		}
		totals[s.operation] += s.duration
	}

	out := make([]OperationSummary, 0, len(byOp))
	for op, sum := range byOp {
		sum.AvgDuration = totals[op] / time.Duration(sum.Count)
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// Uptime returns how long the tracker has been running.
func (t *Tracker) Uptime() time.Duration {
	return time.Since(t.started)
}

// Len returns the number of retained markers.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.markers)
}
