// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for system-level monitoring.
// Exposes counters in a thread-safe map with dynamic registration.

package control

import (
	"sync"
	"time"

	"github.com/momentics/hioload-pool/api"
)

// MetricsRegistry holds mutable and read-only metrics.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// PublishStats stores every counter of st under "<name>.<counter>".
func (mr *MetricsRegistry) PublishStats(name string, st api.PoolStats) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.metrics[name+".acquires"] = st.Acquires
	mr.metrics[name+".releases"] = st.Releases
	mr.metrics[name+".grows"] = st.Grows
	mr.metrics[name+".cas_retries"] = st.CASRetries
	mr.metrics[name+".live"] = st.Live
	mr.metrics[name+".high_water"] = st.HighWater
	mr.metrics[name+".chunks"] = st.Chunks
	mr.metrics[name+".capacity"] = st.Capacity
	mr.updated = time.Now()
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}

// Updated returns the time of the last write.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}
