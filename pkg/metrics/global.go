package metrics

import "sync"

var (
	globalMetrics *Metrics
	mu            sync.RWMutex
)

// SetGlobal installs the process-wide metrics instance.
func SetGlobal(m *Metrics) {
	mu.Lock()
	defer mu.Unlock()
	globalMetrics = m
}

// Global returns the process-wide metrics instance, nil when metrics are disabled.
func Global() *Metrics {
	mu.RLock()
	defer mu.RUnlock()
	return globalMetrics
}
