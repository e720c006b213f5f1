// internal/dispatcher/metrics.go
package dispatcher

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/stackvity/ocr-server/internal/domain"
)

// maxLatencySamples bounds the recent-latency ring buffer — spec.md §5's
// "append-only time series bounded to the last 1000 samples".
const maxLatencySamples = 1000

// Metrics is the thread-safe counter set spec.md §5 requires: atomic
// job/cache counters plus a mutex-guarded ring buffer of recent latencies.
type Metrics struct {
	jobsSubmitted atomic.Int64
	jobsSucceeded atomic.Int64
	jobsFailed    atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64

	mu          sync.Mutex
	latencies   []float64
	latencyHead int
}

// NewMetrics constructs an empty Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{latencies: make([]float64, 0, maxLatencySamples)}
}

func (m *Metrics) RecordSubmitted() { m.jobsSubmitted.Add(1) }

func (m *Metrics) RecordResult(success bool, latency time.Duration) {
	if success {
		m.jobsSucceeded.Add(1)
	} else {
		m.jobsFailed.Add(1)
	}
	m.recordLatency(float64(latency.Microseconds()) / 1000.0)
}

func (m *Metrics) RecordCacheHit()  { m.cacheHits.Add(1) }
func (m *Metrics) RecordCacheMiss() { m.cacheMisses.Add(1) }

func (m *Metrics) recordLatency(ms float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.latencies) < maxLatencySamples {
		m.latencies = append(m.latencies, ms)
		return
	}
	m.latencies[m.latencyHead] = ms
	m.latencyHead = (m.latencyHead + 1) % maxLatencySamples
}

// Snapshot returns a copy of the current counters and latency sample,
// oldest-first.
func (m *Metrics) Snapshot() domain.MetricsSnapshot {
	m.mu.Lock()
	ordered := make([]float64, len(m.latencies))
	if len(m.latencies) < maxLatencySamples {
		copy(ordered, m.latencies)
	} else {
		copy(ordered, m.latencies[m.latencyHead:])
		copy(ordered[maxLatencySamples-m.latencyHead:], m.latencies[:m.latencyHead])
	}
	m.mu.Unlock()

	return domain.MetricsSnapshot{
		JobsSubmitted:     m.jobsSubmitted.Load(),
		JobsSucceeded:     m.jobsSucceeded.Load(),
		JobsFailed:        m.jobsFailed.Load(),
		CacheHits:         m.cacheHits.Load(),
		CacheMisses:       m.cacheMisses.Load(),
		RecentLatenciesMS: ordered,
	}
}
