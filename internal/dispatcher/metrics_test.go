// internal/dispatcher/metrics_test.go
package dispatcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordsCountersIndependently(t *testing.T) {
	m := NewMetrics()
	m.RecordSubmitted()
	m.RecordSubmitted()
	m.RecordResult(true, 10*time.Millisecond)
	m.RecordResult(false, 20*time.Millisecond)
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordCacheMiss()

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.JobsSubmitted)
	assert.EqualValues(t, 1, snap.JobsSucceeded)
	assert.EqualValues(t, 1, snap.JobsFailed)
	assert.EqualValues(t, 1, snap.CacheHits)
	assert.EqualValues(t, 2, snap.CacheMisses)
	assert.Len(t, snap.RecentLatenciesMS, 2)
}

func TestMetricsLatencyRingBufferWrapsAfterCapacity(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < maxLatencySamples+10; i++ {
		m.RecordResult(true, time.Duration(i)*time.Millisecond)
	}
	snap := m.Snapshot()
	assert.Len(t, snap.RecentLatenciesMS, maxLatencySamples)
	// Oldest-first: the last maxLatencySamples entries recorded, in order.
	assert.Equal(t, float64(10), snap.RecentLatenciesMS[0])
	assert.Equal(t, float64(maxLatencySamples+9), snap.RecentLatenciesMS[maxLatencySamples-1])
}

func TestMetricsSnapshotIsASnapshotNotALiveView(t *testing.T) {
	m := NewMetrics()
	m.RecordResult(true, time.Millisecond)
	snap := m.Snapshot()
	m.RecordResult(true, 2*time.Millisecond)
	assert.Len(t, snap.RecentLatenciesMS, 1)
}
