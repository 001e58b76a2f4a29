package tokengate

import "sync/atomic"

// Metrics tracks in-process counters for the gate and its key set cache.
type Metrics struct {
	cacheHits      atomic.Uint64
	fetches        atomic.Uint64
	fetchFailures  atomic.Uint64
	degradedServes atomic.Uint64
	authorized     atomic.Uint64
	rejected       atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of the gate counters.
type MetricsSnapshot struct {
	CacheHits      uint64
	Fetches        uint64
	FetchFailures  uint64
	DegradedServes uint64
	Authorized     uint64
	Rejected       uint64
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		CacheHits:      m.cacheHits.Load(),
		Fetches:        m.fetches.Load(),
		FetchFailures:  m.fetchFailures.Load(),
		DegradedServes: m.degradedServes.Load(),
		Authorized:     m.authorized.Load(),
		Rejected:       m.rejected.Load(),
	}
}
