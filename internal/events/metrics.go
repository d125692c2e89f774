package events

import "sync/atomic"

// Metrics tracks dispatcher outcomes.
type Metrics struct {
	processed    int64
	retried      int64
	deadLettered int64
	failures     int64
}

// Snapshot is a point-in-time copy of Metrics.
type Snapshot struct {
	Processed    int64 `json:"processed"`
	Retried      int64 `json:"retried"`
	DeadLettered int64 `json:"dead_lettered"`
	Failures     int64 `json:"failures"`
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Processed:    atomic.LoadInt64(&m.processed),
		Retried:      atomic.LoadInt64(&m.retried),
		DeadLettered: atomic.LoadInt64(&m.deadLettered),
		Failures:     atomic.LoadInt64(&m.failures),
	}
}

func (m *Metrics) recordProcessed() {
	atomic.AddInt64(&m.processed, 1)
}

func (m *Metrics) recordFailure(dead bool) {
	atomic.AddInt64(&m.failures, 1)
	if dead {
		atomic.AddInt64(&m.deadLettered, 1)
	} else {
		atomic.AddInt64(&m.retried, 1)
	}
}

// FailureRate returns failed handler runs as a percentage of all runs.
func (s Snapshot) FailureRate() float64 {
	total := s.Processed + s.Failures
	if total == 0 {
		return 0
	}
	return float64(s.Failures) / float64(total) * 100
}
