// ABOUTME: Single-lock consistent state snapshot
// ABOUTME: Used by internal/metrics and internal/statusapi to avoid field-by-field locking
package sync

// Snapshot is a consistent, non-blocking point-in-time read of every
// query-surface value, taken under a single lock acquisition. It exists for
// consumers (metrics, status APIs) that want several related values without
// the lock/unlock-per-field overhead and without risking Accuracy's
// wait=true blocking path.
type Snapshot struct {
	Statistics          Statistics
	Offset              float64
	ClockRate           float64
	MedianRoundTripTime float64
	Accuracy            Accuracy
	HasAccuracy         bool
}

// Snapshot returns the current state in one locked pass.
func (c *Client) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Statistics: c.stats,
		ClockRate:  c.clockRate,
		Offset:     float64(c.averageOffset) * c.scale,
	}
	if c.roundTripTimes.Len() > 0 {
		s.MedianRoundTripTime = float64(c.medianRoundTripLocked()) * c.scale
	}
	if c.accuracyProbes.Len() > 0 {
		s.HasAccuracy = true
		s.Accuracy = accuracySummary(c.accuracyProbes.Snapshot(), c.scale)
	}
	return s
}
