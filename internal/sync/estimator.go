// ABOUTME: Global-time and clock-rate estimation
// ABOUTME: Read-side query surface plus the playback-rate suggestion formula
package sync

import "math"

// globalTimeLocked projects now into remote-clock space using the newest
// admitted sample as reference. Caller must hold c.mu. Returns 0 if no
// sample has been admitted yet (§4.4).
func (c *Client) globalTimeLocked(now int64) int64 {
	if c.samples.Len() == 0 {
		return 0
	}
	ref := c.samples.Get(c.samples.Len() - 1).local
	return ref + c.averageOffset + int64(math.Round(float64(now-ref)*c.clockRate))
}

// globalTimeMicros returns the current projected global time, unscaled
// (internal microseconds).
func (c *Client) globalTimeMicros() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.globalTimeLocked(localTimeMicros())
}

// GlobalTime returns the current projected global time, scaled.
func (c *Client) GlobalTime() float64 {
	return float64(c.globalTimeMicros()) * c.scale
}

// LocalTime returns the current local monotonic time, scaled.
func (c *Client) LocalTime() float64 {
	return float64(localTimeMicros()) * c.scale
}

// Offset returns the smoothed average offset, scaled.
func (c *Client) Offset() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.averageOffset) * c.scale
}

// ClockRate returns the current clock-rate ratio (unitless, not scaled).
func (c *Client) ClockRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clockRate
}

// medianRoundTripLocked returns the median of the RTT ring via a scratch
// sorted copy; the live ring's order is unaffected. Caller must hold c.mu.
func (c *Client) medianRoundTripLocked() int64 {
	return c.roundTripTimes.Median(func(a, b int64) bool { return a < b })
}

// MedianRoundTripTime returns the median round-trip time, scaled. It is
// zero if no samples have been received yet.
func (c *Client) MedianRoundTripTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.roundTripTimes.Len() == 0 {
		return 0
	}
	return float64(c.medianRoundTripLocked()) * c.scale
}

// SuggestPlaybackRate computes a proportional playback-rate suggestion from
// a caller-supplied global start time and current playback position (both
// in scaled units, matching GlobalTime's unit). A position error smaller
// than 5ms returns exactly 1.0 (dead-band); larger errors are mapped
// linearly, clamped to [0.5, 2.0].
func (c *Client) SuggestPlaybackRate(globalStart, playbackPosition float64) float64 {
	global := float64(c.globalTimeMicros())

	delta := (global - globalStart/c.scale) - playbackPosition/c.scale
	if math.Abs(delta) < 5000 {
		return 1.0
	}

	rate := 1 + delta/1_000_000
	switch {
	case rate > 2.0:
		return 2.0
	case rate < 0.5:
		return 0.5
	default:
		return rate
	}
}

// Statistics returns a copy of the cumulative request/reply counters.
func (c *Client) Statistics() Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
