// ABOUTME: Accuracy probe summary and wait/reset semantics
// ABOUTME: Cond-based blocking wait with optional deadline for the next probe
package sync

import "time"

// Accuracy reports the accuracy probe summary (§4.5).
//
//   - wait=false: reports whatever probes are currently held.
//   - wait=true, timeout=0: blocks until the next probe is pushed (or Close).
//   - wait=true, timeout>0: blocks with a deadline of now+timeout; on
//     expiry returns a zeroed summary, not an error.
//
// If reset is true, the accuracy ring is cleared before waiting.
func (c *Client) Accuracy(wait, reset bool, timeout time.Duration) Accuracy {
	c.mu.Lock()
	defer c.mu.Unlock()

	if reset {
		c.accuracyProbes.Clear()
	}

	if wait {
		if !c.waitForProbeLocked(timeout) {
			return Accuracy{}
		}
	}

	if c.accuracyProbes.Len() == 0 {
		return Accuracy{}
	}

	return accuracySummary(c.accuracyProbes.Snapshot(), c.scale)
}

// accuracySummary computes the min/avg/max of probes and scales the result.
// probes must be non-empty.
func accuracySummary(probes []int64, scale float64) Accuracy {
	summary := Accuracy{Min: float64(probes[0]), Max: float64(probes[0])}
	var sum float64
	for _, p := range probes {
		v := float64(p)
		if v < summary.Min {
			summary.Min = v
		}
		if v > summary.Max {
			summary.Max = v
		}
		sum += v
	}
	summary.Avg = sum / float64(len(probes))

	summary.Min *= scale
	summary.Avg *= scale
	summary.Max *= scale
	return summary
}

// waitForProbeLocked blocks on c.cond until a probe is pushed, Close is
// called, or timeout elapses (timeout<=0 means wait indefinitely). Caller
// must hold c.mu; it is released while blocked and re-acquired on return.
// Reports whether a probe was observed rather than a timeout or shutdown.
func (c *Client) waitForProbeLocked(timeout time.Duration) bool {
	before := c.accuracyProbes.Len()

	if timeout <= 0 {
		for c.accuracyProbes.Len() == before {
			if c.contextDone() {
				return false
			}
			c.cond.Wait()
		}
		return true
	}

	deadline := time.Now().Add(timeout)
	timer := time.AfterFunc(timeout, func() {
		// Cond has no native deadline support; wake the waiter so it can
		// re-check the deadline itself.
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	defer timer.Stop()

	for c.accuracyProbes.Len() == before {
		if c.contextDone() || time.Now().After(deadline) {
			return false
		}
		c.cond.Wait()
	}
	return true
}

// contextDone reports whether the client's run context has been cancelled.
// Exposed as a method so waitForProbeLocked can avoid spinning forever past
// Close.
func (c *Client) contextDone() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}
