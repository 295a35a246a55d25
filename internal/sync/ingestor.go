// ABOUTME: Reply-ingesting background loop
// ABOUTME: Filters outliers and folds accepted samples into the estimator state
package sync

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/driftsync-project/driftsync-go/internal/protocol"
)

// ingestLoop blocks on datagram receive and processes each reply per §4.3,
// until ctx is cancelled or the socket is closed (which unblocks the
// pending read immediately).
func (c *Client) ingestLoop(ctx context.Context) {
	var buf [protocol.Size]byte

	go func() {
		<-ctx.Done()
		// An expired read deadline unblocks the pending read so the loop
		// below observes the cancellation.
		_ = c.conn.SetReadDeadline(time.Now())
	}()

	for {
		n, err := c.conn.Read(buf[:])
		now := localTimeMicros()

		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			c.logger.Debugw("reply receive failed", "error", err)
			continue
		}

		pkt, err := protocol.Decode(buf[:n])
		if err != nil {
			c.logger.Debugw("reply decode failed", "error", err)
			continue
		}
		if !pkt.IsReply() {
			c.logger.Debugw("dropped non-reply datagram")
			continue
		}

		c.ingestReply(pkt, now)
	}
}

// ingestReply implements §4.3 steps 3-11.
func (c *Client) ingestReply(pkt protocol.Packet, now int64) {
	var measureLocal, measureGlobal int64
	if c.measureAccuracy {
		measureLocal = localTimeMicros()
		measureGlobal = c.globalTimeMicros()
	}

	c.mu.Lock()
	c.stats.Received++

	rtt := now - pkt.Local
	c.roundTripTimes.Push(rtt)

	median := c.medianRoundTripLocked()
	diff := rtt - median
	if diff < 0 {
		diff = -diff
	}
	if diff > rttRejectThreshold.Microseconds() {
		c.stats.Rejected++
		c.mu.Unlock()
		return
	}

	c.samples.Push(sample{local: pkt.Local, remote: pkt.Remote})
	if c.samples.Len() >= 2 {
		first := c.samples.Get(0)
		last := c.samples.Get(c.samples.Len() - 1)
		c.clockRate = float64(last.remote-first.remote) / float64(last.local-first.local)
	}

	offset := pkt.Remote - pkt.Local
	c.offsets.Push(offset)

	var total int64
	for _, o := range c.offsets.Snapshot() {
		total += o
	}
	c.averageOffset = total / int64(c.offsets.Len())

	sampleCount := c.samples.Len()
	c.mu.Unlock()

	if c.measureAccuracy && sampleCount > 1 {
		measureGlobal -= c.globalTimeMicros()
		measureLocal -= localTimeMicros()

		probe := measureGlobal - measureLocal
		if probe < 0 {
			probe = -probe
		}

		c.mu.Lock()
		c.accuracyProbes.Push(probe)
		c.cond.Broadcast()
		c.mu.Unlock()
	}
}
