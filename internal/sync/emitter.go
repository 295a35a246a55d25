// ABOUTME: Probe-emitting background loop
// ABOUTME: Periodically sends timestamped requests to the server
package sync

import (
	"context"
	"time"

	"github.com/driftsync-project/driftsync-go/internal/protocol"
)

// emitLoop constructs and sends a stamped request datagram every c.interval,
// until ctx is cancelled. Send errors and short writes are logged and
// otherwise ignored: the next tick naturally retries (§4.2 — no retry, no
// backoff). The interval is measured by sleeping *after* each send, so no
// attempt is made to correct for send cost.
func (c *Client) emitLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.sendProbe()

		select {
		case <-time.After(c.interval):
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) sendProbe() {
	c.mu.Lock()
	c.stats.Sent++
	c.mu.Unlock()

	pkt := protocol.NewRequest(localTimeMicros())
	buf := pkt.Encode()

	n, err := c.conn.WriteToUDP(buf[:], c.server)
	if err != nil {
		c.logger.Debugw("probe send failed", "error", err)
		return
	}
	if n != protocol.Size {
		c.logger.Debugw("probe send short write", "wrote", n, "want", protocol.Size)
	}
}
