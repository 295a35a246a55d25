// ABOUTME: Public type aliases and Open for the driftsync client
// ABOUTME: Thin re-export layer over internal/sync for external importers
package driftsync

import (
	"context"

	syncpkg "github.com/driftsync-project/driftsync-go/internal/sync"
)

// Config configures a Client. See internal/sync.Config for field docs.
type Config = syncpkg.Config

// Client is a running clock-sync session against a driftsync server.
type Client = syncpkg.Client

// Statistics reports probe send/receive/reject counters.
type Statistics = syncpkg.Statistics

// Accuracy reports the accuracy probe summary.
type Accuracy = syncpkg.Accuracy

// Snapshot is a consistent point-in-time read of a Client's state.
type Snapshot = syncpkg.Snapshot

// Open connects a new Client to the server named in cfg.ServerAddr.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	return syncpkg.Open(ctx, cfg)
}
