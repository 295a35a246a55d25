// ABOUTME: Client-side orchestration
// ABOUTME: Server discovery, connection, and the stream/report loops
// Package app wires together server discovery and the clock-sync client
// into the reporting loop driven by cmd/driftsync-client.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/driftsync-project/driftsync-go/internal/discovery"
	"github.com/driftsync-project/driftsync-go/internal/statusapi"
	syncpkg "github.com/driftsync-project/driftsync-go/internal/sync"
)

// Config configures a client run.
type Config struct {
	// ServerAddr is the host:port of the driftsync server. Empty triggers
	// mDNS discovery of the first server found.
	ServerAddr      string
	Scale           float64
	Interval        time.Duration
	Capacity        int
	MeasureAccuracy bool
	// Stream selects the demo stream-only reporting loop (prints
	// GlobalTime at a fixed cadence) instead of the default
	// statistics/accuracy reporting loop.
	Stream bool
	// StatusAddr, if non-empty, serves /status, /metrics and /healthz for
	// this client's sync state.
	StatusAddr string
	Logger     *zap.SugaredLogger
}

// App orchestrates discovery, connection, and the reporting loop for one
// client run.
type App struct {
	cfg        Config
	logger     *zap.SugaredLogger
	instanceID string
}

// New builds an App. Each App carries its own instance id, attached to
// every log line, so multiple concurrent runs against the same server are
// distinguishable.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		instanceID: uuid.New().String(),
	}
}

// Run resolves the server address, connects, and runs the reporting loop
// until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	log := a.logger.With("instance_id", a.instanceID)

	addr, err := a.resolveServerAddr(ctx, log)
	if err != nil {
		return err
	}

	client, err := a.connect(ctx, addr, log)
	if err != nil {
		return err
	}
	defer client.Close()

	wg, gctx := errgroup.WithContext(ctx)

	if a.cfg.StatusAddr != "" {
		status := statusapi.New(client, log)
		wg.Go(func() error {
			return status.Run(gctx, a.cfg.StatusAddr)
		})
	}

	wg.Go(func() error {
		if a.cfg.Stream {
			return a.streamLoop(gctx, client, log)
		}
		return a.reportLoop(gctx, client, log)
	})

	return wg.Wait()
}

// resolveServerAddr returns cfg.ServerAddr directly if set, otherwise
// browses mDNS for the first _driftsync._udp server advertised.
func (a *App) resolveServerAddr(ctx context.Context, log *zap.SugaredLogger) (string, error) {
	if a.cfg.ServerAddr != "" {
		return a.cfg.ServerAddr, nil
	}

	log.Infow("no --server given, browsing mdns for a driftsync server")

	mgr := discovery.NewManager(discovery.Config{Logger: log})
	defer mgr.Stop()

	if err := mgr.Browse(); err != nil {
		return "", fmt.Errorf("mdns browse: %w", err)
	}

	select {
	case server := <-mgr.Servers():
		addr := fmt.Sprintf("%s:%d", server.Host, server.Port)
		log.Infow("discovered server", "addr", addr)
		return addr, nil
	case <-time.After(10 * time.Second):
		return "", fmt.Errorf("no driftsync server discovered via mdns within 10s")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// connect opens the clock-sync client against addr.
func (a *App) connect(ctx context.Context, addr string, log *zap.SugaredLogger) (*syncpkg.Client, error) {
	log.Infow("connecting", "server", addr)

	client, err := syncpkg.Open(ctx, syncpkg.Config{
		ServerAddr:      addr,
		Scale:           a.cfg.Scale,
		Interval:        a.cfg.Interval,
		Capacity:        a.cfg.Capacity,
		MeasureAccuracy: a.cfg.MeasureAccuracy,
		Logger:          log,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	return client, nil
}

// streamLoop is the demo mode that only prints the projected global time,
// mirroring the C reference's minimal playback-position consumer.
func (a *App) streamLoop(ctx context.Context, client *syncpkg.Client, log *zap.SugaredLogger) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			log.Infow("global time", "value", client.GlobalTime())
		}
	}
}

// reportLoop is the default mode: every accuracy cycle it blocks on the
// next accuracy probe (15s timeout) and logs statistics, offset, clock
// rate, median RTT, and accuracy together.
func (a *App) reportLoop(ctx context.Context, client *syncpkg.Client, log *zap.SugaredLogger) error {
	for {
		acc := client.Accuracy(true, true, 15*time.Second)
		if ctx.Err() != nil {
			return nil
		}

		stats := client.Statistics()
		log.Infow("sync report",
			"sent", stats.Sent,
			"received", stats.Received,
			"rejected", stats.Rejected,
			"offset", client.Offset(),
			"clock_rate", client.ClockRate(),
			"median_rtt", client.MedianRoundTripTime(),
			"accuracy_min", acc.Min,
			"accuracy_avg", acc.Avg,
			"accuracy_max", acc.Max,
		)

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}
