// ABOUTME: DRIFTsync client core
// ABOUTME: Owns the socket, sample rings, and estimator state behind a single lock
// Package sync implements the DRIFTsync client core: a concurrent sampling
// and filtering loop that estimates the current time of a remote reference
// clock ("global time") and a drift-adjusted rate relating the local
// monotonic clock to it.
//
// The core maintains a bounded history of round-trip samples, rejects
// outliers via a median round-trip filter, continuously re-estimates an
// offset and a clock-rate ratio, and exposes a thread-safe query surface.
// It is a close structural port of the reference DRIFTsync C client
// (original_source/client/c/driftsync.c), adapted to Go idiom: goroutines
// under an errgroup, a context-driven shutdown path the C reference lacked,
// and a generic ring buffer instead of a void*-typed ring_buffer_t.
package sync

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/driftsync-project/driftsync-go/internal/protocol"
	"github.com/driftsync-project/driftsync-go/internal/ring"
)

const (
	// DefaultCapacity is the reference N=10 history window.
	DefaultCapacity = 10

	// DefaultInterval is the reference client's compiled-in probe interval.
	DefaultInterval = 5 * time.Second

	// rttRejectThreshold is the maximum allowed deviation of a sample's RTT
	// from the current median RTT before it is rejected (§4.3).
	rttRejectThreshold = 10 * time.Millisecond
)

// sample mirrors the (local, remote) pair admitted from a reply.
type sample struct {
	local  int64
	remote int64
}

// Statistics reports cumulative request/reply counters.
type Statistics struct {
	Sent     uint64
	Received uint64
	Rejected uint64
}

// Accuracy is a min/avg/max summary of recorded accuracy probes, already
// scaled to the caller's unit. It is the zero value when no probes have
// been recorded.
type Accuracy struct {
	Min float64
	Avg float64
	Max float64
}

// Config configures a Client.
type Config struct {
	// ServerAddr is the reference server's UDP address, e.g. "host:4318".
	ServerAddr string

	// Scale is the multiplier applied at the read boundary to convert
	// internal microseconds into the caller's unit (e.g. 1e-3 for
	// milliseconds). Zero defaults to 1.0 (microseconds).
	Scale float64

	// Interval is how often probe requests are sent. Zero defaults to
	// DefaultInterval.
	Interval time.Duration

	// Capacity is the ring history window size. Zero defaults to
	// DefaultCapacity.
	Capacity int

	// MeasureAccuracy enables the self-consistency accuracy probe.
	MeasureAccuracy bool

	// Logger receives transient I/O and protocol-mismatch diagnostics. A
	// no-op logger is used if nil.
	Logger *zap.SugaredLogger
}

// Client is the clock-sync core. It owns a UDP socket, the bounded history
// rings, and the emitter/ingestor goroutines. Close must be called to
// release the socket and join the goroutines; repeated calls are harmless.
type Client struct {
	conn   *net.UDPConn
	server *net.UDPAddr
	scale  float64

	interval        time.Duration
	measureAccuracy bool
	logger          *zap.SugaredLogger

	mu   sync.Mutex
	cond *sync.Cond // broadcast whenever a new accuracy probe is pushed

	roundTripTimes *ring.Ring[int64]
	samples        *ring.Ring[sample]
	offsets        *ring.Ring[int64]
	accuracyProbes *ring.Ring[int64]

	averageOffset int64
	clockRate     float64
	stats         Statistics

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	closeOnce sync.Once
	closeErr  error
}

// Open resolves cfg.ServerAddr, creates the client's UDP socket, and starts
// the probe emitter and reply ingestor goroutines. ctx bounds the lifetime
// of both goroutines; cancelling ctx (or calling Close) stops them. On
// failure to resolve the address or create the socket, Open returns a
// non-nil error and no partial Client (§7 "initialization failure").
func Open(ctx context.Context, cfg Config) (*Client, error) {
	addr, err := net.ResolveUDPAddr("udp", cfg.ServerAddr)
	if err != nil {
		return nil, fmt.Errorf("sync: resolve server address %q: %w", cfg.ServerAddr, err)
	}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("sync: open socket: %w", err)
	}

	scale := cfg.Scale
	if scale == 0 {
		scale = 1.0
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	capacity := cfg.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	c := &Client{
		conn:            conn,
		server:          addr,
		scale:           scale,
		interval:        interval,
		measureAccuracy: cfg.MeasureAccuracy,
		logger:          logger,
		roundTripTimes:  ring.New[int64](capacity),
		samples:         ring.New[sample](capacity),
		offsets:         ring.New[int64](capacity),
		accuracyProbes:  ring.New[int64](capacity),
		clockRate:       1.0,
	}
	c.cond = sync.NewCond(&c.mu)

	runCtx, cancel := context.WithCancel(ctx)
	c.ctx = runCtx
	c.cancel = cancel

	g, gctx := errgroup.WithContext(runCtx)
	c.group = g
	g.Go(func() error {
		c.emitLoop(gctx)
		return nil
	})
	g.Go(func() error {
		c.ingestLoop(gctx)
		return nil
	})

	return c, nil
}

// Close stops the emitter and ingestor goroutines, closes the socket, and
// waits for both goroutines to exit. Close is idempotent; the first call's
// result is returned to every caller.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		// Unblocks the ingestor's blocking ReadFromUDP immediately, rather
		// than waiting for the next packet or context poll.
		c.closeErr = c.conn.Close()
		if err := c.group.Wait(); err != nil && c.closeErr == nil {
			c.closeErr = err
		}
		// Wake any accuracy waiter stuck on the condition variable so it
		// observes the shutdown rather than blocking forever.
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	return c.closeErr
}

// localTimeMicros returns the host's monotonic clock in microseconds since
// an arbitrary epoch, derived from time.Now()'s monotonic reading.
func localTimeMicros() int64 {
	return monotonicMicros(time.Now())
}
