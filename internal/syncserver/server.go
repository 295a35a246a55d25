// ABOUTME: DRIFTsync reference server
// ABOUTME: Stateless UDP echo that timestamps and reflects request packets
// Package syncserver implements the DRIFTsync reference server: a
// stateless UDP echo that stamps its local monotonic time into every valid
// request and reflects it back to the sender.
//
// This is a direct structural port of original_source/server/server.c.
package syncserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/driftsync-project/driftsync-go/internal/protocol"
)

// Config configures a Server.
type Config struct {
	// Addr is the local UDP address to bind, e.g. ":4318". Empty defaults
	// to the wildcard address on protocol.Port.
	Addr string

	// Verbose logs every processed request at debug level, mirroring the
	// C reference's -v/--verbose flag.
	Verbose bool

	Logger *zap.SugaredLogger
}

// Server is the stateless echo server.
type Server struct {
	conn    *net.UDPConn
	verbose bool
	logger  *zap.SugaredLogger
}

// Listen binds the server's UDP socket with address reuse enabled, as the
// C reference does via SO_REUSEADDR.
func Listen(cfg Config) (*Server, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = fmt.Sprintf(":%d", protocol.Port)
	}

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("syncserver: resolve %q: %w", addr, err)
	}

	lc := net.ListenConfig{Control: setReuseAddr}
	pc, err := lc.ListenPacket(context.Background(), "udp", udpAddr.String())
	if err != nil {
		return nil, fmt.Errorf("syncserver: listen: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Server{
		conn:    pc.(*net.UDPConn),
		verbose: cfg.Verbose,
		logger:  logger,
	}, nil
}

// Addr returns the server's bound local address.
func (s *Server) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Close releases the server's socket, unblocking any pending Serve call.
func (s *Server) Close() error {
	return s.conn.Close()
}

// Serve blocks, receiving and replying to requests until ctx is cancelled
// or Close is called. It never returns a non-nil error for the normal
// shutdown path.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.conn.Close()
	}()

	var buf [protocol.Size]byte
	for {
		n, addr, err := s.conn.ReadFromUDP(buf[:])
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warnw("receive failed", "error", err)
			continue
		}

		if n < protocol.Size {
			s.logger.Warnw("received incomplete packet", "bytes", n)
			continue
		}

		pkt, err := protocol.Decode(buf[:n])
		if err != nil {
			s.logger.Warnw("protocol mismatch", "error", err)
			continue
		}

		if pkt.IsReply() {
			s.logger.Warnw("received reply packet")
			continue
		}

		reply := pkt.Reply(localTimeMicros())
		encoded := reply.Encode()

		if s.verbose {
			s.logger.Debugw("processed request packet",
				"local", pkt.Local, "remote", reply.Remote, "from", addr)
		}

		written, err := s.conn.WriteToUDP(encoded[:], addr)
		if err != nil {
			s.logger.Warnw("send failed", "error", err)
			continue
		}
		if written != protocol.Size {
			s.logger.Warnw("sent incomplete packet", "bytes", written)
		}
	}
}

// localTimeMicros returns the server's monotonic clock in microseconds
// since an arbitrary epoch.
func localTimeMicros() int64 {
	return time.Since(serverStart).Microseconds()
}

var serverStart = time.Now()
