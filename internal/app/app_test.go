// ABOUTME: Tests for client-side orchestration
// ABOUTME: Covers the stream loop against a fake echo server and address resolution
package app

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/driftsync-project/driftsync-go/internal/protocol"
)

// echoServer is a minimal UDP reflector standing in for driftsyncd.
func echoServer(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	go func() {
		buf := make([]byte, protocol.Size)
		for {
			n, peer, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			pkt, err := protocol.Decode(buf[:n])
			if err != nil {
				continue
			}
			reply := pkt.Reply(time.Now().UnixMicro()).Encode()
			_, _ = conn.WriteToUDP(reply[:], peer)
		}
	}()

	return conn
}

func TestRunStreamModeExitsOnCancel(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	a := New(Config{
		ServerAddr: srv.LocalAddr().String(),
		Scale:      1.0,
		Interval:   10 * time.Millisecond,
		Capacity:   5,
		Stream:     true,
		Logger:     zap.NewNop().Sugar(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := a.Run(ctx)
	require.NoError(t, err)
}

func TestResolveServerAddrPassesThroughExplicit(t *testing.T) {
	a := New(Config{ServerAddr: "198.51.100.1:4318", Logger: zap.NewNop().Sugar()})
	addr, err := a.resolveServerAddr(context.Background(), zap.NewNop().Sugar())
	require.NoError(t, err)
	require.Equal(t, "198.51.100.1:4318", addr)
}
