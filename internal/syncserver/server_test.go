// ABOUTME: Tests for the reference UDP server
// ABOUTME: Covers listen/serve/close and the request-reply roundtrip
package syncserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsync-project/driftsync-go/internal/protocol"
)

func startTestServer(t *testing.T) (*Server, func()) {
	t.Helper()
	srv, err := Listen(Config{Addr: "127.0.0.1:0"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = srv.Serve(ctx)
		close(done)
	}()

	return srv, func() {
		cancel()
		<-done
	}
}

func TestEchoesReplyWithRemoteStamp(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	conn, err := net.Dial("udp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	req := protocol.NewRequest(42).Encode()
	_, err = conn.Write(req[:])
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var buf [protocol.Size]byte
	n, err := conn.Read(buf[:])
	require.NoError(t, err)

	reply, err := protocol.Decode(buf[:n])
	require.NoError(t, err)

	assert.True(t, reply.IsReply())
	assert.Equal(t, int64(42), reply.Local)
	assert.Greater(t, reply.Remote, int64(0))
}

func TestRejectsAlreadyFlaggedReply(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	conn, err := net.Dial("udp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	already := protocol.NewRequest(1).Reply(2).Encode()
	_, err = conn.Write(already[:])
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var buf [protocol.Size]byte
	_, err = conn.Read(buf[:])
	assert.Error(t, err, "server must not echo a packet that already carries the reply flag")
}
