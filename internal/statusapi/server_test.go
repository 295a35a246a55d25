// ABOUTME: Tests for the optional HTTP status surface
// ABOUTME: Covers /healthz, /status, and /metrics against a fake core
package statusapi

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncpkg "github.com/driftsync-project/driftsync-go/internal/sync"
)

type fakeCore struct {
	snap syncpkg.Snapshot
}

func (f fakeCore) Snapshot() syncpkg.Snapshot { return f.snap }

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestHealthzAndStatus(t *testing.T) {
	core := fakeCore{snap: syncpkg.Snapshot{
		Statistics:          syncpkg.Statistics{Sent: 10, Received: 9, Rejected: 1},
		Offset:              1234.5,
		ClockRate:           1.0001,
		MedianRoundTripTime: 42.0,
		HasAccuracy:         true,
		Accuracy:            syncpkg.Accuracy{Min: 1, Avg: 2, Max: 3},
	}}

	addr := freeAddr(t)
	srv := New(core, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = srv.Run(ctx, addr)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.Now().Add(2 * time.Second)
	var resp *http.Response
	var err error
	for time.Now().Before(deadline) {
		resp, err = http.Get("http://" + addr + "/healthz")
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get("http://" + addr + "/status")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
