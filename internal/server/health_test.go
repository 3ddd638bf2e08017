package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

func startHealth(t *testing.T, probe Probe) (*HealthServer, grpc_health_v1.HealthClient) {
	t.Helper()
	s := NewHealthServer("127.0.0.1:0", 20*time.Millisecond, probe, zaptest.NewLogger(t))
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()
	require.Eventually(t, func() bool { return s.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	conn, err := grpc.NewClient(s.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		s.Stop()
		assert.NoError(t, <-errCh)
	})
	return s, grpc_health_v1.NewHealthClient(conn)
}

func status(t *testing.T, c grpc_health_v1.HealthClient, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := c.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN
	}
	return resp.GetStatus()
}

func TestHealthServer_TracksProbe(t *testing.T) {
	var failing atomic.Bool
	probe := func(context.Context) error {
		if failing.Load() {
			return errors.New("database unreachable")
		}
		return nil
	}
	_, client := startHealth(t, probe)

	require.Eventually(t, func() bool {
		return status(t, client, StorageService) == grpc_health_v1.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(t, client, ""))

	failing.Store(true)
	require.Eventually(t, func() bool {
		return status(t, client, "") == grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	failing.Store(false)
	require.Eventually(t, func() bool {
		return status(t, client, StorageService) == grpc_health_v1.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealthServer_StopIsIdempotent(t *testing.T) {
	s := NewHealthServer("127.0.0.1:0", time.Second, func(context.Context) error { return nil }, zaptest.NewLogger(t))
	done := make(chan error, 1)
	go func() { done <- s.Start() }()
	require.Eventually(t, func() bool { return s.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	s.Stop()
	s.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}
