package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/koacards/koa-server-go/internal/config"
	"github.com/koacards/koa-server-go/internal/game/schedule"
	"github.com/koacards/koa-server-go/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startGRPC(t *testing.T, srv *GRPCServer) healthpb.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func TestGRPCHealth(t *testing.T) {
	logger := zaptest.NewLogger(t)
	mgr := session.NewManager(session.DefaultConfig(), logger,
		session.WithClock(schedule.NewManualClock(time.Unix(0, 0))))
	t.Cleanup(mgr.CloseAll)

	cfg := config.ServerConfig{
		GRPC:        config.GRPCConfig{MaxConcurrentStreams: 10},
		MaxSessions: 1,
	}
	srv := NewGRPCServer(cfg, mgr, logger)
	client := startGRPC(t, srv)
	ctx := context.Background()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: SessionsService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	_, err = mgr.CreateSession(ctx, "koa")
	require.NoError(t, err)
	srv.UpdateHealth()

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: SessionsService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestGRPCHealthUnknownService(t *testing.T) {
	srv := NewGRPCServer(config.ServerConfig{}, nil, zaptest.NewLogger(t))
	client := startGRPC(t, srv)

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "koa.Nothing"})
	assert.Error(t, err)
}

func TestWatchSessionsStopsWithContext(t *testing.T) {
	srv := NewGRPCServer(config.ServerConfig{}, nil, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.WatchSessions(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
