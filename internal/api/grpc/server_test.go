package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"

	"orggov-backend/internal/api/grpc/interceptor"
	"orggov-backend/internal/security"
)

func startServer(t *testing.T) (*Server, healthpb.HealthClient) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewServer(security.NewTokenManager("grpc-test-secret", time.Hour))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return srv, healthpb.NewHealthClient(conn)
}

func TestServer_HealthIsPublic(t *testing.T) {
	srv, client := startServer(t)
	ctx := context.Background()

	srv.SetServing(true)
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	srv.SetServing(false)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

type flakyPinger struct {
	failing atomic.Bool
}

func (p *flakyPinger) PingContext(ctx context.Context) error {
	if p.failing.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestServer_WatchDependency(t *testing.T) {
	srv, client := startServer(t)
	p := &flakyPinger{}
	p.failing.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.WatchDependency(ctx, p, 10*time.Millisecond)

	status := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
		if err != nil {
			return healthpb.HealthCheckResponse_UNKNOWN
		}
		return resp.Status
	}
	assert.Eventually(t, func() bool { return status() == healthpb.HealthCheckResponse_NOT_SERVING }, time.Second, 10*time.Millisecond)

	p.failing.Store(false)
	assert.Eventually(t, func() bool { return status() == healthpb.HealthCheckResponse_SERVING }, time.Second, 10*time.Millisecond)
}

func TestAccountIDFromContext(t *testing.T) {
	_, err := AccountIDFromContext(context.Background())
	assert.Error(t, err)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(interceptor.AccountIDKey, "not-a-number"))
	_, err = AccountIDFromContext(ctx)
	assert.Error(t, err)

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs(interceptor.AccountIDKey, "12"))
	id, err := AccountIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(12), id)
}
