package grpcx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type flakyStore struct{ down atomic.Bool }

func (s *flakyStore) Ping(context.Context) error {
	if s.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestHealth_ReflectsStore(t *testing.T) {
	req := require.New(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(log)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.GRPC().Serve(lis) }()
	t.Cleanup(srv.Stop)

	store := &flakyStore{}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.Watch(ctx, store, 10*time.Millisecond)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	req.NoError(err)
	t.Cleanup(func() { _ = conn.Close() })
	client := healthpb.NewHealthClient(conn)

	serving := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
		if err != nil {
			return healthpb.HealthCheckResponse_UNKNOWN
		}
		return resp.GetStatus()
	}

	req.Eventually(func() bool { return serving() == healthpb.HealthCheckResponse_SERVING }, time.Second, 10*time.Millisecond)

	store.down.Store(true)
	req.Eventually(func() bool { return serving() == healthpb.HealthCheckResponse_NOT_SERVING }, time.Second, 10*time.Millisecond)
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{&domain.FeatureDisabledError{Feature: "Calling"}, codes.FailedPrecondition},
		{&domain.TransactionConflictError{Attempts: 3, Err: errors.New("40001")}, codes.Aborted},
		{domain.ErrReactionNotFound, codes.NotFound},
		{domain.ErrNotParticipant, codes.PermissionDenied},
		{domain.ErrReactionExists, codes.AlreadyExists},
		{domain.ErrTooManyReactions, codes.ResourceExhausted},
		{status.Error(codes.Unauthenticated, "no"), codes.Unauthenticated},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, status.Code(toStatus(tt.err)), tt.err.Error())
	}
	require.NoError(t, toStatus(nil))
}

func TestUnaryInterceptor_RecoversPanic(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ic := UnaryServerInterceptor(log, time.Second)

	_, err := ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/Y"},
		func(ctx context.Context, req any) (any, error) {
			_, ok := ctx.Deadline()
			require.True(t, ok)
			panic("boom")
		})
	require.Equal(t, codes.Internal, status.Code(err))
}
