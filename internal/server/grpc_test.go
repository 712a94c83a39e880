package server

import (
	"context"
	"net"
	"testing"

	"github.com/magefree/hearth-server-go/internal/catalogue"
	"github.com/magefree/hearth-server-go/internal/match"
	"github.com/magefree/hearth-server-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func startGameService(t *testing.T) *grpc.ClientConn {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cards, err := catalogue.Default()
	require.NoError(t, err)
	mgr := match.NewManager(cards, repository.NewMemoryStore(10), match.Options{Seed: 3}, logger)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(ChainUnaryInterceptors(
		RecoveryInterceptor(logger),
		LoggingInterceptor(logger),
	)))
	RegisterGameService(srv, NewGameService(mgr, logger))
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		srv.Stop()
		mgr.Close()
	})
	return conn
}

func invoke(t *testing.T, conn *grpc.ClientConn, method string, req map[string]any) (*structpb.Struct, error) {
	t.Helper()
	in, err := structpb.NewStruct(req)
	require.NoError(t, err)
	out := new(structpb.Struct)
	err = conn.Invoke(context.Background(), "/"+GameServiceName+"/"+method, in, out)
	return out, err
}

// TestGameServiceHealth verifies the service reports SERVING.
func TestGameServiceHealth(t *testing.T) {
	conn := startGameService(t)
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: GameServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

// TestGameServicePlay verifies joining, acting and polling over gRPC.
func TestGameServicePlay(t *testing.T) {
	conn := startGameService(t)

	a, err := invoke(t, conn, "Join", map[string]any{"name": "Jaina"})
	require.NoError(t, err)
	assert.True(t, a.Fields["waiting"].GetBoolValue())
	b, err := invoke(t, conn, "Join", map[string]any{"name": "Anduin", "hero": "priest"})
	require.NoError(t, err)
	matchID := b.Fields["matchId"].GetStringValue()
	require.Equal(t, a.Fields["matchId"].GetStringValue(), matchID)

	tokens := []string{a.Fields["token"].GetStringValue(), b.Fields["token"].GetStringValue()}
	var active, waiting string
	for _, token := range tokens {
		require.NotEmpty(t, token)
		state, err := invoke(t, conn, "Snapshot", map[string]any{"match_id": matchID, "token": token})
		require.NoError(t, err)
		if state.Fields["yourTurn"].GetBoolValue() {
			active = token
		} else {
			waiting = token
		}
	}
	require.NotEmpty(t, active)
	require.NotEmpty(t, waiting)

	_, err = invoke(t, conn, "Submit", map[string]any{"match_id": matchID, "token": waiting, "type": "end_turn"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = invoke(t, conn, "Snapshot", map[string]any{"match_id": matchID, "token": a.Fields["playerId"].GetStringValue()})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	state, err := invoke(t, conn, "Submit", map[string]any{"match_id": matchID, "token": active, "type": "end_turn"})
	require.NoError(t, err)
	assert.False(t, state.Fields["yourTurn"].GetBoolValue())
	assert.Equal(t, float64(2), state.Fields["turn"].GetNumberValue())

	list, err := invoke(t, conn, "ListMatches", map[string]any{})
	require.NoError(t, err)
	assert.Len(t, list.Fields["matches"].GetListValue().GetValues(), 1)
}

// TestGameServiceErrors verifies manager errors map onto gRPC codes.
func TestGameServiceErrors(t *testing.T) {
	conn := startGameService(t)

	_, err := invoke(t, conn, "Snapshot", map[string]any{"match_id": "nope", "token": "p"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = invoke(t, conn, "Join", map[string]any{"name": ""})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = invoke(t, conn, "Join", map[string]any{"name": "Jaina", "hero": "bard"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = invoke(t, conn, "Submit", map[string]any{"match_id": "m", "token": "p", "type": "dance"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = invoke(t, conn, "Submit", map[string]any{"type": "end_turn"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	a, err := invoke(t, conn, "Join", map[string]any{"name": "Jaina"})
	require.NoError(t, err)
	_, err = invoke(t, conn, "Submit", map[string]any{
		"match_id": a.Fields["matchId"].GetStringValue(),
		"token":    a.Fields["token"].GetStringValue(),
		"type":     "end_turn",
	})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = invoke(t, conn, "Submit", map[string]any{
		"match_id": a.Fields["matchId"].GetStringValue(),
		"token":    a.Fields["token"].GetStringValue(),
		"type":     "join",
		"payload":  map[string]any{"name": "Again"},
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestChainUnaryInterceptorsOrder verifies interceptors run outermost first.
func TestChainUnaryInterceptorsOrder(t *testing.T) {
	var calls []string
	mark := func(name string) grpc.UnaryServerInterceptor {
		return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			calls = append(calls, name)
			return handler(ctx, req)
		}
	}
	chain := ChainUnaryInterceptors(mark("a"), mark("b"))
	resp, err := chain(context.Background(), "req", &grpc.UnaryServerInfo{FullMethod: "/x/y"}, func(ctx context.Context, req any) (any, error) {
		calls = append(calls, "handler")
		return req, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "req", resp)
	assert.Equal(t, []string{"a", "b", "handler"}, calls)
}

// TestRecoveryInterceptor verifies a panic becomes codes.Internal.
func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(zaptest.NewLogger(t))
	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/y"}, func(context.Context, any) (any, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}
