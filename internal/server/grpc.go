package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magefree/hearth-server-go/internal/catalogue"
	"github.com/magefree/hearth-server-go/internal/match"
	"github.com/magefree/hearth-server-go/internal/protocol"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GameServiceName is the fully qualified gRPC service name.
const GameServiceName = "hearth.v1.GameService"

// GameServiceServer is the gRPC surface over the match manager. Requests and
// responses are google.protobuf.Struct values shaped like the JSON protocol.
type GameServiceServer interface {
	Join(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Submit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Snapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMatches(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// GameServiceDesc describes GameServiceServer to grpc.Server.
var GameServiceDesc = grpc.ServiceDesc{
	ServiceName: GameServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Join", Handler: methodHandler("Join", GameServiceServer.Join)},
		{MethodName: "Submit", Handler: methodHandler("Submit", GameServiceServer.Submit)},
		{MethodName: "Snapshot", Handler: methodHandler("Snapshot", GameServiceServer.Snapshot)},
		{MethodName: "ListMatches", Handler: methodHandler("ListMatches", GameServiceServer.ListMatches)},
	},
	Streams: []grpc.StreamDesc{},
}

type unaryCall func(GameServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodHandler(name string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + GameServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GameServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(GameServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RegisterGameService registers srv and returns the health server reporting
// it as SERVING.
func RegisterGameService(s *grpc.Server, srv GameServiceServer) *health.Server {
	s.RegisterService(&GameServiceDesc, srv)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(GameServiceName, healthpb.HealthCheckResponse_SERVING)
	return hs
}

// GameService implements GameServiceServer. Clients on this transport poll
// Snapshot instead of receiving pushes.
type GameService struct {
	manager *match.Manager
	logger  *zap.Logger
}

// NewGameService creates the gRPC game service.
func NewGameService(mgr *match.Manager, logger *zap.Logger) *GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameService{manager: mgr, logger: logger}
}

type seatRequest struct {
	MatchID string `json:"match_id"`
	Token   string `json:"token"`
}

type submitRequest struct {
	MatchID string               `json:"match_id"`
	Token   string               `json:"token"`
	Type    protocol.MessageType `json:"type"`
	Version int                  `json:"version"`
	Payload json.RawMessage      `json:"payload"`
}

// Join seats a player and returns the ticket.
func (s *GameService) Join(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req protocol.Join
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	ticket, err := s.manager.Join(ctx, req)
	if err != nil {
		return nil, statusOf(err)
	}
	return toStruct(protocol.Joined{MatchID: ticket.MatchID, PlayerID: ticket.PlayerID, Token: ticket.Token, Waiting: ticket.Waiting})
}

// Submit applies one intent and returns the caller's refreshed state.
func (s *GameService) Submit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req submitRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	if req.MatchID == "" || req.Token == "" {
		return nil, status.Error(codes.InvalidArgument, "match_id and token are required")
	}
	env := protocol.Envelope{Type: req.Type, Version: req.Version, Payload: req.Payload}
	cmd, err := env.Command()
	if err != nil {
		return nil, statusOf(err)
	}
	if cmd.Type() == protocol.TypeJoin {
		return nil, status.Error(codes.InvalidArgument, "use Join to take a seat")
	}
	if err := s.manager.Submit(ctx, req.MatchID, req.Token, cmd); err != nil {
		return nil, statusOf(err)
	}
	state, err := s.manager.Snapshot(req.MatchID, req.Token)
	if err != nil {
		return nil, statusOf(err)
	}
	return toStruct(state)
}

// Snapshot returns the match as the requesting player sees it.
func (s *GameService) Snapshot(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req seatRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	state, err := s.manager.Snapshot(req.MatchID, req.Token)
	if err != nil {
		return nil, statusOf(err)
	}
	return toStruct(state)
}

// ListMatches summarises every match on the server.
func (s *GameService) ListMatches(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(map[string]any{"matches": s.manager.List()})
}

func fromStruct(in *structpb.Struct, out any) error {
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "encode request: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	return nil
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "decode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return out, nil
}

// statusOf maps manager and protocol errors onto gRPC codes.
func statusOf(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, match.ErrMatchNotFound):
		code = codes.NotFound
	case errors.Is(err, match.ErrNotSeated):
		code = codes.PermissionDenied
	case errors.Is(err, match.ErrTooManyMatches):
		code = codes.ResourceExhausted
	case errors.Is(err, match.ErrSeatTaken),
		errors.Is(err, match.ErrNotYourTurn),
		errors.Is(err, match.ErrMatchNotStarted),
		errors.Is(err, match.ErrMatchOver),
		errors.Is(err, match.ErrRejected):
		code = codes.FailedPrecondition
	case errors.Is(err, protocol.ErrInvalidPayload),
		errors.Is(err, protocol.ErrUnknownMessage),
		errors.Is(err, protocol.ErrUnsupportedVersion),
		errors.Is(err, match.ErrUnsupportedCommand),
		errors.Is(err, catalogue.ErrUnknownDeck),
		errors.Is(err, catalogue.ErrUnknownHero):
		code = codes.InvalidArgument
	default:
		return status.Error(codes.Internal, fmt.Sprintf("unexpected error: %v", err))
	}
	return status.Error(code, err.Error())
}
