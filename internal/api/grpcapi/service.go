// Package grpcapi serves the simulator over gRPC. Messages are
// google.protobuf.Struct values carrying the same JSON fields as the HTTP API,
// so no generated code is needed.
package grpcapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Ellipz/ManaSourceCalc/internal/profile"
	"github.com/Ellipz/ManaSourceCalc/internal/service"
)

const ServiceName = "manasim.v1.Simulator"

// SimulatorServer is the server API for the Simulator service.
type SimulatorServer interface {
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Analyze(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the Simulator service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SimulatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Simulate", Handler: unaryHandler("Simulate", SimulatorServer.Simulate)},
		{MethodName: "Analyze", Handler: unaryHandler("Analyze", SimulatorServer.Analyze)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "manasim/v1/simulator.proto",
}

type method func(SimulatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call method) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SimulatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(SimulatorServer), ctx, req.(*structpb.Struct))
		})
	}
}

// RegisterSimulatorServer registers impl on s.
func RegisterSimulatorServer(s grpc.ServiceRegistrar, impl SimulatorServer) {
	s.RegisterService(&ServiceDesc, impl)
}

// simulateRequest mirrors the /simulate query parameters.
type simulateRequest struct {
	Format         string  `json:"format"`
	Deck           string  `json:"deck"`
	DeckSize       *int    `json:"deck_size"`
	Lands          *int    `json:"lands"`
	ColoredSources *int    `json:"colored_sources"`
	Turn           *int    `json:"turn"`
	ColoredNeeded  *int    `json:"colored_needed"`
	Trials         *int    `json:"trials"`
	Mulligan       *string `json:"mulligan"`
	TappedDelay    *bool   `json:"tapped_delay"`
	Workers        *int    `json:"workers"`
	Seed           *uint64 `json:"seed"`
}

// Simulator adapts service.Service to SimulatorServer.
type Simulator struct {
	svc *service.Service
	log zerolog.Logger
}

func NewSimulator(svc *service.Service, logger zerolog.Logger) *Simulator {
	return &Simulator{svc: svc, log: logger}
}

var _ SimulatorServer = (*Simulator)(nil)

func (s *Simulator) Simulate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req simulateRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	resp, err := s.svc.Simulate(s.log.WithContext(ctx), service.SimulateRequest{
		Format: req.Format,
		Deck:   req.Deck,
		Overrides: profile.Overrides{
			DeckSize:       req.DeckSize,
			Lands:          req.Lands,
			ColoredSources: req.ColoredSources,
			Turn:           req.Turn,
			ColoredNeeded:  req.ColoredNeeded,
			Trials:         req.Trials,
			Mulligan:       req.Mulligan,
			TappedDelay:    req.TappedDelay,
			Workers:        req.Workers,
			Seed:           req.Seed,
		},
	})
	if err != nil {
		return nil, s.toStatus(err)
	}
	return encode(resp)
}

func (s *Simulator) Analyze(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req service.AnalyzeRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	resp, err := s.svc.Analyze(s.log.WithContext(ctx), req, nil)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return encode(resp)
}

func (s *Simulator) toStatus(err error) error {
	switch {
	case service.IsInvalid(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case ctxErr(err) != codes.OK:
		return status.Error(ctxErr(err), err.Error())
	default:
		s.log.Error().Err(err).Msg("rpc failed")
		return status.Error(codes.Internal, "internal error")
	}
}

func ctxErr(err error) codes.Code {
	switch status.FromContextError(err).Code() {
	case codes.Canceled:
		return codes.Canceled
	case codes.DeadlineExceeded:
		return codes.DeadlineExceeded
	}
	return codes.OK
}

func decode(in *structpb.Struct, v any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if err := json.Unmarshal(b, v); err != nil {
		return status.Error(codes.InvalidArgument, fmt.Sprintf("decode request: %v", err))
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
