package remote

import (
	"context"
	"log/slog"

	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server executes manifests received over gRPC on a local engine.Runner.
// Runs are not queued: when every slot is taken the call fails with
// Unavailable.
type Server struct {
	runner engine.Runner
	tokens chan struct{}
	logger *slog.Logger
}

// NewServer allows up to maxRuns concurrent runs (at least one).
func NewServer(runner engine.Runner, maxRuns int) *Server {
	if maxRuns < 1 {
		maxRuns = 1
	}
	tokens := make(chan struct{}, maxRuns)
	for i := 0; i < maxRuns; i++ {
		tokens <- struct{}{}
	}
	return &Server{
		runner: runner,
		tokens: tokens,
		logger: logger.Default,
	}
}

// SetLogger sets the server's logger
func (s *Server) SetLogger(l *slog.Logger) {
	s.logger = l
}

// Register adds the engine service to a gRPC server.
func (s *Server) Register(r grpc.ServiceRegistrar) {
	r.RegisterService(&serviceDesc, s)
}

// Run decodes the manifest, runs it and encodes the result.
func (s *Server) Run(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	cfg, err := engine.FromManifest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	select {
	case <-s.tokens:
		defer func() { s.tokens <- struct{}{} }()
	default:
		s.logger.Warn("run rejected, engine busy", "run_id", cfg.RunID)
		return nil, status.Error(codes.Unavailable, "engine busy")
	}

	s.logger.Info("run accepted", "run_id", cfg.RunID, "prefix", cfg.FilenamePrefix, "engine", s.runner.Name())
	result, err := s.runner.Run(ctx, cfg)
	if err != nil {
		s.logger.Error("run failed", "run_id", cfg.RunID, "error", err)
		return nil, statusFromError(ctx, err)
	}

	out, err := resultToStruct(result)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

type engineServer interface {
	Run(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

func runHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(engineServer).Run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RunMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(engineServer).Run(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*engineServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Run",
			Handler:    runHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fdtd/engine/v1/engine.proto",
}
