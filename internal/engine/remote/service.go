// Package remote reaches an engine running in another process over gRPC.
//
// There is no generated stub: the single unary method carries the engine
// manifest as a google.protobuf.Struct and answers with another Struct, so
// both sides share the encoding in package engine. Engine hosts also serve
// grpc.health.v1 under ServiceName.
package remote

import (
	"context"
	"errors"

	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// Name identifies this backend in logs and run records.
	Name = "remote"
	// ServiceName is the gRPC service and health-check name.
	ServiceName = "fdtd.engine.v1.Engine"
	// RunMethod is the full method name of the unary run call.
	RunMethod = "/" + ServiceName + "/Run"
	// MaxMessageSize bounds manifests and results on both sides. Every
	// prism carries one vertex per 0.1 of outline, so large rings exceed
	// gRPC's 4 MB default.
	MaxMessageSize = 256 << 20
)

// ServerOptions returns the options an engine host needs to accept large
// manifests.
func ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.MaxRecvMsgSize(MaxMessageSize),
		grpc.MaxSendMsgSize(MaxMessageSize),
	}
}

func resultToStruct(r *models.RunResult) (*structpb.Struct, error) {
	files := make([]any, 0, len(r.OutputFiles))
	for _, f := range r.OutputFiles {
		files = append(files, f)
	}
	return structpb.NewStruct(map[string]any{
		"engine":  r.Engine,
		"status":  string(r.Status),
		"files":   files,
		"message": r.Message,
	})
}

func resultFromStruct(s *structpb.Struct) *models.RunResult {
	fields := s.GetFields()
	r := &models.RunResult{
		Engine:  fields["engine"].GetStringValue(),
		Status:  models.RunStatus(fields["status"].GetStringValue()),
		Message: fields["message"].GetStringValue(),
	}
	for _, f := range fields["files"].GetListValue().GetValues() {
		r.OutputFiles = append(r.OutputFiles, f.GetStringValue())
	}
	return r
}

// statusFromError maps engine errors onto gRPC codes.
func statusFromError(ctx context.Context, err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, engine.ErrInvalidConfig):
		code = codes.InvalidArgument
	case errors.Is(err, engine.ErrEngineUnavailable):
		code = codes.Unavailable
	case errors.Is(err, engine.ErrEngineFailed):
		code = codes.Aborted
	case ctx.Err() != nil:
		code = status.FromContextError(ctx.Err()).Code()
	}
	return status.Error(code, err.Error())
}

// errorFromStatus is the client-side inverse of statusFromError.
func errorFromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return errors.Join(engine.ErrEngineFailed, err)
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return errors.Join(engine.ErrInvalidConfig, err)
	case codes.Unavailable, codes.Unimplemented:
		return errors.Join(engine.ErrEngineUnavailable, err)
	case codes.ResourceExhausted:
		// Message size limits; a busy host answers Unavailable.
		return errors.Join(engine.ErrEngineFailed, err)
	case codes.Canceled:
		return errors.Join(context.Canceled, err)
	case codes.DeadlineExceeded:
		return errors.Join(engine.ErrEngineFailed, context.DeadlineExceeded, err)
	default:
		return errors.Join(engine.ErrEngineFailed, err)
	}
}
