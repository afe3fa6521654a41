package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/bayleafwalker/ariadne/internal/analyzer"
	"github.com/bayleafwalker/ariadne/internal/coordinate"
	"github.com/bayleafwalker/ariadne/internal/graph"
)

// Server implements AnalysisServer. Every request runs its own analysis.
type Server struct {
	log logr.Logger
}

func New(log logr.Logger) *Server {
	return &Server{log: log}
}

func (s *Server) Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is nil")
	}
	var r Request
	if err := FromStruct(req, &r); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	if !hasIdentifier(r.InternalIdentifiers) {
		return nil, status.Error(codes.InvalidArgument, "internalIdentifiers is required")
	}
	in, err := r.Input()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	a, err := analyzer.NewDefault(analyzer.Config{
		InternalIdentifiers: r.InternalIdentifiers,
		Suppressions:        r.Suppressions,
		Logger:              s.log,
	})
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := a.Analyze(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := ToStruct(NewResponse(res))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	s.log.V(1).Info("analysis served", "artifacts", res.Stats.Artifacts, "tiers", res.Stats.Tiers)
	return out, nil
}

func hasIdentifier(ids []string) bool {
	for _, id := range ids {
		if strings.TrimSpace(id) != "" {
			return true
		}
	}
	return false
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, coordinate.ErrMalformed),
		errors.Is(err, graph.ErrNotApplicable),
		errors.Is(err, analyzer.ErrInvalidFinding):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// LoggingInterceptor logs every unary call with its status code and duration.
func LoggingInterceptor(log logr.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Info("rpc", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start).String())
		return resp, err
	}
}
