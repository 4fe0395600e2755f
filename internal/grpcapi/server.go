package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nyashahama/shopping-agent-backend/internal/history"
	"github.com/nyashahama/shopping-agent-backend/internal/service"
	"github.com/nyashahama/shopping-agent-backend/internal/store"
)

// Service is the slice of the use-case layer the gRPC surface needs.
type Service interface {
	Recommend(ctx context.Context, userID string) (store.Recommendation, error)
}

// Server implements RecommendationServer.
type Server struct {
	svc    Service
	logger *slog.Logger
}

// NewServer builds a *grpc.Server with RecommendationService and the
// standard health service registered.
func NewServer(svc Service, logger *slog.Logger) *grpc.Server {
	s := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(logger)))

	RegisterRecommendationServer(s, &Server{svc: svc, logger: logger})

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	return s
}

// Recommend reads {"user_id": "..."} and returns the result fields plus
// "recommendation_id" when the result was recorded.
func (s *Server) Recommend(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID := in.GetFields()["user_id"].GetStringValue()

	rec, err := s.svc.Recommend(ctx, userID)
	switch {
	case errors.Is(err, history.ErrUnknownBuyer):
		return nil, status.Error(codes.NotFound, "unknown buyer")
	case errors.Is(err, service.ErrPipeline):
		s.logger.Error("grpc: recommendation failed", "error", err, "user_id", userID)
		return nil, status.Error(codes.Unavailable, "recommendation service unavailable")
	case err != nil:
		s.logger.Error("grpc: internal error", "error", err, "user_id", userID)
		return nil, status.Error(codes.Internal, "internal server error")
	}

	out, err := toStruct(rec)
	if err != nil {
		s.logger.Error("grpc: encode response", "error", err)
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}

// toStruct converts the result through its JSON form so the field names
// match the HTTP API exactly.
func toStruct(rec store.Recommendation) (*structpb.Struct, error) {
	raw, err := json.Marshal(rec.Result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	if rec.ID != uuid.Nil {
		fields["recommendation_id"] = rec.ID.String()
	}
	return structpb.NewStruct(fields)
}

// loggingInterceptor logs each unary call with method, code, and duration.
func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
