package handler

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"internship-portal/backend/internal/logger"
)

// ServiceName is the service name answered besides the overall "" service.
const ServiceName = "portal.agent"

// Pinger checks database connectivity. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks the access policy engine. *engine.OPADecider satisfies it.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server implements grpc.health.v1.Health. It reports NOT_SERVING until ready is
// closed, then SERVING while every configured dependency passes its check.
type Server struct {
	healthpb.UnimplementedHealthServer
	ready  <-chan struct{}
	pinger Pinger
	policy PolicyChecker
	log    *zap.Logger
}

// NewServer returns a health server. ready, pinger and policy may each be nil.
func NewServer(ready <-chan struct{}, pinger Pinger, policy PolicyChecker, log *zap.Logger) *Server {
	return &Server{ready: ready, pinger: pinger, policy: policy, log: logger.OrGlobal(log)}
}

func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}
	return &healthpb.HealthCheckResponse{Status: s.status(ctx)}, nil
}

func (s *Server) status(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	if s.ready != nil {
		select {
		case <-s.ready:
		default:
			return healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	if s.pinger != nil {
		if err := s.pinger.PingContext(ctx); err != nil {
			s.log.Warn("health: database ping failed", zap.Error(err))
			return healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	if s.policy != nil {
		if err := s.policy.HealthCheck(ctx); err != nil {
			s.log.Warn("health: policy engine check failed", zap.Error(err))
			return healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	return healthpb.HealthCheckResponse_SERVING
}
