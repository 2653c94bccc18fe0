package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	healthhandler "internship-portal/backend/internal/health/handler"
	"internship-portal/backend/internal/server/interceptors"
	"internship-portal/backend/internal/telemetry"
)

// healthCheckMethod is polled by probes and kept out of request logs and telemetry.
const healthCheckMethod = "/grpc.health.v1.Health/Check"

// Deps holds optional service dependencies for gRPC handlers.
type Deps struct {
	// Health answers grpc.health.v1. If nil, a server without dependency checks is registered.
	Health *healthhandler.Server
}

// NewGRPCServer returns a gRPC server instrumented with otelgrpc and the agent's interceptors.
// emitter receives grpc.request events and may be nil.
func NewGRPCServer(log *zap.Logger, emitter telemetry.EventEmitter) *grpc.Server {
	skip := map[string]bool{healthCheckMethod: true}
	return grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.RecoveryUnary(log),
			interceptors.LoggingUnary(log, skip),
			interceptors.TelemetryUnary(emitter, skip),
		),
	)
}

// RegisterServices registers all gRPC services with the server.
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	health := deps.Health
	if health == nil {
		health = healthhandler.NewServer(nil, nil, nil, nil)
	}
	healthpb.RegisterHealthServer(s, health)
}
