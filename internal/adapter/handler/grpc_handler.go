package handler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServiceName is the per-service name reported alongside the overall
// ("") status.
const HealthServiceName = "commerce_admin.Admin"

type Pinger interface {
	Ping(ctx context.Context) error
}

// DependencyError names the dependency whose ping failed.
type DependencyError struct {
	Name string
	Err  error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// GRPCHandler serves grpc.health.v1 and reports the admin API as serving
// only while every dependency answers a ping.
type GRPCHandler struct {
	server *health.Server
	deps   map[string]Pinger
	logger *zap.Logger
}

func NewGRPCHandler(deps map[string]Pinger, logger *zap.Logger) *GRPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &GRPCHandler{
		server: health.NewServer(),
		deps:   deps,
		logger: logger,
	}
	h.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *GRPCHandler) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, h.server)
}

// Check pings every dependency and updates the served status.
func (h *GRPCHandler) Check(ctx context.Context) error {
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
			return &DependencyError{Name: name, Err: err}
		}
	}
	h.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	return nil
}

// Watch re-runs Check every interval until ctx is done.
func (h *GRPCHandler) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			if err := h.Check(checkCtx); err != nil {
				h.logger.Warn("health check failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// Shutdown reports NOT_SERVING and ignores later updates.
func (h *GRPCHandler) Shutdown() {
	h.server.Shutdown()
}

func (h *GRPCHandler) setStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(HealthServiceName, status)
}
