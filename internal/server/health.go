package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const healthTimeout = 3 * time.Second

func (s *Server) healthz(c *gin.Context) {
	if err := s.deps.DB.HealthCheck(c.Request.Context(), healthTimeout); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HealthServer is the gRPC health endpoint. It reports SERVING once
// MarkServing is called and NOT_SERVING after Stop.
type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
	logger *slog.Logger
}

func NewHealthServer(logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	// Reflection for grpcurl
	reflection.Register(gs)
	return &HealthServer{grpc: gs, health: hs, logger: logger}
}

// MarkServing flips the overall status to SERVING after db checks out.
func (h *HealthServer) MarkServing(ctx context.Context, db Pinger) error {
	if err := db.HealthCheck(ctx, healthTimeout); err != nil {
		return err
	}
	h.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.logger.Info("grpc.health.serving")
	return nil
}

func (h *HealthServer) Serve(ln net.Listener) error {
	h.logger.Info("grpc.listen", "addr", ln.Addr().String())
	return h.grpc.Serve(ln)
}

// Stop reports NOT_SERVING and drains open streams.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.grpc.GracefulStop()
}
