package health

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/vietddude/netswitch/internal/core/domain"
)

// ServiceName is the gRPC health service name for the active endpoint.
const ServiceName = "netswitch.Endpoint"

// GRPCServer exposes endpoint liveness over the standard gRPC health protocol.
// The overall service ("") is SERVING while the process runs; ServiceName
// turns NOT_SERVING when the last assessment found the endpoint stalled.
type GRPCServer struct {
	port   int
	server *grpc.Server
	health *grpchealth.Server
}

// NewGRPCServer creates a gRPC health server. Until the first assessment the
// endpoint is reported as UNKNOWN.
func NewGRPCServer(port int) *GRPCServer {
	hs := grpchealth.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_UNKNOWN)

	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	return &GRPCServer{port: port, server: s, health: hs}
}

// SetLiveness records the verdict of an assessment.
func (g *GRPCServer) SetLiveness(l domain.Liveness) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if l == domain.LivenessAdvancing {
		status = healthpb.HealthCheckResponse_SERVING
	}
	g.health.SetServingStatus(ServiceName, status)
}

// Start listens on the configured port and serves until Stop.
func (g *GRPCServer) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", g.port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return g.Serve(lis)
}

// Serve serves on an existing listener.
func (g *GRPCServer) Serve(lis net.Listener) error {
	slog.Info("gRPC health server listening", "addr", lis.Addr().String())
	return g.server.Serve(lis)
}

// Stop marks every service NOT_SERVING and stops gracefully.
func (g *GRPCServer) Stop() {
	g.health.Shutdown()
	g.server.GracefulStop()
}
