package grpcx

import (
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health check name reported next to the overall "" entry.
const ServiceName = "liveroom.Coordinator"

// Server is the operational gRPC endpoint: health checking and reflection.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

func NewServer(callTimeout time.Duration) *Server {
	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor(callTimeout)),
		grpc.ChainStreamInterceptor(StreamServerInterceptor()),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{grpc: gs, health: hs}
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Drain flips every health entry to NOT_SERVING so balancers stop routing new
// websocket clients here while existing ones are closed.
func (s *Server) Drain() {
	s.health.Shutdown()
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
