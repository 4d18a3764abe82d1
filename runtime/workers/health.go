package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthWorker exposes the standard gRPC health service for orchestrators and probes.
type HealthWorker struct {
	log    *slog.Logger
	addr   string
	health *health.Server
}

func NewHealthWorker(log *slog.Logger, addr string) *HealthWorker {
	return &HealthWorker{log: log, addr: addr, health: health.NewServer()}
}

// SetServing flips the overall status reported to probes.
func (w *HealthWorker) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	w.health.SetServingStatus("", status)
}

func (w *HealthWorker) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", w.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", w.addr, err)
	}
	return w.serve(ctx, listener)
}

func (w *HealthWorker) serve(ctx context.Context, listener net.Listener) error {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(w.log)))
	grpc_health_v1.RegisterHealthServer(s, w.health)
	w.SetServing(true)

	errChan := make(chan error, 1)
	go func() {
		w.log.Info("Starting gRPC health server", "address", listener.Addr().String())
		errChan <- s.Serve(listener)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}
	w.health.Shutdown()
	s.GracefulStop()
	if err := <-errChan; err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
