package grpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Readiness publishes one readiness bit through the standard gRPC health
// service, for the overall server ("") and each named service.
type Readiness struct {
	server   *health.Server
	services []string

	mu    sync.Mutex
	ready bool
}

// NewReadiness returns a health server that reports NOT_SERVING until Set(true).
func NewReadiness(services ...string) *Readiness {
	r := &Readiness{
		server:   health.NewServer(),
		services: append([]string{""}, services...),
	}
	r.publish(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return r
}

// Register attaches the health service to a gRPC server.
func (r *Readiness) Register(server *gogrpc.Server) {
	grpc_health_v1.RegisterHealthServer(server, r.server)
}

// Set updates the published status. Repeated values are no-ops.
func (r *Readiness) Set(ready bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready == ready {
		return
	}
	r.ready = ready
	if ready {
		r.publish(grpc_health_v1.HealthCheckResponse_SERVING)
		return
	}
	r.publish(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
}

// Ready reports the last published value.
func (r *Readiness) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Shutdown marks every service NOT_SERVING permanently.
func (r *Readiness) Shutdown() {
	r.server.Shutdown()
}

func (r *Readiness) publish(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	for _, service := range r.services {
		r.server.SetServingStatus(service, status)
	}
}

// WaitForHealth blocks until the gRPC health check reports SERVING or the context ends.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return fmt.Errorf("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	healthClient := grpc_health_v1.NewHealthClient(conn)
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.Multiplier = 2
	policy.MaxInterval = time.Second

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		response, err := healthClient.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		if err != nil {
			return struct{}{}, err
		}
		if status := response.GetStatus(); status != grpc_health_v1.HealthCheckResponse_SERVING {
			return struct{}{}, fmt.Errorf("status %s", status.String())
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, _ time.Duration) {
			logf("waiting for gRPC health: %v", err)
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("wait for gRPC health: %w", ctxErr)
		}
		return fmt.Errorf("wait for gRPC health: %w", err)
	}
	logf("gRPC health check is SERVING")
	return nil
}
