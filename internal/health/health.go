// Package health exposes grpc.health.v1 for the storefront, driven by a
// periodic probe of the NoLimits backend.
package health

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name clients query for the backend-dependent status.
const Service = "nolimits.storefront"

// Checker reports whether a dependency is usable.
type Checker func(ctx context.Context) error

type Reporter struct {
	srv *health.Server
	log *zap.Logger
}

func NewReporter(log *zap.Logger) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{srv: health.NewServer(), log: log}
}

// Register attaches the health service to s.
func (r *Reporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, r.srv)
}

// Set updates both the overall status and the storefront service.
func (r *Reporter) Set(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	r.srv.SetServingStatus("", st)
	r.srv.SetServingStatus(Service, st)
}

// Shutdown marks everything NOT_SERVING and ignores later updates.
func (r *Reporter) Shutdown() { r.srv.Shutdown() }

// Status returns the current status of the storefront service.
func (r *Reporter) Status(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	res, err := r.srv.Check(ctx, &healthpb.HealthCheckRequest{Service: Service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN
	}
	return res.GetStatus()
}

// Watch probes check every interval until ctx is done. The first probe runs
// immediately.
func (r *Reporter) Watch(ctx context.Context, interval time.Duration, check Checker) {
	probe := func() {
		pctx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		err := check(pctx)
		if err != nil {
			r.log.Warn("backend probe failed", zap.Error(err))
		}
		r.Set(err == nil)
	}

	probe()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			probe()
		}
	}
}
