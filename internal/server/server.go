// Package server exposes the metrics and health endpoints that run alongside
// the reconcile loop. Both endpoints only read controller status; they never
// mutate it.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dc-tec/cert-sync-controller/internal/constants"
	"github.com/dc-tec/cert-sync-controller/internal/controller"
)

const shutdownTimeout = 5 * time.Second

// NewMetrics returns the metrics server, serving the controller registry at
// /metrics.
func NewMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(controller.Registry, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewHealth returns the health server, serving HealthHandler at /healthz.
func NewHealth(addr string, status *controller.Status) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/healthz", HealthHandler(status, time.Now))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// HealthHandler reports liveness from the reconcile heartbeat: healthy while
// the most recent completed tick is fresh, degraded once it goes stale or
// before the first tick completes.
func HealthHandler(status *controller.Status, now func() time.Time) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		snap := status.Snapshot()
		switch {
		case snap.LastSync.IsZero():
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("no heartbeat"))
		case now().Sub(snap.LastSync) >= constants.HealthStaleThreshold:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("stale"))
		default:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("healthy"))
		}
	})
}

// Serve runs srv until ctx is cancelled, then shuts it down gracefully:
// in-flight responses complete, new connections are refused.
func Serve(ctx context.Context, srv *http.Server, logger logr.Logger) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(err, "Endpoint server error", "addr", srv.Addr)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
