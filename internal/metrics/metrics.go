// Package metrics exposes vmaild counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vmail/internal/logging"
)

// RPC metrics
var (
	RPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vmail_rpc_requests_total",
			Help: "Total number of RPC requests handled by vmaild",
		},
		[]string{"method", "status"},
	)

	RPCDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vmail_rpc_duration_seconds",
			Help:    "Duration of RPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// Mail metrics
var (
	AuthenticationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vmail_authentication_attempts_total",
			Help: "Total number of password checks",
		},
		[]string{"result"},
	)

	VacationReplies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vmail_vacation_replies_total",
			Help: "Total number of vacation reply decisions",
		},
		[]string{"result"},
	)
)

// ObserveRPC records one RPC call.
func ObserveRPC(method string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RPCRequests.WithLabelValues(method, status).Inc()
	RPCDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}

// Server serves /metrics on a TCP address.
type Server struct {
	listener net.Listener
	server   *http.Server
	logger   *slog.Logger
}

// Listen binds addr. Serve must be called to start answering.
func Listen(addr string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		listener: listener,
		server:   &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger:   logger,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve answers requests until ctx is done.
func (s *Server) Serve(ctx context.Context) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("metrics server shutdown", logging.Error(err))
		}
	}()
	go func() {
		if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server failed", logging.Error(err))
		}
	}()
}
