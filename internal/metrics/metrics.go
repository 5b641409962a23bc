// Package metrics exposes per-run counters for the extraction pipelines.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

var (
	// Registry holds every hpdata collector.
	Registry = prometheus.NewRegistry()

	ItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hpdata",
			Name:      "items_total",
			Help:      "Products processed, by pipeline and outcome",
		},
		[]string{"pipeline", "outcome"},
	)

	ItemDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hpdata",
			Name:      "item_duration_seconds",
			Help:      "Time spent fetching and parsing one product",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"pipeline"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hpdata",
			Name:      "requests_total",
			Help:      "HTTP requests sent to the review site, by endpoint and status code",
		},
		[]string{"endpoint", "code"},
	)
)

func init() {
	Registry.MustRegister(
		ItemsTotal,
		ItemDuration,
		RequestsTotal,
		collectors.NewGoCollector(),
	)
}

// ObserveItem records the outcome and duration of one processed product.
func ObserveItem(pipeline, outcome string, elapsed time.Duration) {
	ItemsTotal.WithLabelValues(pipeline, outcome).Inc()
	if outcome != OutcomeSkipped {
		ItemDuration.WithLabelValues(pipeline).Observe(elapsed.Seconds())
	}
}

// Handler returns the /metrics handler for Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
// An empty addr disables the endpoint.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server stopped", "error", err)
		}
	}()

	slog.Info("Serving metrics", "addr", ln.Addr().String())
	return nil
}
