// Package metrics exposes Prometheus counters and histograms for dispatched
// overlay operations, trimmed from the teacher's Collector
// (internal/metrics/collector.go) down to the one thing this domain has
// operations on: no cache, no connection pool, no remote backend to report
// on.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures the metrics HTTP endpoint.
type Config struct {
	Enabled   bool   `yaml:"enabled"`
	Port      int    `yaml:"port"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// Collector records counts and durations for every dispatched overlay
// operation (spec.md §4.2's operation table).
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	operationTotal    *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	server *http.Server
}

// NewCollector creates a Collector. A nil config uses a disabled default
// that records nothing and never opens a listener, so constructing a
// Collector is always safe even when metrics were not requested.
func NewCollector(cfg *Config) (*Collector, error) {
	if cfg == nil {
		cfg = &Config{Enabled: false}
	}
	if !cfg.Enabled {
		return &Collector{config: cfg}, nil
	}
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "versfs"
	}

	registry := prometheus.NewRegistry()
	c := &Collector{config: cfg, registry: registry}

	c.operationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "operations_total",
			Help:      "Total number of overlay operations dispatched, by kind and outcome.",
		},
		[]string{"operation", "status"},
	)
	c.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of overlay operations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		},
		[]string{"operation"},
	)

	if err := registry.Register(c.operationTotal); err != nil {
		return nil, fmt.Errorf("register operations_total: %w", err)
	}
	if err := registry.Register(c.operationDuration); err != nil {
		return nil, fmt.Errorf("register operation_duration_seconds: %w", err)
	}

	return c, nil
}

// Start serves the metrics endpoint until ctx is cancelled or Stop is
// called.
func (c *Collector) Start(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(c.config.Path, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	c.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", c.config.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()
	return nil
}

// Stop shuts the metrics server down, if one was started.
func (c *Collector) Stop(ctx context.Context) error {
	if c.server == nil {
		return nil
	}
	return c.server.Shutdown(ctx)
}

// RecordOperation records one dispatched operation's outcome and duration.
func (c *Collector) RecordOperation(operation string, duration time.Duration, success bool) {
	if !c.config.Enabled {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	c.operationTotal.With(prometheus.Labels{"operation": operation, "status": status}).Inc()
	c.operationDuration.With(prometheus.Labels{"operation": operation}).Observe(duration.Seconds())
}
