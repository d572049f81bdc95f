package mifiexporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/jpalmerr/mifi-exporter/internal/metrics"
	"github.com/jpalmerr/mifi-exporter/internal/poller"
	"github.com/jpalmerr/mifi-exporter/internal/prober"
	"github.com/jpalmerr/mifi-exporter/internal/server"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultInterval is the sleep between poll cycles.
	DefaultInterval = 60 * time.Second

	// DefaultPort is the TCP port of the metrics endpoint.
	DefaultPort = 6123
)

// ErrNoTarget is returned by [New] when no target was configured.
var ErrNoTarget = errors.New("a target address is required")

// Exporter probes one device and publishes the results for Prometheus.
//
// Exporter is created using [New] with functional options and started with
// [Exporter.Start]. The typical lifecycle is:
//
//	exp, err := mifiexporter.New(mifiexporter.WithTargetAddress("192.168.0.1"))
//	if err != nil {
//	    slog.Error("invalid configuration", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	exp.Start(ctx) // blocks until ctx is cancelled
type Exporter struct {
	target         Target
	interval       time.Duration
	timeout        time.Duration
	port           int
	listenAddress  string
	maxConnections int
	logger         *slog.Logger
	registry       *prometheus.Registry
	client         *prober.Client
	clock          clockwork.Clock
	callbacks      []func(ProbeResult)
}

// New creates a new [Exporter] with the given options.
//
// A target must be configured via [WithTarget] or [WithTargetAddress].
// Other options have defaults:
//   - Interval: 60 seconds
//   - Timeout: half the interval
//   - Port: 6123 on all interfaces
//
// Returns an error if no target is configured, if any option is invalid, or
// if the resolved timeout is not positive and below the interval.
func New(opts ...Option) (*Exporter, error) {
	cfg := &exporterConfig{
		interval:       DefaultInterval,
		port:           DefaultPort,
		maxConnections: server.DefaultMaxConnections,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.target.IsZero() {
		return nil, ErrNoTarget
	}

	timeout := cfg.timeout
	if timeout == 0 {
		timeout = cfg.interval / 2
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s (interval %s)", timeout, cfg.interval)
	}
	if timeout >= cfg.interval {
		return nil, fmt.Errorf("timeout (%s) must be less than interval (%s)", timeout, cfg.interval)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	clock := cfg.clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	client := prober.NewClient(logger)
	if cfg.transport != nil {
		client = prober.NewClientWithTransport(cfg.transport, logger)
	}

	return &Exporter{
		target:         cfg.target,
		interval:       cfg.interval,
		timeout:        timeout,
		port:           cfg.port,
		listenAddress:  cfg.listenAddress,
		maxConnections: cfg.maxConnections,
		logger:         logger,
		registry:       registry,
		client:         client,
		clock:          clock,
		callbacks:      cfg.callbacks,
	}, nil
}

// Start registers the gauges, starts the metrics endpoint and polls the
// target until ctx is cancelled.
//
// Start is a blocking call. Startup failures (the gauges are already
// registered on the registry, or the port cannot be bound) are returned
// before the first probe. After that nothing inside a poll cycle can stop
// the loop; Start returns nil once ctx is cancelled.
//
// A failed startup leaves nothing registered, so Start may be retried.
// Otherwise it should be called at most once per Exporter.
func (e *Exporter) Start(ctx context.Context) error {
	e.logger.Info("mifi exporter starting",
		"target", e.target.String(),
		"interval", e.interval.String(),
		"timeout", e.timeout.String(),
	)

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	gauges, err := metrics.NewGauges(e.registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	srv := server.NewServer(e.registry, e.Addr(), e.logger)
	srv.SetMaxConnections(e.maxConnections)
	if err := srv.Start(ctx); err != nil {
		gauges.Unregister(e.registry)
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	e.logger.Info("serving prometheus metrics", "url", srv.URL())

	defer e.client.Close()

	loop := poller.NewLoop(poller.Config{
		URL:      e.target.URL(),
		Label:    e.target.Label(),
		Interval: e.interval,
		Timeout:  e.timeout,
	}, e.client, gauges, e.clock, e.logger)

	for _, cb := range e.callbacks {
		cb := cb
		loop.OnCycle(func(r prober.Result) {
			cb(toProbeResult(e.target, r, e.clock.Now()))
		})
	}

	// Run only returns once ctx is done
	_ = loop.Run(ctx)

	e.logger.Info("mifi exporter stopped")
	return nil
}

// Target returns the probed device.
func (e *Exporter) Target() Target {
	return e.target
}

// Interval returns the sleep between poll cycles.
func (e *Exporter) Interval() time.Duration {
	return e.interval
}

// Timeout returns the per-probe timeout.
func (e *Exporter) Timeout() time.Duration {
	return e.timeout
}

// Port returns the metrics endpoint port.
func (e *Exporter) Port() int {
	return e.port
}

// Addr returns the host:port the metrics endpoint listens on.
func (e *Exporter) Addr() string {
	return net.JoinHostPort(e.listenAddress, strconv.Itoa(e.port))
}

// Registry returns the registry the gauges are published on.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}
