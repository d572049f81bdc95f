package mifiexporter

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

// exporterConfig holds mutable state during Exporter construction.
type exporterConfig struct {
	target         Target
	interval       time.Duration
	timeout        time.Duration
	port           int
	listenAddress  string
	maxConnections int
	logger         *slog.Logger
	registry       *prometheus.Registry
	transport      http.RoundTripper
	clock          clockwork.Clock
	callbacks      []func(ProbeResult)
}

// Option is a function that configures an [Exporter] during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*exporterConfig) error

// WithTarget sets the device to probe. Required.
//
// Returns an error if t is the zero Target.
func WithTarget(t Target) Option {
	return func(cfg *exporterConfig) error {
		if t.IsZero() {
			return ErrNoTarget
		}
		cfg.target = t
		return nil
	}
}

// WithTargetAddress parses addr with [ParseTarget] and sets it as the target.
//
// Example:
//
//	exp, err := mifiexporter.New(mifiexporter.WithTargetAddress("192.168.0.1"))
func WithTargetAddress(addr string) Option {
	return func(cfg *exporterConfig) error {
		t, err := ParseTarget(addr)
		if err != nil {
			return err
		}
		cfg.target = t
		return nil
	}
}

// WithInterval sets the sleep between poll cycles. Defaults to 60 seconds.
//
// Returns an error if the duration is zero or negative.
func WithInterval(d time.Duration) Option {
	return func(cfg *exporterConfig) error {
		if d <= 0 {
			return errors.New("interval must be positive")
		}
		cfg.interval = d
		return nil
	}
}

// WithTimeout sets the per-probe timeout.
//
// Defaults to half the interval so a stuck probe cannot run into the next
// cycle. [New] rejects a timeout that is not below the interval.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) Option {
	return func(cfg *exporterConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithPort sets the TCP port the metrics endpoint listens on. Defaults to 6123.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *exporterConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithListenAddress sets the host the metrics endpoint binds to, e.g.
// "127.0.0.1" or "::1". The default, "", listens on all interfaces.
func WithListenAddress(host string) Option {
	return func(cfg *exporterConfig) error {
		cfg.listenAddress = host
		return nil
	}
}

// WithMaxConnections caps concurrent connections to the metrics endpoint.
// Defaults to 16.
//
// Returns an error if n is zero or negative.
func WithMaxConnections(n int) Option {
	return func(cfg *exporterConfig) error {
		if n <= 0 {
			return errors.New("max connections must be positive")
		}
		cfg.maxConnections = n
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *exporterConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithRegistry sets the Prometheus registry the gauges are registered on and
// the metrics endpoint serves. If not specified, a fresh registry is created;
// the global default registry is never used implicitly.
//
// Returns an error if the registry is nil.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(cfg *exporterConfig) error {
		if reg == nil {
			return errors.New("registry cannot be nil")
		}
		cfg.registry = reg
		return nil
	}
}

// WithTransport sets the [http.RoundTripper] used for probes, for example to
// route through a proxy or to point at a test server.
//
// Returns an error if the transport is nil.
func WithTransport(rt http.RoundTripper) Option {
	return func(cfg *exporterConfig) error {
		if rt == nil {
			return errors.New("transport cannot be nil")
		}
		cfg.transport = rt
		return nil
	}
}

// WithClock sets the clock the poll loop sleeps on. Intended for tests.
//
// Returns an error if the clock is nil.
func WithClock(clock clockwork.Clock) Option {
	return func(cfg *exporterConfig) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.clock = clock
		return nil
	}
}

// WithMeasurementCallback registers a function called after every poll cycle,
// once the gauges have been updated.
//
// Callbacks run synchronously on the poll goroutine in registration order,
// so they must not block. Panics are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithMeasurementCallback(cb func(ProbeResult)) Option {
	return func(cfg *exporterConfig) error {
		if cb == nil {
			return nil
		}
		cfg.callbacks = append(cfg.callbacks, cb)
		return nil
	}
}
