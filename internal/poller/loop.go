package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/jpalmerr/mifi-exporter/internal/prober"
)

// Prober checks a URL within a timeout. Implementations must not panic and
// must report every failure through the returned result.
type Prober interface {
	Probe(ctx context.Context, url string, timeout time.Duration) prober.Result
}

// Recorder stores the latest measurement for a target label.
type Recorder interface {
	Record(label string, m prober.Measurement)
}

// Config describes what a [Loop] polls and how often.
type Config struct {
	// URL is the probe URL, e.g. "http://[::1]/".
	URL string

	// Label identifies the target in recorded metrics.
	Label string

	// Interval is the sleep between the end of one cycle and the start of the next.
	Interval time.Duration

	// Timeout bounds each probe. It should be below Interval so cycles never overlap.
	Timeout time.Duration
}

// Loop repeatedly probes one target and records the outcome.
//
// The loop has a single steady state: probe, record, sleep. It holds no
// state between cycles other than what the [Recorder] keeps. Sleep time does
// not account for probe duration, so cycles drift by the probe's length.
type Loop struct {
	cfg       Config
	prober    Prober
	recorder  Recorder
	clock     clockwork.Clock
	logger    *slog.Logger
	observers []func(prober.Result)
}

// NewLoop creates a [Loop]. A nil clock uses the real wall clock and a nil
// logger uses [slog.Default].
func NewLoop(cfg Config, p Prober, rec Recorder, clock clockwork.Clock, logger *slog.Logger) *Loop {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		cfg:      cfg,
		prober:   p,
		recorder: rec,
		clock:    clock,
		logger:   logger,
	}
}

// OnCycle registers fn to be called after every recorded cycle.
//
// Observers run synchronously on the loop goroutine in registration order.
// Panics are recovered and logged. OnCycle must not be called concurrently
// with [Loop.Run].
func (l *Loop) OnCycle(fn func(prober.Result)) {
	if fn == nil {
		return
	}
	l.observers = append(l.observers, fn)
}

// Run polls until ctx is cancelled and then returns ctx.Err().
//
// The first probe happens immediately. After each cycle the loop sleeps for
// the configured interval; cancellation interrupts the sleep but an in-flight
// probe is only bounded by its timeout and ctx.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.RunOnce(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.clock.After(l.cfg.Interval):
		}
	}
}

// RunOnce performs one probe and records its measurement, without sleeping.
func (l *Loop) RunOnce(ctx context.Context) prober.Result {
	l.logger.Info("starting check", "url", l.cfg.URL)
	start := l.clock.Now()

	result := l.prober.Probe(ctx, l.cfg.URL, l.cfg.Timeout)
	m := result.Measurement()
	l.recorder.Record(l.cfg.Label, m)

	l.logger.Debug("current metrics",
		"url", l.cfg.URL,
		"outcome", result.Kind.String(),
		"http_responding", m.Responding,
		"http_response_time_ms", m.ResponseTimeMs,
		"http_status_code", m.StatusCode,
	)
	l.logger.Info("finished collecting metrics",
		"count", metricCount,
		"duration", l.clock.Since(start).String(),
	)

	for _, fn := range l.observers {
		l.notify(fn, result)
	}

	return result
}

// metricCount is the number of values written per cycle.
const metricCount = 3

// notify calls an observer with panic recovery.
func (l *Loop) notify(fn func(prober.Result), result prober.Result) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("cycle observer panicked",
				"panic", r,
				"url", result.URL,
			)
		}
	}()
	fn(result)
}
