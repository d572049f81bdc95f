package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/jpalmerr/mifi-exporter/internal/prober"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubProber returns canned results and optionally advances a fake clock to
// simulate probe duration.
type stubProber struct {
	mu       sync.Mutex
	calls    int
	urls     []string
	timeouts []time.Duration
	result   prober.Result
	clock    clockwork.FakeClock
	takes    time.Duration
}

func (s *stubProber) Probe(_ context.Context, url string, timeout time.Duration) prober.Result {
	s.mu.Lock()
	s.calls++
	s.urls = append(s.urls, url)
	s.timeouts = append(s.timeouts, timeout)
	result := s.result
	s.mu.Unlock()

	if s.clock != nil && s.takes > 0 {
		s.clock.Advance(s.takes)
	}
	result.URL = url
	return result
}

func (s *stubProber) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recording is one Record call captured by stubRecorder.
type recording struct {
	label string
	m     prober.Measurement
	at    time.Time
}

type stubRecorder struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	records []recording
}

func (s *stubRecorder) Record(label string, m prober.Measurement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var at time.Time
	if s.clock != nil {
		at = s.clock.Now()
	}
	s.records = append(s.records, recording{label: label, m: m, at: at})
}

func (s *stubRecorder) Records() []recording {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recording(nil), s.records...)
}

func okResult() prober.Result {
	return prober.Result{Kind: prober.KindSuccess, StatusCode: http.StatusOK, Elapsed: 10 * time.Millisecond}
}

func TestRunOnce_RecordsExactlyOneMeasurement(t *testing.T) {
	p := &stubProber{result: okResult()}
	rec := &stubRecorder{}
	loop := NewLoop(Config{
		URL:      "http://192.168.1.1/",
		Label:    "192.168.1.1",
		Interval: time.Minute,
		Timeout:  30 * time.Second,
	}, p, rec, clockwork.NewFakeClock(), testLogger())

	result := loop.RunOnce(context.Background())
	if !result.OK() {
		t.Fatalf("RunOnce() kind = %v, want success", result.Kind)
	}

	records := rec.Records()
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].label != "192.168.1.1" {
		t.Errorf("label = %q, want %q", records[0].label, "192.168.1.1")
	}
	want := prober.Measurement{Responding: 1, ResponseTimeMs: 10, StatusCode: 200}
	if records[0].m != want {
		t.Errorf("measurement = %+v, want %+v", records[0].m, want)
	}
	if p.urls[0] != "http://192.168.1.1/" {
		t.Errorf("probed url = %q", p.urls[0])
	}
	if p.timeouts[0] != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", p.timeouts[0])
	}
}

func TestRunOnce_FailureRecordsDownMeasurement(t *testing.T) {
	p := &stubProber{result: prober.Result{
		Kind:    prober.KindTimeout,
		Elapsed: 30 * time.Second,
		Err:     context.DeadlineExceeded,
	}}
	rec := &stubRecorder{}
	loop := NewLoop(Config{URL: "http://10.0.0.1/", Label: "10.0.0.1", Interval: time.Minute, Timeout: 30 * time.Second},
		p, rec, clockwork.NewFakeClock(), testLogger())

	loop.RunOnce(context.Background())

	records := rec.Records()
	want := prober.Measurement{Responding: 0, ResponseTimeMs: 30000, StatusCode: 500}
	if len(records) != 1 || records[0].m != want {
		t.Errorf("records = %+v, want one %+v", records, want)
	}
}

func TestRun_ProbesImmediatelyThenEveryInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p := &stubProber{result: okResult()}
	rec := &stubRecorder{}
	loop := NewLoop(Config{URL: "http://10.0.0.1/", Label: "10.0.0.1", Interval: time.Minute, Timeout: 30 * time.Second},
		p, rec, clock, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	// first probe runs before any sleep
	clock.BlockUntil(1)
	if got := p.Calls(); got != 1 {
		t.Fatalf("calls after start = %d, want 1", got)
	}

	const cycles = 50
	for i := 0; i < cycles; i++ {
		clock.Advance(time.Minute)
		clock.BlockUntil(1)
	}

	if got := p.Calls(); got != cycles+1 {
		t.Errorf("calls = %d, want %d", got, cycles+1)
	}
	if got := len(rec.Records()); got != cycles+1 {
		t.Errorf("records = %d, want %d", got, cycles+1)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}

func TestRun_DoesNotProbeBeforeIntervalElapses(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p := &stubProber{result: okResult()}
	loop := NewLoop(Config{URL: "http://10.0.0.1/", Label: "10.0.0.1", Interval: 5 * time.Second, Timeout: 2500 * time.Millisecond},
		p, &stubRecorder{}, clock, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	clock.BlockUntil(1)
	clock.Advance(4 * time.Second)

	// give the loop goroutine a chance to (wrongly) run
	time.Sleep(20 * time.Millisecond)
	if got := p.Calls(); got != 1 {
		t.Errorf("calls = %d, want 1 before interval elapses", got)
	}
}

// TestRun_AtLeastThreeUpdatesInTwentySeconds drives a 5s interval where every
// probe hits its 2.5s timeout, so cycles take 7.5s of simulated time.
func TestRun_AtLeastThreeUpdatesInTwentySeconds(t *testing.T) {
	clock := clockwork.NewFakeClock()
	start := clock.Now()
	p := &stubProber{
		result: prober.Result{Kind: prober.KindTimeout, Elapsed: 2500 * time.Millisecond, Err: context.DeadlineExceeded},
		clock:  clock,
		takes:  2500 * time.Millisecond,
	}
	rec := &stubRecorder{clock: clock}
	loop := NewLoop(Config{URL: "http://10.0.0.1/", Label: "10.0.0.1", Interval: 5 * time.Second, Timeout: 2500 * time.Millisecond},
		p, rec, clock, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	for clock.Since(start) < 20*time.Second {
		clock.BlockUntil(1)
		clock.Advance(5 * time.Second)
	}
	clock.BlockUntil(1)

	var within int
	for _, r := range rec.Records() {
		if r.at.Sub(start) <= 20*time.Second {
			within++
		}
	}
	if within < 3 {
		t.Errorf("updates within 20s = %d, want >= 3", within)
	}
}

func TestRun_AlreadyCancelledContext(t *testing.T) {
	p := &stubProber{result: okResult()}
	loop := NewLoop(Config{URL: "http://10.0.0.1/", Label: "10.0.0.1", Interval: time.Minute},
		p, &stubRecorder{}, clockwork.NewFakeClock(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := loop.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if p.Calls() != 0 {
		t.Errorf("calls = %d, want 0", p.Calls())
	}
}

func TestOnCycle_ObserversRunInOrderAndSurvivePanics(t *testing.T) {
	p := &stubProber{result: okResult()}
	loop := NewLoop(Config{URL: "http://10.0.0.1/", Label: "10.0.0.1", Interval: time.Minute},
		p, &stubRecorder{}, clockwork.NewFakeClock(), testLogger())

	var order []string
	loop.OnCycle(func(prober.Result) { order = append(order, "first") })
	loop.OnCycle(func(prober.Result) { panic("observer exploded") })
	loop.OnCycle(nil)
	loop.OnCycle(func(r prober.Result) {
		order = append(order, "third")
		if r.URL != "http://10.0.0.1/" {
			t.Errorf("observer url = %q", r.URL)
		}
	})

	loop.RunOnce(context.Background())

	if len(order) != 2 || order[0] != "first" || order[1] != "third" {
		t.Errorf("order = %v, want [first third]", order)
	}
}

// TestRunOnce_WithRealProber runs a cycle end to end against a live server.
func TestRunOnce_WithRealProber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	rec := &stubRecorder{}
	client := prober.NewClient(testLogger())
	defer client.Close()

	loop := NewLoop(Config{URL: server.URL, Label: "127.0.0.1", Interval: time.Minute, Timeout: 5 * time.Second},
		client, rec, nil, testLogger())
	loop.RunOnce(context.Background())

	records := rec.Records()
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].m.Responding != 1 || records[0].m.StatusCode != http.StatusTeapot {
		t.Errorf("measurement = %+v, want responding=1 status=418", records[0].m)
	}
}
