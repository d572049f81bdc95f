package mifiexporter

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

func TestNew_Valid(t *testing.T) {
	exp, err := New(WithTargetAddress("192.168.1.1"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if exp.Target().String() != "192.168.1.1" {
		t.Errorf("Target() = %q, want %q", exp.Target(), "192.168.1.1")
	}
}

func TestNew_NoTarget(t *testing.T) {
	_, err := New()
	if !errors.Is(err, ErrNoTarget) {
		t.Errorf("New() error = %v, want ErrNoTarget", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	exp, err := New(WithTargetAddress("10.0.0.1"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if exp.Interval() != 60*time.Second {
		t.Errorf("Interval() = %v, want 60s", exp.Interval())
	}
	if exp.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s (half the interval)", exp.Timeout())
	}
	if exp.Port() != 6123 {
		t.Errorf("Port() = %d, want 6123", exp.Port())
	}
	if exp.Addr() != ":6123" {
		t.Errorf("Addr() = %q, want %q", exp.Addr(), ":6123")
	}
	if exp.Registry() == nil {
		t.Error("Registry() = nil, want a fresh registry")
	}
}

func TestNew_TimeoutDefaultsToHalfInterval(t *testing.T) {
	exp, err := New(WithTargetAddress("10.0.0.1"), WithInterval(5*time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if exp.Timeout() != 2500*time.Millisecond {
		t.Errorf("Timeout() = %v, want 2.5s", exp.Timeout())
	}
}

func TestNew_TimeoutMustBeBelowInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		timeout  time.Duration
		wantErr  bool
	}{
		{"below", 10 * time.Second, 9 * time.Second, false},
		{"equal", 10 * time.Second, 10 * time.Second, true},
		{"above", 10 * time.Second, 20 * time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// option order must not matter
			_, err := New(
				WithTimeout(tt.timeout),
				WithTargetAddress("10.0.0.1"),
				WithInterval(tt.interval),
			)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_TimeoutMustBePositive(t *testing.T) {
	// half of 1ns truncates to zero, which would leave the probe unbounded
	exp, err := New(WithTargetAddress("127.0.0.1"), WithInterval(time.Nanosecond))
	if err == nil {
		t.Fatalf("New() expected error, got nil (timeout = %v)", exp.Timeout())
	}
	if !strings.Contains(err.Error(), "timeout must be positive") {
		t.Errorf("New() error = %v, want it to mention a positive timeout", err)
	}

	// an explicit timeout keeps tiny intervals valid
	if _, err := New(WithTargetAddress("127.0.0.1"), WithInterval(2*time.Nanosecond), WithTimeout(time.Nanosecond)); err != nil {
		t.Errorf("New() with explicit timeout error = %v", err)
	}
}

func TestWithTarget(t *testing.T) {
	target := MustParseTarget("::1")
	exp, err := New(WithTarget(target))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if exp.Target() != target {
		t.Errorf("Target() = %v, want %v", exp.Target(), target)
	}
}

func TestWithTarget_Zero(t *testing.T) {
	_, err := New(WithTarget(Target{}))
	if !errors.Is(err, ErrNoTarget) {
		t.Errorf("New() error = %v, want ErrNoTarget", err)
	}
}

func TestWithTargetAddress_Invalid(t *testing.T) {
	_, err := New(WithTargetAddress("mifi.local"))
	if !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("New() error = %v, want ErrInvalidTarget", err)
	}
}

func TestWithInterval_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
	}{
		{"zero", 0},
		{"negative", -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithTargetAddress("10.0.0.1"), WithInterval(tt.interval))
			if err == nil {
				t.Error("New() expected error, got nil")
			}
		})
	}
}

func TestWithTimeout_Invalid(t *testing.T) {
	_, err := New(WithTargetAddress("10.0.0.1"), WithTimeout(0))
	if err == nil {
		t.Error("New() expected error for zero timeout, got nil")
	}
}

func TestWithPort(t *testing.T) {
	exp, err := New(WithTargetAddress("10.0.0.1"), WithPort(9100))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if exp.Port() != 9100 {
		t.Errorf("Port() = %d, want 9100", exp.Port())
	}
}

func TestWithPort_Invalid(t *testing.T) {
	for _, port := range []int{0, -1, 65536, 100000} {
		_, err := New(WithTargetAddress("10.0.0.1"), WithPort(port))
		if err == nil {
			t.Errorf("New() with port %d expected error, got nil", port)
		}
	}
}

func TestWithPort_ValidEdgeCases(t *testing.T) {
	for _, port := range []int{1, 65535} {
		if _, err := New(WithTargetAddress("10.0.0.1"), WithPort(port)); err != nil {
			t.Errorf("New() with port %d error = %v", port, err)
		}
	}
}

func TestWithListenAddress(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"127.0.0.1", "127.0.0.1:6123"},
		{"::1", "[::1]:6123"},
		{"", ":6123"},
	}
	for _, tt := range tests {
		exp, err := New(WithTargetAddress("10.0.0.1"), WithListenAddress(tt.host))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if exp.Addr() != tt.want {
			t.Errorf("Addr() with host %q = %q, want %q", tt.host, exp.Addr(), tt.want)
		}
	}
}

func TestWithMaxConnections_Invalid(t *testing.T) {
	if _, err := New(WithTargetAddress("10.0.0.1"), WithMaxConnections(0)); err == nil {
		t.Error("New() expected error for zero max connections, got nil")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	exp, err := New(WithTargetAddress("10.0.0.1"), WithLogger(logger))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	exp.logger.Info("test message")
	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("logger output = %q, want it to contain %q", buf.String(), "test message")
	}
}

func TestWithLogger_Nil(t *testing.T) {
	if _, err := New(WithTargetAddress("10.0.0.1"), WithLogger(nil)); err == nil {
		t.Error("New() expected error for nil logger, got nil")
	}
}

func TestWithLogger_DefaultsToSlogDefault(t *testing.T) {
	exp, err := New(WithTargetAddress("10.0.0.1"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if exp.logger != slog.Default() {
		t.Error("logger should default to slog.Default()")
	}
}

func TestWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	exp, err := New(WithTargetAddress("10.0.0.1"), WithRegistry(reg))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if exp.Registry() != reg {
		t.Error("Registry() did not return the supplied registry")
	}
}

func TestNilOptions_Rejected(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"registry", WithRegistry(nil)},
		{"transport", WithTransport(nil)},
		{"clock", WithClock(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(WithTargetAddress("10.0.0.1"), tt.opt); err == nil {
				t.Errorf("New() with nil %s expected error, got nil", tt.name)
			}
		})
	}
}

func TestWithTransportAndClock_Accepted(t *testing.T) {
	_, err := New(
		WithTargetAddress("10.0.0.1"),
		WithTransport(http.DefaultTransport),
		WithClock(clockwork.NewFakeClock()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
}

func TestWithMeasurementCallback_NilIgnored(t *testing.T) {
	exp, err := New(WithTargetAddress("10.0.0.1"), WithMeasurementCallback(nil))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(exp.callbacks) != 0 {
		t.Errorf("len(callbacks) = %d, want 0", len(exp.callbacks))
	}
}
