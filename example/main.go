// Command example runs the exporter against a simulated hotspot.
//
//	go run ./example
//
// The probe always targets port 80, so the demo routes requests for the
// nominal target to a local mock device instead.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/mifi-exporter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deviceAddr, err := StartMockDevice(ctx, "127.0.0.1:0", 5*time.Second)
	if err != nil {
		slog.Error("failed to start mock device", "error", err)
		os.Exit(1)
	}

	// every dial goes to the mock device, whatever the target
	transport := &http.Transport{
		Proxy: nil,
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, deviceAddr)
		},
	}

	exp, err := mifiexporter.New(
		mifiexporter.WithTargetAddress("192.168.0.1"),
		mifiexporter.WithInterval(5*time.Second),
		mifiexporter.WithTimeout(2*time.Second),
		mifiexporter.WithListenAddress("127.0.0.1"),
		mifiexporter.WithTransport(transport),
		mifiexporter.WithMeasurementCallback(func(r mifiexporter.ProbeResult) {
			fmt.Printf("  %s  %-13s responding=%d status=%d %.1fms\n",
				r.CheckedAt.Format(time.TimeOnly),
				r.Outcome,
				r.Measurement.Responding,
				r.Measurement.StatusCode,
				r.Measurement.ResponseTimeMs,
			)
		}),
	)
	if err != nil {
		slog.Error("failed to create exporter", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  mifi-exporter demo")
	fmt.Println()
	fmt.Printf("  Metrics:   http://%s/metrics\n", exp.Addr())
	fmt.Printf("  Device:    %s (simulated at %s)\n", exp.Target(), deviceAddr)
	fmt.Println("  The device cycles up -> busy -> slow -> hang_up every 20-60s")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	if err := exp.Start(ctx); err != nil {
		slog.Error("exporter error", "error", err)
		os.Exit(1)
	}
}
