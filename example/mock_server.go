package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// deviceMode is how the simulated hotspot currently answers.
type deviceMode int

const (
	modeUp deviceMode = iota
	modeBusy
	modeSlow
	modeHangUp
)

func (m deviceMode) String() string {
	switch m {
	case modeUp:
		return "up"
	case modeBusy:
		return "busy"
	case modeSlow:
		return "slow"
	case modeHangUp:
		return "hang_up"
	default:
		return "unknown"
	}
}

// mockDevice cycles through modes, changing every 20-60 seconds.
type mockDevice struct {
	mu           sync.Mutex
	mode         deviceMode
	nextChangeAt time.Time
	slowFor      time.Duration
}

func (d *mockDevice) current() deviceMode {
	d.mu.Lock()
	defer d.mu.Unlock()

	if time.Now().After(d.nextChangeAt) {
		old := d.mode
		d.mode = (d.mode + 1) % 4
		d.nextChangeAt = time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
		slog.Info("device mode change", "from", old.String(), "to", d.mode.String())
	}
	return d.mode
}

// StartMockDevice serves a fake hotspot admin page on addr until ctx is done.
//
// slowFor should exceed the exporter's timeout so the slow mode shows up as
// a timeout. The bound listener address is returned.
func StartMockDevice(ctx context.Context, addr string, slowFor time.Duration) (string, error) {
	device := &mockDevice{
		nextChangeAt: time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second),
		slowFor:      slowFor,
	}

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		// simulate small latency variance
		time.Sleep(time.Duration(20+rand.Intn(80)) * time.Millisecond)

		switch device.current() {
		case modeBusy:
			http.Error(w, "device busy", http.StatusServiceUnavailable)
		case modeSlow:
			select {
			case <-time.After(device.slowFor):
			case <-req.Context().Done():
				return
			}
			fmt.Fprintln(w, "<html><body>MiFi admin</body></html>")
		case modeHangUp:
			// drop the connection without a response
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					_ = conn.Close()
					return
				}
			}
			http.Error(w, "hang up unsupported", http.StatusInternalServerError)
		default:
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprintln(w, "<html><body>MiFi admin</body></html>")
		}
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("mock device error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	return ln.Addr().String(), nil
}
