// Package mifiexporter probes a single network device over HTTP and
// publishes reachability, latency and status code as Prometheus gauges.
//
// Every interval the exporter performs one GET against http://<target>/
// with a bounded timeout, converts the outcome into a [Measurement] and
// overwrites three gauges labelled with the target's address:
//
//	http_responding{mifi_ip="192.168.0.1"}        1 if any HTTP response was received, else 0
//	http_response_time_ms{mifi_ip="192.168.0.1"}  probe wall-clock time, also on failure
//	http_status_code{mifi_ip="192.168.0.1"}       response status, 500 if the probe failed
//
// The gauges are served in the Prometheus text exposition format at the
// root path of the metrics port (6123 by default).
//
// # Quick Start
//
//	exp, _ := mifiexporter.New(
//	    mifiexporter.WithTargetAddress("192.168.0.1"),
//	    mifiexporter.WithInterval(30 * time.Second),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	exp.Start(ctx) // blocks until ctx is cancelled
//
// # Failure Handling
//
// A probe never stops the loop. Connection errors, timeouts and even panics
// in the HTTP stack become a "down" measurement (responding 0, status 500)
// and are logged at error level; the next cycle runs as scheduled. Only
// startup problems, such as the metrics port already being in use, are
// returned from [Exporter.Start].
//
// # Architecture
//
//   - internal/prober: One bounded-timeout HTTP GET, classified into a result
//   - internal/poller: The probe → record → sleep loop
//   - internal/metrics: The three gauge vectors on a Prometheus registry
//   - internal/server: The HTTP endpoint that serves the registry
//   - config: YAML configuration for the mifi-exporter binary
package mifiexporter
