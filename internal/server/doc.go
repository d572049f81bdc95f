// Package server provides the HTTP endpoint scraped by Prometheus.
//
// This package is internal to the exporter and handles all HTTP concerns
// on the exposition side:
//
//   - Exposition: Text-format metrics at "/" and "/metrics"
//   - Liveness: "ok" at "/healthz"
//
// The listener is bound synchronously so a port conflict is reported at
// startup. Concurrent connections are capped, and the server shuts down
// with a 5-second timeout when its context is cancelled.
package server
