// Package metrics holds the Prometheus gauges the exporter publishes.
//
// This package is internal to the exporter. The three gauges are registered
// once on a caller-supplied registry and then overwritten in place on every
// poll cycle; no history is kept in-process.
//
// The main components are:
//
//   - [Gauges]: The registered gauge vectors, labelled by target address
//   - [Gauges.Record]: Overwrites all three values for a target
package metrics
