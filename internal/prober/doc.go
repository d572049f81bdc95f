// Package prober performs single bounded-timeout HTTP checks against the
// exporter's target.
//
// This package is internal to the exporter. A probe never fails from the
// caller's point of view: every transport error, timeout or panic is
// converted into a [Result] whose [Result.Measurement] reports the target
// as down.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper that issues one GET per probe
//   - [Result]: Outcome of a probe (success, connection error, timeout, panic)
//   - [Measurement]: The fixed-shape numbers published as gauges
package prober
