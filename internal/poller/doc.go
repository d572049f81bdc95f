// Package poller runs the exporter's poll-and-publish cycle.
//
// This package is internal to the exporter. A [Loop] probes a single target,
// records the resulting measurement and sleeps for the configured interval,
// forever or until its context is cancelled.
//
// The main components are:
//
//   - [Loop]: The repeating probe → record → sleep cycle
//   - [Prober]: What the loop calls to check the target
//   - [Recorder]: Where the loop writes each measurement
//
// Sleeping goes through a [clockwork.Clock] so tests can drive many cycles
// without waiting on the wall clock.
package poller
