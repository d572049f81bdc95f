package mifiexporter

import (
	"time"

	"github.com/jpalmerr/mifi-exporter/internal/prober"
)

// Outcome classifies how a probe ended.
//
// Outcome is a string type for readable logging. Every outcome other than
// [OutcomeSuccess] is reported to Prometheus as the target being down.
type Outcome string

const (
	// OutcomeSuccess indicates an HTTP response was received, whatever its status code.
	OutcomeSuccess Outcome = "success"

	// OutcomeConnectError indicates DNS, connection, reset or TLS failure.
	OutcomeConnectError Outcome = "connect_error"

	// OutcomeTimeout indicates the probe did not complete within its timeout.
	OutcomeTimeout Outcome = "timeout"

	// OutcomePanic indicates the HTTP stack panicked; the panic was recovered.
	OutcomePanic Outcome = "panic"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// FailureStatusCode is the status code reported when no HTTP response was received.
const FailureStatusCode = prober.FailureStatusCode

// Measurement is the fixed set of values published after each probe.
//
// Responding is 1 if the target answered and 0 otherwise. ResponseTimeMs is
// always populated, measuring time to failure when the probe fails.
// StatusCode is [FailureStatusCode] whenever Responding is 0.
type Measurement struct {
	Responding     int
	ResponseTimeMs float64
	StatusCode     int
}

// ProbeResult holds the outcome of one poll cycle.
//
// ProbeResult is passed by value to callbacks registered with
// [WithMeasurementCallback] and is not shared with the exporter afterwards.
type ProbeResult struct {
	// Target is the probed device.
	Target Target

	// URL is the probe URL.
	URL string

	// Outcome classifies the probe.
	Outcome Outcome

	// Measurement holds the values written to the gauges.
	Measurement Measurement

	// Elapsed is the wall-clock duration of the probe.
	Elapsed time.Duration

	// CheckedAt is when the cycle completed.
	CheckedAt time.Time

	// Error is the probe failure, nil on success.
	Error error
}

// OK reports whether the target answered the probe.
func (r ProbeResult) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// outcomeFromKind converts the internal probe kind to the public type.
func outcomeFromKind(k prober.Kind) Outcome {
	switch k {
	case prober.KindSuccess:
		return OutcomeSuccess
	case prober.KindTimeout:
		return OutcomeTimeout
	case prober.KindPanic:
		return OutcomePanic
	default:
		return OutcomeConnectError
	}
}

// toProbeResult converts an internal probe result to the public API type.
func toProbeResult(t Target, r prober.Result, checkedAt time.Time) ProbeResult {
	m := r.Measurement()
	return ProbeResult{
		Target:  t,
		URL:     r.URL,
		Outcome: outcomeFromKind(r.Kind),
		Measurement: Measurement{
			Responding:     m.Responding,
			ResponseTimeMs: m.ResponseTimeMs,
			StatusCode:     m.StatusCode,
		},
		Elapsed:   r.Elapsed,
		CheckedAt: checkedAt,
		Error:     r.Err,
	}
}
