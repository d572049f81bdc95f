package prober

import (
	"net/http"
	"time"
)

// FailureStatusCode is reported as the status code whenever a probe did not
// receive an HTTP response.
const FailureStatusCode = http.StatusInternalServerError

// Kind classifies how a probe ended.
type Kind int

const (
	// KindSuccess means an HTTP response was received, whatever its status.
	KindSuccess Kind = iota

	// KindConnectError covers DNS failures, refused or reset connections,
	// TLS failures and malformed requests.
	KindConnectError

	// KindTimeout means the probe did not finish within its timeout.
	KindTimeout

	// KindPanic means the HTTP stack panicked and the panic was recovered.
	KindPanic
)

// String returns a short lowercase name suitable for log attributes.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindConnectError:
		return "connect_error"
	case KindTimeout:
		return "timeout"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Measurement is the fixed set of numbers produced by one probe.
//
// Responding is 1 when an HTTP response was received and 0 otherwise.
// StatusCode is always [FailureStatusCode] when Responding is 0.
type Measurement struct {
	Responding     int
	ResponseTimeMs float64
	StatusCode     int
}

// Result holds the outcome of a single probe made by [Client.Probe].
type Result struct {
	// URL is the probed URL.
	URL string

	// Kind classifies the outcome.
	Kind Kind

	// StatusCode is the HTTP status code. Zero unless Kind is KindSuccess.
	StatusCode int

	// Elapsed is the wall-clock time from request start to response or failure.
	Elapsed time.Duration

	// Err is the underlying failure. nil when Kind is KindSuccess.
	Err error
}

// OK reports whether the probe received an HTTP response.
func (r Result) OK() bool {
	return r.Kind == KindSuccess
}

// Measurement converts the result into the values published as gauges.
func (r Result) Measurement() Measurement {
	m := Measurement{ResponseTimeMs: durationMs(r.Elapsed)}
	if r.OK() {
		m.Responding = 1
		m.StatusCode = r.StatusCode
		return m
	}
	m.StatusCode = FailureStatusCode
	return m
}

// durationMs converts d to fractional milliseconds, clamping negatives to zero.
func durationMs(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
