package prober

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

const maxDrainSize = 1 << 20 // 1MB

// a single target is polled, so the pool only ever needs one idle connection
const (
	defaultMaxIdleConns    = 1
	defaultIdleConnTimeout = 90 * time.Second
)

// Client issues probe requests against the target.
//
// Client applies the timeout per probe via context rather than as a global
// client timeout, so the caller decides the bound for each cycle. It holds no
// per-probe state and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a probing [Client] with its own connection pool.
func NewClient(logger *slog.Logger) *Client {
	return NewClientWithTransport(&http.Transport{
		Proxy:               nil, // the device sits on the local network; ignore HTTP_PROXY
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConns,
		IdleConnTimeout:     defaultIdleConnTimeout,
	}, logger)
}

// NewClientWithTransport creates a [Client] that sends requests through rt.
func NewClientWithTransport(rt http.RoundTripper, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{
			// no client-wide timeout - Probe bounds each request via context
			Transport: rt,
			// a redirect is still an HTTP response from the device
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}
}

// Probe performs one GET against url and classifies the outcome.
//
// The request is bounded by timeout (ignored when zero or negative) and by
// ctx. Any HTTP response counts as success regardless of its status code.
// Probe never panics and never returns an error: failures are logged at
// error level and reported through the returned [Result].
func (c *Client) Probe(ctx context.Context, url string, timeout time.Duration) (result Result) {
	start := time.Now()
	result.URL = url

	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			c.logger.Error("probe panic",
				"correlation_id", correlationID,
				"url", url,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			result = Result{
				URL:     url,
				Kind:    KindPanic,
				Elapsed: time.Since(start),
				Err:     fmt.Errorf("probe panic (correlation_id: %s)", correlationID),
			}
		}
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Kind = KindConnectError
		result.Elapsed = time.Since(start)
		result.Err = fmt.Errorf("failed to create request: %w", err)
		c.logFailure(result)
		return result
	}

	resp, err := c.httpClient.Do(req)
	result.Elapsed = time.Since(start)
	if err != nil {
		result.Kind = classify(err)
		result.Err = err
		c.logFailure(result)
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	// drain so the connection can be reused; the body itself is not inspected
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainSize))

	result.Kind = KindSuccess
	result.StatusCode = resp.StatusCode
	return result
}

// Close closes idle connections held by the client.
// Safe to call multiple times and on a nil receiver.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	c.httpClient.CloseIdleConnections()
}

func (c *Client) logFailure(r Result) {
	if r.Kind == KindTimeout {
		c.logger.Error("probe timed out",
			"url", r.URL,
			"latency_ms", durationMs(r.Elapsed),
		)
		return
	}
	c.logger.Error("probe failed",
		"url", r.URL,
		"latency_ms", durationMs(r.Elapsed),
		"error", r.Err.Error(),
	)
}

// classify maps a transport error to a failure kind.
func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindConnectError
}
