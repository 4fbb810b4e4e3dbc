package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/constants"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/logger"
)

// Options configures the rate-limited, retrying transport.
type Options struct {
	Base       http.RoundTripper
	Logger     *logger.Logger
	RateLimit  float64 // requests per second, shared by every request
	RetryCount int     // total attempts per request
	RetryBase  time.Duration
	Timeout    time.Duration // per attempt, backoff waits are not counted
}

// Transport is an http.RoundTripper that waits on a token bucket before each
// attempt and retries transient failures.
type Transport struct {
	base       http.RoundTripper
	limiter    *rate.Limiter
	logger     *logger.Logger
	retryCount int
	retryBase  time.Duration
	timeout    time.Duration
}

// NewTransport creates a Transport. Zero options fall back to defaults.
func NewTransport(opts Options) *Transport {
	base := opts.Base
	if base == nil {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		}
	}
	limit := opts.RateLimit
	if limit <= 0 {
		limit = constants.DefaultRateLimit
	}
	retries := opts.RetryCount
	if retries <= 0 {
		retries = constants.DefaultRetryCount
	}
	retryBase := opts.RetryBase
	if retryBase <= 0 {
		retryBase = constants.DefaultRetryBase
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	return &Transport{
		base:       base,
		limiter:    rate.NewLimiter(rate.Limit(limit), 1),
		logger:     logger.OrDefault(opts.Logger).WithComponent("httpclient"),
		retryCount: retries,
		retryBase:  retryBase,
		timeout:    timeout,
	}
}

// NewClient creates an http.Client backed by a Transport. The client has no
// overall timeout; Options.Timeout bounds each attempt inside the Transport.
func NewClient(opts Options) *http.Client {
	return &http.Client{
		Transport: NewTransport(opts),
	}
}

// RoundTrip executes a request with rate-limiting and retries.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var lastErr error
	for attempt := 0; attempt < t.retryCount; attempt++ {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, t.timeout)
		attemptReq := req.WithContext(attemptCtx)
		if attempt > 0 && req.Body != nil {
			if req.GetBody == nil {
				cancel()
				return nil, fmt.Errorf("cannot retry request with unreplayable body: %w", lastErr)
			}
			body, err := req.GetBody()
			if err != nil {
				cancel()
				return nil, fmt.Errorf("rewind request body: %w", err)
			}
			attemptReq = req.Clone(attemptCtx)
			attemptReq.Body = body
		}

		resp, err := t.base.RoundTrip(attemptReq)

		var retryAfter time.Duration
		switch {
		case err != nil:
			cancel()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		case retryable(resp.StatusCode):
			retryAfter = parseRetryAfter(resp)
			_ = resp.Body.Close()
			cancel()
			lastErr = fmt.Errorf("transient response (status %d)", resp.StatusCode)
		default:
			// the attempt deadline also covers reading the body
			resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		}

		if attempt == t.retryCount-1 {
			break
		}

		backoffWait := time.Duration(attempt+1) * t.retryBase
		if retryAfter > backoffWait {
			backoffWait = retryAfter
		}
		t.logger.Warn("retrying request",
			"url", req.URL.Redacted(),
			"attempt", attempt+1,
			"wait", backoffWait,
			"error", lastErr,
		)

		backoffTimer := time.NewTimer(backoffWait)
		select {
		case <-ctx.Done():
			backoffTimer.Stop()
			return nil, ctx.Err()
		case <-backoffTimer.C:
		}
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", t.retryCount, lastErr)
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// parseRetryAfter reads a Retry-After header and returns the duration to wait.
func parseRetryAfter(resp *http.Response) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(ra); err == nil {
		return time.Until(t)
	}
	return 0
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
