package services

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/radar/internal/shared"
	"golang.org/x/time/rate"
)

// FetcherOpts contains tuning knobs for a [Fetcher]. Zero values fall back
// to the documented defaults.
type FetcherOpts struct {
	HTTPClient         *http.Client
	Limiter            *rate.Limiter // Proactive pacing; nil disables
	MaxRetries         int           // Bounded retry count (default 3)
	RetryAfterFallback time.Duration // Used when no Retry-After hint (default 5s)
	RetryBuffer        time.Duration // Added on top of the hint (default 1s)
	NetworkRetryDelay  time.Duration // Fixed delay for transient network failures (default 500ms)
	Logger             *log.Logger
}

// Fetcher performs authenticated HTTP calls with retry and backoff.
//
// Throttling responses (429) and transient upstream failures (502, 503) are
// retried after the provider's Retry-After hint plus a fixed buffer, up to
// MaxRetries; exhausting retries surfaces [shared.ErrRateLimited] rather
// than blocking indefinitely. Network-level failures retry on a short fixed
// delay. Non-retryable non-2xx responses are returned as-is.
type Fetcher struct {
	tokens             TokenSource
	client             *http.Client
	limiter            *rate.Limiter
	maxRetries         int
	retryAfterFallback time.Duration
	retryBuffer        time.Duration
	networkRetryDelay  time.Duration
	logger             *log.Logger
}

// NewFetcher creates a Fetcher that attaches bearer tokens from the given source.
func NewFetcher(tokens TokenSource, opts FetcherOpts) *Fetcher {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryAfterFallback <= 0 {
		opts.RetryAfterFallback = 5 * time.Second
	}
	if opts.RetryBuffer <= 0 {
		opts.RetryBuffer = time.Second
	}
	if opts.NetworkRetryDelay <= 0 {
		opts.NetworkRetryDelay = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Fetcher{
		tokens:             tokens,
		client:             opts.HTTPClient,
		limiter:            opts.Limiter,
		maxRetries:         opts.MaxRetries,
		retryAfterFallback: opts.RetryAfterFallback,
		retryBuffer:        opts.RetryBuffer,
		networkRetryDelay:  opts.NetworkRetryDelay,
		logger:             opts.Logger,
	}
}

// SetPace adjusts the proactive request rate. Priority batches pace faster
// than background batches.
func (f *Fetcher) SetPace(requestsPerSecond float64) {
	if f.limiter != nil && requestsPerSecond > 0 {
		f.limiter.SetLimit(rate.Limit(requestsPerSecond))
	}
}

// Do performs req with authentication, pacing, and bounded retries.
//
// The returned response's body is open; the caller owns closing it. Requests
// must carry no body (the fetcher only serves the provider's GET surface).
func (f *Fetcher) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		token, err := f.tokens.Token()
		if err != nil {
			// Auth failures are fatal; retrying cannot help.
			return nil, err
		}

		r := req.Clone(ctx)
		r.Header.Set("Authorization", "Bearer "+token.AccessToken)

		resp, err := f.client.Do(r)
		if err != nil {
			lastErr = err
			if retryableNetworkError(err) && attempt < f.maxRetries {
				f.logger.Debugf("network error on %s, retrying: %v", req.URL.Path, err)
				if !sleep(ctx, f.networkRetryDelay) {
					return nil, ctx.Err()
				}
				continue
			}
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		if throttled(resp.StatusCode) {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)

			if attempt == f.maxRetries {
				break
			}

			wait := retryAfter(resp, f.retryAfterFallback) + f.retryBuffer
			f.logger.Warnf("throttled on %s (status %d), backing off %v", req.URL.Path, resp.StatusCode, wait)
			if !sleep(ctx, wait) {
				return nil, ctx.Err()
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("%w: %v", shared.ErrRateLimited, lastErr)
}

// throttled reports whether a status code warrants backoff and retry.
func throttled(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable
}

// retryAfter reads the Retry-After hint in seconds, falling back when the
// header is absent or unparseable.
func retryAfter(resp *http.Response, fallback time.Duration) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return fallback
	}

	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return fallback
	}

	return time.Duration(seconds) * time.Second
}

// retryableNetworkError checks if a network error is transient.
func retryableNetworkError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	if urlErr, ok := err.(*url.Error); ok {
		if _, ok := urlErr.Err.(net.Error); ok {
			return true
		}
	}

	return false
}

// sleep waits for the specified duration or until context is cancelled.
// Returns true if sleep completed, false if context was cancelled.
func sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(duration):
		return true
	}
}
