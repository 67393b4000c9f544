package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/resume-builder/internal/observability"
)

const (
	// DefaultMaxAttempts is the number of HTTP attempts per call.
	DefaultMaxAttempts = 3
	// DefaultBaseBackoff is the delay before the first retry, before jitter.
	DefaultBaseBackoff = 300 * time.Millisecond
	// MaxJitter bounds the random delay added to every backoff.
	MaxJitter = 100 * time.Millisecond
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportError is returned when the retry loop ends without a response
// or a transport error to report.
type TransportError struct {
	Message string
	Status  int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error (status %d): %s", e.Status, e.Message)
}

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
}

// DefaultRetryConfig returns the default attempt budget and base backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: DefaultMaxAttempts,
		BaseBackoff: DefaultBaseBackoff,
	}
}

// Retrier posts a body to a URL, retrying 429 and 5xx responses with
// exponential backoff and jitter.
type Retrier struct {
	client Doer
	config RetryConfig
	logger *slog.Logger
	jitter func() time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

// RetrierOption customizes a Retrier.
type RetrierOption func(*Retrier)

// WithLogger sets the logger used for retry warnings.
func WithLogger(logger *slog.Logger) RetrierOption {
	return func(r *Retrier) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithJitter replaces the random jitter source. The returned value is added
// to each computed backoff.
func WithJitter(jitter func() time.Duration) RetrierOption {
	return func(r *Retrier) {
		if jitter != nil {
			r.jitter = jitter
		}
	}
}

// WithSleep replaces the function used to wait between attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) RetrierOption {
	return func(r *Retrier) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// NewRetrier creates a Retrier. Non-positive config values fall back to the defaults.
func NewRetrier(client Doer, config RetryConfig, opts ...RetrierOption) *Retrier {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.BaseBackoff <= 0 {
		config.BaseBackoff = DefaultBaseBackoff
	}
	if client == nil {
		client = http.DefaultClient
	}

	r := &Retrier{
		client: client,
		config: config,
		logger: slog.Default(),
		jitter: randomJitter,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the effective retry configuration.
func (r *Retrier) Config() RetryConfig {
	return r.config
}

// IsTransient reports whether a status is worth retrying: 429 or any 5xx.
func IsTransient(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

// Backoff returns base * 2^attempt + jitter for a 0-based attempt index.
func Backoff(base time.Duration, attempt int, jitter time.Duration) time.Duration {
	return base*time.Duration(int64(1)<<uint(attempt)) + jitter
}

// Post sends body as JSON to url.
//
// A non-transient response is returned as soon as it arrives. A transient
// response on the final attempt is returned as-is for the caller to
// interpret. A transport error on the final attempt is returned; on earlier
// attempts the next attempt starts immediately without backoff.
func (r *Retrier) Post(ctx context.Context, url string, body []byte) (*http.Response, error) {
	last := r.config.MaxAttempts - 1

	for attempt := 0; attempt <= last; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			observability.UpstreamAttempts.WithLabelValues("transport_error").Inc()
			if attempt == last || ctx.Err() != nil {
				return nil, err
			}
			r.logger.Debug("API request errored, trying again", "attempt", attempt+1, "error", err)
			continue
		}

		if !IsTransient(resp.StatusCode) {
			result := "ok"
			if resp.StatusCode >= 300 {
				result = "client_error"
			}
			observability.UpstreamAttempts.WithLabelValues(result).Inc()
			return resp, nil
		}

		observability.UpstreamAttempts.WithLabelValues("transient").Inc()
		if attempt == last {
			return resp, nil
		}

		delay := Backoff(r.config.BaseBackoff, attempt, r.jitter())
		r.logger.Warn("API request failed, retrying",
			"status", resp.StatusCode,
			"attempt", attempt+1,
			"delay", delay.Round(time.Millisecond),
		)
		observability.UpstreamRetries.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		drainAndClose(resp.Body)

		if err := r.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, &TransportError{Message: "API request failed after multiple retries.", Status: http.StatusInternalServerError}
}

func randomJitter() time.Duration {
	return time.Duration(rand.Int64N(int64(MaxJitter))) // #nosec G404 -- non-cryptographic jitter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
