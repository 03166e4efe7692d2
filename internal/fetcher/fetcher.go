// Package fetcher performs remote queries with exponential-backoff retry on transient failures.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
)

const (
	defaultMaxRetries = 5
	defaultBaseDelay  = 1 * time.Second
	defaultTimeout    = 60 * time.Second
)

var (
	// ErrRetriesExhausted wraps the last transient error once the retry ceiling is reached
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrPermanent wraps failures that are not retried
	ErrPermanent = errors.New("permanent failure")
	// ErrMalformedPayload marks a 2xx response whose body could not be decoded
	ErrMalformedPayload = errors.New("malformed payload")
)

// StatusError is a non-2xx HTTP response
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error. status code: %d, url: %s", e.StatusCode, e.URL)
}

// Transient reports whether the status is worth retrying (rate limited or server error)
func (e *StatusError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// RequestFunc builds a fresh request for every attempt so bodies can be replayed
type RequestFunc func(ctx context.Context) (*http.Request, error)

// NotifyFunc observes every scheduled retry
type NotifyFunc func(attempt int, err error, delay time.Duration)

type options struct {
	httpClient *http.Client
	maxRetries uint64
	baseDelay  time.Duration
	logger     *zap.Logger
	notify     NotifyFunc
}

// Option configures a Fetcher
type Option func(*options)

// WithHTTPClient sets the client used for requests
func WithHTTPClient(c *http.Client) Option {
	return func(opts *options) {
		opts.httpClient = c
	}
}

// WithMaxRetries sets the number of retries after the first attempt
func WithMaxRetries(n uint64) Option {
	return func(opts *options) {
		opts.maxRetries = n
	}
}

// WithBaseDelay sets the first backoff delay; each retry doubles it
func WithBaseDelay(d time.Duration) Option {
	return func(opts *options) {
		opts.baseDelay = d
	}
}

// WithLogger sets the logger for retry messages
func WithLogger(l *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = l
	}
}

// WithNotify registers a callback invoked before each backoff sleep
func WithNotify(fn NotifyFunc) Option {
	return func(opts *options) {
		opts.notify = fn
	}
}

// Fetcher issues HTTP requests and retries transient failures.
// It holds no per-request state and is safe for concurrent use.
type Fetcher struct {
	*options
}

// New returns a Fetcher with 5 retries starting at a 1s delay unless overridden
func New(opts ...Option) *Fetcher {
	o := &options{
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Fetcher{options: o}
}

// NewBackOff returns the retry schedule: base, 2*base, 4*base, ... for maxRetries
// delays, then backoff.Stop.
func NewBackOff(base time.Duration, maxRetries uint64) backoff.BackOff {
	// WithMaxRetries treats 0 as unlimited
	if maxRetries == 0 {
		return &backoff.StopBackOff{}
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = base
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = time.Duration(math.MaxInt64)
	bo.MaxElapsedTime = 0 // bounded by retries only
	bo.Reset()
	return backoff.WithMaxRetries(bo, maxRetries)
}

// Do performs the request and returns the response body
func (f *Fetcher) Do(ctx context.Context, label string, newRequest RequestFunc) ([]byte, error) {
	var body []byte
	err := f.retry(ctx, label, func() error {
		b, err := f.once(ctx, newRequest)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	return body, err
}

// DoJSON performs the request and decodes the response body into out.
// A body that does not decode is a permanent failure.
func (f *Fetcher) DoJSON(ctx context.Context, label string, newRequest RequestFunc, out any) error {
	return f.retry(ctx, label, func() error {
		b, err := f.once(ctx, newRequest)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(b, out); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %v", ErrMalformedPayload, err))
		}
		return nil
	})
}

func (f *Fetcher) retry(ctx context.Context, label string, op func() error) error {
	attempt := 0
	permanent := false

	b := backoff.WithContext(NewBackOff(f.baseDelay, f.maxRetries), ctx)
	err := backoff.RetryNotify(func() error {
		attempt++
		err := op()
		if _, ok := err.(*backoff.PermanentError); ok {
			permanent = true
		}
		return err
	}, b, func(err error, delay time.Duration) {
		f.logger.Sugar().Warnf("%s: attempt %d failed, retrying in %s: %v", label, attempt, delay, err)
		if f.notify != nil {
			f.notify(attempt, err, delay)
		}
	})

	switch {
	case err == nil:
		return nil
	case permanent:
		return fmt.Errorf("%s: %w: %w", label, ErrPermanent, err)
	case ctx.Err() != nil:
		return fmt.Errorf("%s: %w", label, ctx.Err())
	default:
		return fmt.Errorf("%s: %w after %d attempts: %w", label, ErrRetriesExhausted, attempt, err)
	}
}

func (f *Fetcher) once(ctx context.Context, newRequest RequestFunc) ([]byte, error) {
	req, err := newRequest(ctx)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("unable to build request: %w", err))
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP error. url: %s, err: %w", req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		statusErr := &StatusError{StatusCode: resp.StatusCode, URL: req.URL.String()}
		if statusErr.Transient() {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
