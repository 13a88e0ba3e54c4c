package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrRateLimit marks a quota rejection from the spreadsheet service.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries is returned once every attempt has failed.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryOptions configures the backoff used for remote workbook calls.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = 100 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 30 * time.Second
	}
	if o.Multiplier <= 0 {
		o.Multiplier = 2
	}
	return o
}

// RetryableError tags an error with whether the call may be repeated.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Transient marks err as worth retrying.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, Retryable: true}
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, Retryable: false}
}

type backoff struct {
	opts  RetryOptions
	delay time.Duration
}

// next returns how long to sleep after a failure. Quota errors wait the
// longest delay straight away; the spreadsheet quota is per minute.
func (b *backoff) next(err error) time.Duration {
	if errors.Is(err, ErrRateLimit) {
		return b.opts.MaxDelay
	}
	d := b.delay
	b.delay = min(time.Duration(float64(b.delay)*b.opts.Multiplier), b.opts.MaxDelay)
	return d
}

// WithRetry runs operation until it succeeds, returns a permanent error, or
// runs out of attempts. Untagged errors are retried.
func WithRetry(ctx context.Context, operation func() error, opts RetryOptions) error {
	opts = opts.withDefaults()
	b := &backoff{opts: opts, delay: opts.InitialDelay}

	var last error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		last = operation()
		if last == nil {
			return nil
		}

		var tagged *RetryableError
		if errors.As(last, &tagged) && !tagged.Retryable {
			return tagged.Err
		}
		if attempt == opts.MaxAttempts {
			break
		}

		wait := b.next(last)
		slog.Warn("Workbook call failed, retrying",
			"attempt", attempt,
			"of", opts.MaxAttempts,
			"wait", wait,
			"error", last)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, opts.MaxAttempts, last)
}
