package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for caching operations.
var (
	// ErrUnavailable is returned when a remote backend cannot be reached.
	ErrUnavailable = errors.New("cache unavailable")

	// ErrCacheMiss is returned when an item is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryPolicy bounds RetryWithBackoff. Zero fields take the defaults of
// three attempts starting at one second.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetry is the policy used when none is configured.
var DefaultRetry = RetryPolicy{Attempts: 3, Delay: time.Second}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = DefaultRetry.Attempts
	}
	if p.Delay <= 0 {
		p.Delay = DefaultRetry.Delay
	}
	return p
}

// RetryWithBackoff retries fn with exponential backoff following p.
// Only errors wrapped with Retryable will trigger retries.
func RetryWithBackoff(ctx context.Context, p RetryPolicy, fn func() error) error {
	p = p.withDefaults()
	delay := p.Delay
	var lastErr error

	for i := 0; i < p.Attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < p.Attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
