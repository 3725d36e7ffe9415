package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// retrier retries transient failures with linear backoff.
type retrier struct {
	maxRetries int
	retryDelay time.Duration
}

// do runs fn up to maxRetries times, sleeping retryDelay*(attempt) between
// retryable failures. The wait is abandoned when ctx is done.
func (r retrier) do(ctx context.Context, fn func() error) error {
	attempts := r.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			delay := r.retryDelay * time.Duration(i+1)
			zlog.Warn().Msgf("retrying after transient error (attempt %d/%d, delay %v): %v", i+1, attempts, delay, err)
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), lastErr.Error())
			case <-time.After(delay):
			}
		}
	}
	if attempts == 1 {
		return lastErr
	}
	return errors.Wrapf(lastErr, "max retries exceeded after %d attempts", attempts)
}

// isRetryable checks if an error is retryable: rate limiting and server errors.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}

	// Bare status numbers are not matched: request URLs carry port numbers.
	return strings.Contains(strings.ToLower(err.Error()), "rate limit")
}
