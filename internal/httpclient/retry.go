package httpclient

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// BackoffFunc computes the delay before the next attempt. The argument is the
// number of attempts already made (1 after the first failure).
type BackoffFunc func(attempt int) time.Duration

// LinearBackoff returns a backoff where the delay grows by one unit per
// attempt: unit, 2*unit, 3*unit, ...
func LinearBackoff(unit time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		return time.Duration(attempt) * unit
	}
}

// permanentError marks a failure the retry loop must not spend budget on.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Execute fails immediately instead of retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryableStatus reports whether an HTTP status is worth another attempt.
// Client errors other than throttling and request timeouts will not change
// on retry.
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusRequestTimeout ||
		code >= 500
}

// RetryPolicy is a reusable retry abstraction: a maximum attempt budget and a
// backoff function, independent of any particular call being retried.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     BackoffFunc
	Logger      zerolog.Logger
}

// NewRetryPolicy creates a retry policy with the given attempt budget and
// linear backoff unit.
func NewRetryPolicy(maxAttempts int, backoffUnit time.Duration, logger zerolog.Logger) RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff:     LinearBackoff(backoffUnit),
		Logger:      logger.With().Str("component", "RetryPolicy").Logger(),
	}
}

// Execute runs op until it succeeds, the attempt budget is exhausted, or the
// context is cancelled. Errors from op are treated as transient unless
// wrapped with Permanent.
func (p RetryPolicy) Execute(ctx context.Context, label string, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		// A timed-out request wraps context.DeadlineExceeded from the
		// client's own timer; only the parent context decides cancellation.
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			p.Logger.Debug().Str("operation", label).Err(perm.err).Msg("Permanent failure, not retrying")
			return perm.err
		}

		if attempt == p.MaxAttempts {
			break
		}

		delay := p.Backoff(attempt)
		p.Logger.Warn().
			Str("operation", label).
			Int("attempt", attempt).
			Int("max_attempts", p.MaxAttempts).
			Dur("delay", delay).
			Err(lastErr).
			Msg("Attempt failed, waiting before retry")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}
