// Package retry wraps calls to unreliable external services with bounded
// exponential backoff. Transient failures are retried up to a budget;
// everything else surfaces immediately.
package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/infrastructure/logger"
)

type Executor struct {
	maxRetries uint64
	baseDelay  time.Duration
	maxDelay   time.Duration
	retryable  func(error) bool
}

// NewExecutor builds an executor retrying up to maxRetries times beyond the
// first attempt, with exponential backoff starting at baseDelay, capped at
// maxDelay, and jittered. A nil classifier defaults to domain.IsTransient.
func NewExecutor(maxRetries uint64, baseDelay, maxDelay time.Duration, retryable func(error) bool) *Executor {
	if retryable == nil {
		retryable = domain.IsTransient
	}
	return &Executor{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		retryable:  retryable,
	}
}

// Do runs fn, retrying transient errors. The returned error is the last one
// fn produced; its type is preserved so callers can still classify it.
func (e *Executor) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	b := retry.NewExponential(e.baseDelay)
	b = retry.WithCappedDuration(e.maxDelay, b)
	b = retry.WithJitterPercent(20, b)
	b = retry.WithMaxRetries(e.maxRetries, b)

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if e.retryable(err) {
			logger.Warn.Printf("%s: attempt %d failed, will retry: %v", op, attempt, err)
			return retry.RetryableError(err)
		}
		return err
	})
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, e *Executor, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := e.Do(ctx, op, func(ctx context.Context) error {
		var ferr error
		out, ferr = fn(ctx)
		return ferr
	})
	return out, err
}
