package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/filisonic/easyhr/internal/shared"
)

// RetryPolicy retries transient failures with exponential backoff and jitter.
//
// MaxRetries is the number of additional attempts after the first failure.
// BaseDelay is the delay before the first retry and doubles on each subsequent one.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Do runs fn, retrying while the returned error is transient.
func (p RetryPolicy) Do(ctx context.Context, logger *log.Logger, fn func() error) error {
	err := fn()
	if err == nil || !isRetryable(err) {
		return err
	}

	lastErr := err
	for attempt := 1; attempt <= p.MaxRetries; attempt++ {
		delay := p.backoffDelay(attempt, lastErr)

		logger.Warn("retrying after transient error",
			"attempt", attempt,
			"max_retries", p.MaxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}

	return lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// A Retry-After duration on an [HTTPError] takes precedence.
func (p RetryPolicy) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable reports whether err represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, errEndpointAbsent) || errors.Is(err, shared.ErrTimeout) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}

	// network, DNS, connection reset
	return true
}
