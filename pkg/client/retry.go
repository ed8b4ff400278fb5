package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// InitialBackoff is the delay after the first failed attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps both the computed backoff and any Retry-After hint.
	MaxBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64

	// Jitter is the relative randomisation applied to each delay (0.2 = ±20%).
	Jitter float64
}

// DefaultRetryConfig returns the default retry configuration:
// three attempts, 1s then 2s between them.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            0.2,
	}
}

// Backoff returns the un-jittered delay after the given failed attempt (1-based):
// InitialBackoff * BackoffMultiplier^(attempt-1), capped at MaxBackoff.
func (rc RetryConfig) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	multiplier := rc.BackoffMultiplier
	if multiplier < 1 {
		multiplier = 1
	}
	delay := time.Duration(float64(rc.InitialBackoff) * math.Pow(multiplier, float64(attempt-1)))
	if rc.MaxBackoff > 0 && delay > rc.MaxBackoff {
		delay = rc.MaxBackoff
	}
	return delay
}

func (rc RetryConfig) withJitter(delay time.Duration) time.Duration {
	if rc.Jitter <= 0 {
		return delay
	}
	return time.Duration(float64(delay) * (1 - rc.Jitter + rand.Float64()*2*rc.Jitter))
}

// retryableError marks a single failed attempt that may be repeated.
type retryableError struct {
	class      ErrorClass
	retryAfter time.Duration
	err        error
}

func (e *retryableError) Error() string { return e.err.Error() }

func (e *retryableError) Unwrap() error { return e.err }

// retryWithBackoff calls fn until it succeeds, returns a non-retryable error,
// or MaxAttempts is reached. fn signals a transient failure by returning a
// *retryableError. Exhaustion yields a *NetworkError.
func retryWithBackoff(ctx context.Context, config RetryConfig, endpoint string, logger zerolog.Logger, fn func(attempt int) error) error {
	maxAttempts := config.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var last *retryableError
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Str("endpoint", endpoint).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return err
		}
		if !shouldRetry(retryable.class) {
			return retryable.err
		}
		last = retryable

		if attempt >= maxAttempts {
			break
		}

		hhRetriesTotal.WithLabelValues(string(last.class)).Inc()

		delay := config.withJitter(config.Backoff(attempt))
		if last.retryAfter > delay {
			delay = last.retryAfter
			if config.MaxBackoff > 0 && delay > config.MaxBackoff {
				delay = config.MaxBackoff
			}
		}
		hhRetryBackoffSeconds.WithLabelValues(string(last.class)).Observe(delay.Seconds())

		logger.Warn().
			Err(last.err).
			Str("endpoint", endpoint).
			Str("error_class", string(last.class)).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Msg("Request failed, retrying after backoff")

		if err := sleepWithContext(ctx, delay); err != nil {
			logger.Warn().
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Msg("Context cancelled during retry backoff")
			return fmt.Errorf("%w: %w", ErrContextCancelled, err)
		}
	}

	hhRetryExhaustedTotal.WithLabelValues(string(last.class)).Inc()
	logger.Warn().
		Str("endpoint", endpoint).
		Str("error_class", string(last.class)).
		Int("max_attempts", maxAttempts).
		Msg("Retry attempts exhausted")

	return &NetworkError{
		Endpoint:   endpoint,
		Attempts:   maxAttempts,
		ErrorClass: last.class,
		Err:        last.err,
	}
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
