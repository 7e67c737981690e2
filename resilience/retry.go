package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxElapsed is the wall-clock budget for all attempts combined,
	// measured from the start of the first attempt. The first attempt
	// always runs; once the budget is exceeded no further attempts are
	// made and the last error is returned.
	// Default: 3s
	MaxElapsed time.Duration

	// Multiplier scales the full-jitter exponential backoff: the delay
	// before retry n is drawn uniformly from [0, Multiplier * 2^n). There
	// is no per-delay cap beyond the overall budget.
	// Default: 500ms
	Multiplier time.Duration

	// RetryIf determines if an error should trigger a retry.
	// Default: all non-nil errors trigger retry.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry implements budget-bounded retry with backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry handler.
func NewRetry(config RetryConfig) *Retry {
	// Apply defaults
	if config.MaxElapsed <= 0 {
		config.MaxElapsed = 3 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 500 * time.Millisecond
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}

	return &Retry{config: config}
}

// Execute runs the operation with retry logic. Sleeping between attempts
// suspends only the calling goroutine and is interrupted by context
// cancellation.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	start := time.Now()

	for attempt := 1; ; attempt++ {
		err := op(ctx)

		if err == nil {
			return nil
		}

		// Terminal errors stop immediately
		if !r.config.RetryIf(err) {
			return err
		}

		// Budget exhausted: surface the last failure, preserving its
		// retryable/terminal identity for the caller.
		if time.Since(start) >= r.config.MaxElapsed {
			return err
		}

		delay := r.jitteredDelay(attempt)

		// Callback before retry
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		// Wait for delay or context cancellation
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// Continue to next attempt
		}
	}
}

// jitteredDelay draws the backoff delay for the given attempt: uniform in
// [0, Multiplier * 2^attempt). The expected delay doubles each attempt.
func (r *Retry) jitteredDelay(attempt int) time.Duration {
	high := float64(r.config.Multiplier) * math.Pow(2, float64(attempt))
	// #nosec G404 -- jitter is non-cryptographic timing variance.
	return time.Duration(rand.Float64() * high)
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
