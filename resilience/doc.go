// Package resilience provides the retry driver for outbound upload calls.
//
// The driver retries an operation under a wall-clock budget rather than an
// attempt count: attempts continue, with full-jitter exponential backoff,
// until the operation succeeds, fails terminally, or the elapsed budget is
// exhausted. On exhaustion the last observed error is returned unchanged
// so the caller sees the true cause instead of a generic timeout.
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxElapsed: 3 * time.Second,
//	    RetryIf:    pyroscope.IsRetryable,
//	})
//
//	err := retry.Execute(ctx, func(ctx context.Context) error {
//	    return upload(ctx)
//	})
package resilience
