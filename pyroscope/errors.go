package pyroscope

import "errors"

// Configuration errors.
var (
	// ErrMissingServiceName indicates Config.ServiceName is empty.
	ErrMissingServiceName = errors.New("pyroscope: service name is required")

	// ErrMissingEndpoint indicates Config.Endpoint is empty.
	ErrMissingEndpoint = errors.New("pyroscope: endpoint is required")
)

// TerminalError is an upload failure that must not be retried: the server
// rejected the request for a reason retrying cannot change.
type TerminalError struct {
	Reason string
}

func (e *TerminalError) Error() string {
	return "pyroscope: " + e.Reason
}

// RetryableError wraps a failure the retry driver may attempt again:
// a transport-level error or a 5xx server response.
type RetryableError struct {
	Cause error
}

func (e *RetryableError) Error() string {
	return "pyroscope: retryable upload failure: " + e.Cause.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether err may be retried.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// IsTerminal reports whether err is a terminal upload failure.
func IsTerminal(err error) bool {
	var te *TerminalError
	return errors.As(err, &te)
}
