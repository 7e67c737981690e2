package health

import "context"

// ExportChecker surfaces the outcome of the most recent telemetry
// export cycle, typically wired to a profiler's LastExportError. A
// failed upload degrades rather than fails the service: the process is
// alive and serving, only the telemetry backend is unreachable.
type ExportChecker struct {
	name    string
	lastErr func() error
}

// NewExportChecker creates a checker reporting on an export pipeline.
// lastErr returns the error of the most recent export cycle, or nil
// when it succeeded.
func NewExportChecker(name string, lastErr func() error) *ExportChecker {
	return &ExportChecker{name: name, lastErr: lastErr}
}

// Name returns the name of this checker.
func (c *ExportChecker) Name() string {
	return c.name
}

// Check reports the last export outcome.
func (c *ExportChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	if err := c.lastErr(); err != nil {
		result := Degraded("last export failed: " + err.Error())
		result.Error = err
		return result
	}
	return Healthy("last export succeeded")
}
