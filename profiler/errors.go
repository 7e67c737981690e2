package profiler

import "errors"

var (
	// ErrMissingExporter indicates no exporter was injected at construction.
	ErrMissingExporter = errors.New("profiler: exporter is required")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("profiler: already started")

	// ErrNotStarted indicates Stop was called before Start.
	ErrNotStarted = errors.New("profiler: not started")
)
