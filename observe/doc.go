// Package observe wires the OpenTelemetry trace, metric, and log
// providers for the demo service.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers obtain a tracer, meter, and structured
// logger from an Observer and wire them into handlers or background
// services.
package observe
