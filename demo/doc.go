// Package demo is a toy web application that exercises every telemetry
// signal: traces, metrics, logs and continuous profiling.
//
// The Server exposes /helloworld and /travel, each emitting custom
// spans, counters and histograms with simulated latency and errors. The
// Querier generates steady traffic against /helloworld so the demo
// produces data without external load.
package demo
