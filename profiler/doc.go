// Package profiler runs the periodic profile collection loop.
//
// A Profiler owns the schedule: each cycle it asks its Sampler for one
// serialized profile covering the collection period, then hands the buffer
// and its time range to the injected Exporter. Cycles are strictly
// sequential; an export failure is logged and dropped, and the next cycle
// is unaffected.
//
// The exporter is supplied at construction via WithExporter. There is no
// default upload path: constructing a Profiler without an exporter is an
// error, which keeps the wiring explicit and testable.
package profiler
