// Package health reports the wellness of the demo service and its
// telemetry pipelines.
//
// A Checker is any component that can report its health status. The
// Aggregator combines registered checkers into one composite view and
// backs the HTTP probe endpoints.
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewMemoryChecker(health.MemoryCheckerConfig{}))
//	agg.Register(health.NewExportChecker("profile_export", prof.LastExportError))
//	health.RegisterHandlers(mux, agg)
//
// The export checker reports Degraded rather than Unhealthy when the
// last profile upload failed: a broken telemetry backend should show up
// on /health without knocking the service out of load-balancer rotation.
package health
