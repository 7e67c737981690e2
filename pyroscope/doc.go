// Package pyroscope uploads serialized pprof profiles to a Pyroscope
// ingestion server.
//
// The pipeline for one export call is: gzip the profile, frame it into a
// multipart/form-data body together with the static sample type config,
// POST it to the ingest endpoint, and retry transient failures under an
// elapsed-time budget. Terminal failures (bad credential, bad path) are
// never retried and carry a human-readable reason.
package pyroscope
