// Package config loads the service configuration from an optional YAML
// file plus environment overrides.
//
// Values resolve in three layers: built-in defaults, then the YAML file
// (with strict ${VAR} expansion, so credentials can live in the
// environment rather than on disk), then plain environment variables.
// The environment wins.
package config
