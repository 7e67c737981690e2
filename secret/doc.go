// Package secret provides strict environment expansion for
// configuration values.
//
// Credentials like the ingest auth token are referenced from config
// files as ${VAR} and resolved at load time; a referenced variable that
// is missing from the environment is an error rather than a silent
// empty string.
package secret
