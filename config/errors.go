package config

import "errors"

var (
	// ErrMissingServiceName indicates service_name resolved to empty.
	ErrMissingServiceName = errors.New("config: service name is required")

	// ErrInvalidProtocol indicates an unsupported OTLP protocol.
	ErrInvalidProtocol = errors.New("config: otlp protocol must be grpc or http")

	// ErrMissingHTTPAddress indicates http_address resolved to empty.
	ErrMissingHTTPAddress = errors.New("config: http address is required")

	// ErrNonPositiveDuration indicates a duration field that must be
	// positive was zero or negative.
	ErrNonPositiveDuration = errors.New("config: duration must be positive")
)
