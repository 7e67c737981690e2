package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mstoykov/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/pyrolink/secret"
)

// Config is the full configuration surface of the service.
type Config struct {
	// ServiceName identifies the application in every telemetry signal.
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`

	// Token is the bearer credential for telemetry ingestion. Empty is
	// allowed; uploads are still attempted and rejected server-side.
	Token string `yaml:"token" envconfig:"TOKEN"`

	// OTLPEndpoint receives traces, metrics and logs.
	OTLPEndpoint string `yaml:"otlp_endpoint" envconfig:"OTLP_ENDPOINT"`

	// OTLPProtocol selects the OTLP transport: "grpc" or "http".
	OTLPProtocol string `yaml:"otlp_protocol" envconfig:"OTLP_EXPORTER_TYPE"`

	EnableLogs    bool `yaml:"enable_logs" envconfig:"ENABLE_LOGS"`
	EnableTraces  bool `yaml:"enable_traces" envconfig:"ENABLE_TRACES"`
	EnableMetrics bool `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`

	// EnableProfiling controls the continuous profiler as a whole.
	EnableProfiling bool `yaml:"enable_profiling" envconfig:"ENABLE_PROFILING"`

	// EnableMemoryProfiling keeps allocation sampling on. When false the
	// runtime's memory profiler is disabled before profiling starts.
	EnableMemoryProfiling bool `yaml:"enable_memory_profiling" envconfig:"ENABLE_MEMORY_PROFILING"`

	// ProfilingEndpoint is the profile ingest URL.
	ProfilingEndpoint string `yaml:"profiling_endpoint" envconfig:"PROFILING_ENDPOINT"`

	// ProfilingPeriod is the length of one profile collection cycle.
	ProfilingPeriod time.Duration `yaml:"profiling_period" envconfig:"PROFILING_PERIOD"`

	// MaxRetryElapsed bounds the retry budget of one profile upload.
	MaxRetryElapsed time.Duration `yaml:"max_retry_elapsed" envconfig:"MAX_RETRY_ELAPSED"`

	// HTTPAddress is the listen address of the demo HTTP server.
	HTTPAddress string `yaml:"http_address" envconfig:"HTTP_ADDRESS"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		ServiceName:           "helloworld",
		OTLPEndpoint:          "http://localhost:4317",
		OTLPProtocol:          "grpc",
		EnableLogs:            true,
		EnableTraces:          true,
		EnableMetrics:         true,
		EnableProfiling:       true,
		EnableMemoryProfiling: true,
		ProfilingEndpoint:     "http://localhost:4040",
		ProfilingPeriod:       60 * time.Second,
		MaxRetryElapsed:       3 * time.Second,
		HTTPAddress:           "0.0.0.0:8080",
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and environment variables, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		expanded, err := secret.ExpandEnvStrict(string(raw))
		if err != nil {
			return Config{}, fmt.Errorf("config: expand %s: %w", path, err)
		}
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	switch c.OTLPProtocol {
	case "grpc", "http":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidProtocol, c.OTLPProtocol)
	}
	if c.HTTPAddress == "" {
		return ErrMissingHTTPAddress
	}
	if c.ProfilingPeriod <= 0 {
		return fmt.Errorf("%w: profiling_period %s", ErrNonPositiveDuration, c.ProfilingPeriod)
	}
	if c.MaxRetryElapsed <= 0 {
		return fmt.Errorf("%w: max_retry_elapsed %s", ErrNonPositiveDuration, c.MaxRetryElapsed)
	}
	return nil
}
