package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServiceName != "helloworld" {
		t.Errorf("ServiceName = %q, want helloworld", cfg.ServiceName)
	}
	if cfg.OTLPEndpoint != "http://localhost:4317" {
		t.Errorf("OTLPEndpoint = %q", cfg.OTLPEndpoint)
	}
	if cfg.OTLPProtocol != "grpc" {
		t.Errorf("OTLPProtocol = %q, want grpc", cfg.OTLPProtocol)
	}
	if !cfg.EnableLogs || !cfg.EnableTraces || !cfg.EnableMetrics || !cfg.EnableProfiling {
		t.Errorf("signal toggles = %+v, want all enabled", cfg)
	}
	if !cfg.EnableMemoryProfiling {
		t.Error("EnableMemoryProfiling = false, want true")
	}
	if cfg.ProfilingEndpoint != "http://localhost:4040" {
		t.Errorf("ProfilingEndpoint = %q", cfg.ProfilingEndpoint)
	}
	if cfg.ProfilingPeriod != 60*time.Second {
		t.Errorf("ProfilingPeriod = %v, want 60s", cfg.ProfilingPeriod)
	}
	if cfg.MaxRetryElapsed != 3*time.Second {
		t.Errorf("MaxRetryElapsed = %v, want 3s", cfg.MaxRetryElapsed)
	}
	if cfg.HTTPAddress != "0.0.0.0:8080" {
		t.Errorf("HTTPAddress = %q, want 0.0.0.0:8080", cfg.HTTPAddress)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfigFile(t, `
service_name: travelapp
otlp_protocol: http
enable_metrics: false
profiling_period: 30s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServiceName != "travelapp" {
		t.Errorf("ServiceName = %q, want travelapp", cfg.ServiceName)
	}
	if cfg.OTLPProtocol != "http" {
		t.Errorf("OTLPProtocol = %q, want http", cfg.OTLPProtocol)
	}
	if cfg.EnableMetrics {
		t.Error("EnableMetrics = true, want false from file")
	}
	if cfg.ProfilingPeriod != 30*time.Second {
		t.Errorf("ProfilingPeriod = %v, want 30s", cfg.ProfilingPeriod)
	}
	// Untouched keys keep their defaults.
	if cfg.OTLPEndpoint != "http://localhost:4317" {
		t.Errorf("OTLPEndpoint = %q, want default", cfg.OTLPEndpoint)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "service_name: fromfile\n")
	t.Setenv("SERVICE_NAME", "fromenv")
	t.Setenv("OTLP_EXPORTER_TYPE", "http")
	t.Setenv("MAX_RETRY_ELAPSED", "5s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServiceName != "fromenv" {
		t.Errorf("ServiceName = %q, want env to win over file", cfg.ServiceName)
	}
	if cfg.OTLPProtocol != "http" {
		t.Errorf("OTLPProtocol = %q, want http", cfg.OTLPProtocol)
	}
	if cfg.MaxRetryElapsed != 5*time.Second {
		t.Errorf("MaxRetryElapsed = %v, want 5s", cfg.MaxRetryElapsed)
	}
}

func TestLoad_SecretExpansion(t *testing.T) {
	t.Setenv("INGEST_TOKEN", "tok123")
	path := writeConfigFile(t, "token: ${INGEST_TOKEN}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Token != "tok123" {
		t.Errorf("Token = %q, want tok123", cfg.Token)
	}
}

func TestLoad_MissingSecretErrors(t *testing.T) {
	path := writeConfigFile(t, "token: ${DEFINITELY_NOT_SET_ANYWHERE}\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() = nil error, want missing-variable error")
	}
	if !strings.Contains(err.Error(), "DEFINITELY_NOT_SET_ANYWHERE") {
		t.Errorf("error %q does not name the missing variable", err)
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load() = nil error, want read error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults valid", mutate: func(c *Config) {}},
		{
			name:    "missing service name",
			mutate:  func(c *Config) { c.ServiceName = "" },
			wantErr: ErrMissingServiceName,
		},
		{
			name:    "bad protocol",
			mutate:  func(c *Config) { c.OTLPProtocol = "carrier-pigeon" },
			wantErr: ErrInvalidProtocol,
		},
		{
			name:    "missing http address",
			mutate:  func(c *Config) { c.HTTPAddress = "" },
			wantErr: ErrMissingHTTPAddress,
		},
		{
			name:    "zero profiling period",
			mutate:  func(c *Config) { c.ProfilingPeriod = 0 },
			wantErr: ErrNonPositiveDuration,
		},
		{
			name:    "negative retry budget",
			mutate:  func(c *Config) { c.MaxRetryElapsed = -time.Second },
			wantErr: ErrNonPositiveDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
