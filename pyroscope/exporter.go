package pyroscope

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonwraymond/pyrolink/observe"
	"github.com/jonwraymond/pyrolink/resilience"
)

// spyName identifies the originating profiling runtime to the ingestion
// server. It is part of the wire contract, not a display label.
const spyName = "ddtrace"

// defaultMaxRetryElapsed is the wall-clock budget for all upload attempts
// of one export call combined.
const defaultMaxRetryElapsed = 3 * time.Second

// sampleType declares the units and aggregation for one profiling
// measurement, communicated to the server alongside the binary profile.
type sampleType struct {
	Units       string `json:"units"`
	Aggregation string `json:"aggregation"`
	DisplayName string `json:"display-name"`
	Sampled     bool   `json:"sampled"`
}

// sampleTypeConfig lists the sample types the ingestion server has unit
// semantics for. Exception and allocation-count samples are deliberately
// absent: the server has no matching units for them.
var sampleTypeConfig = map[string]sampleType{
	"cpu-time":    {Units: "samples", Aggregation: "sum", DisplayName: "cpu_time", Sampled: true},
	"wall-time":   {Units: "samples", Aggregation: "sum", DisplayName: "wall_time", Sampled: true},
	"alloc-space": {Units: "bytes", Aggregation: "sum", DisplayName: "alloc_space", Sampled: true},
	"heap-space":  {Units: "bytes", Aggregation: "average", DisplayName: "heap_space", Sampled: false},
}

// sampleTypeConfigJSON is the pre-serialized form sent with every upload.
var sampleTypeConfigJSON = func() []byte {
	data, err := json.Marshal(sampleTypeConfig)
	if err != nil {
		panic("pyroscope: marshal sample type config: " + err.Error())
	}
	return data
}()

// Config holds the exporter configuration. It is read-only after
// construction and shared by every export call.
type Config struct {
	// ServiceName is the application identifier reported as the `name`
	// query parameter.
	ServiceName string

	// AuthToken is the bearer credential. It may be empty: export is still
	// attempted and the server-side auth failure surfaces through normal
	// status classification.
	AuthToken string

	// Endpoint is the base ingest URL, e.g. "http://localhost:4040/ingest".
	Endpoint string

	// MaxRetryElapsed bounds the total wall-clock time spent retrying one
	// export call. Default: 3s.
	MaxRetryElapsed time.Duration

	// HTTPClient executes upload attempts. If nil a pooled default client
	// is used. Tests substitute a client with a fake transport.
	HTTPClient *http.Client

	// Logger receives the startup diagnostics. If nil, logging is disabled.
	Logger observe.Logger
}

// Exporter uploads profiles to one Pyroscope endpoint. It is the sole
// network-touching component in the export pipeline. An Exporter is safe
// for sequential reuse across export calls; callers must not run two
// export calls concurrently against the same instance.
type Exporter struct {
	cfg    Config
	client *http.Client
	retry  *resilience.Retry
	logger observe.Logger
}

// NewExporter validates cfg and builds an Exporter. When no auth token is
// configured it warns once here, so the missing credential is diagnosable
// before the first failed upload.
func NewExporter(cfg Config) (*Exporter, error) {
	if cfg.ServiceName == "" {
		return nil, ErrMissingServiceName
	}
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("pyroscope: invalid endpoint %q: %w", cfg.Endpoint, err)
	}
	if cfg.MaxRetryElapsed <= 0 {
		cfg.MaxRetryElapsed = defaultMaxRetryElapsed
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}

	ctx := context.Background()
	if cfg.AuthToken == "" {
		logger.Warn(ctx, "auth token not set, profile uploads will likely be rejected",
			observe.Field{Key: "endpoint", Value: cfg.Endpoint})
	} else {
		logger.Info(ctx, "profile exporter configured",
			observe.Field{Key: "endpoint", Value: cfg.Endpoint},
			observe.Field{Key: "service", Value: cfg.ServiceName})
	}

	return &Exporter{
		cfg:    cfg,
		client: client,
		retry: resilience.NewRetry(resilience.RetryConfig{
			MaxElapsed: cfg.MaxRetryElapsed,
			RetryIf:    IsRetryable,
		}),
		logger: logger,
	}, nil
}

// Export compresses and uploads one serialized profile covering
// [startTimeNS, endTimeNS]. On success the unmodified profile is returned
// to the caller, mirroring the pass-through contract of the host
// profiler's export hook. Terminal failures and exhausted retry budgets
// surface as errors; the caller decides whether to log or drop the cycle.
func (e *Exporter) Export(ctx context.Context, profile []byte, startTimeNS, endTimeNS int64) ([]byte, error) {
	compressed, err := gzipProfile(profile)
	if err != nil {
		return nil, err
	}

	contentType, body, err := encodeMultipart([]formField{
		{name: fieldProfile, payload: compressed},
		{name: fieldSampleTypeConfig, payload: sampleTypeConfigJSON},
	})
	if err != nil {
		return nil, err
	}

	uploadURL := e.uploadURL(startTimeNS, endTimeNS)
	err = e.retry.Execute(ctx, func(ctx context.Context) error {
		return e.uploadOnce(ctx, uploadURL, contentType, body)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// uploadURL assembles the ingest URL with its query parameters.
func (e *Exporter) uploadURL(startTimeNS, endTimeNS int64) string {
	q := url.Values{}
	q.Set("name", e.cfg.ServiceName)
	q.Set("spyName", spyName)
	q.Set("from", strconv.FormatInt(startTimeNS, 10))
	q.Set("until", strconv.FormatInt(endTimeNS, 10))
	return e.cfg.Endpoint + "?" + q.Encode()
}

// uploadOnce executes exactly one HTTP attempt and classifies the result.
// Transport errors are retryable; response statuses go through
// classifyStatus. The response body is drained so the pooled connection
// can be reused.
func (e *Exporter) uploadOnce(ctx context.Context, uploadURL, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("pyroscope: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if e.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.AuthToken)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return &RetryableError{Cause: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return classifyStatus(resp.StatusCode, uploadURL)
}
