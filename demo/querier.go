package demo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jonwraymond/pyrolink/observe"
)

// defaultQueryInterval is the pause between generated requests.
const defaultQueryInterval = 3 * time.Second

// Querier generates steady traffic against the demo server so every
// telemetry signal has data without external load. Each request runs
// inside a client span and propagates trace context over the wire.
type Querier struct {
	url      string
	interval time.Duration
	client   *http.Client
	tracer   observe.Tracer
	logger   observe.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// QuerierConfig configures the traffic generator.
type QuerierConfig struct {
	// URL is the target endpoint, e.g. "http://localhost:8080/helloworld".
	URL string

	// Interval is the pause between requests. Default: 3s.
	Interval time.Duration

	// HTTPClient executes the requests. If nil an instrumented default
	// client is built.
	HTTPClient *http.Client
}

// NewQuerier builds a traffic generator using the observer's tracer and
// logger.
func NewQuerier(cfg QuerierConfig, obs observe.Observer) *Querier {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultQueryInterval
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Querier{
		url:      cfg.URL,
		interval: cfg.Interval,
		client:   client,
		tracer:   observe.NewTracer(obs.Tracer()),
		logger:   obs.Logger().WithComponent("querier"),
	}
}

// Start launches the request loop. It returns immediately.
func (q *Querier) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.done = make(chan struct{})

	q.logger.Info(ctx, "querier started",
		observe.Field{Key: "url", Value: q.url},
		observe.Field{Key: "interval", Value: q.interval.String()})

	go q.run(ctx, q.done)
}

// Stop halts the loop and waits for the in-flight request to finish or
// ctx to expire.
func (q *Querier) Stop(ctx context.Context) error {
	q.mu.Lock()
	cancel, done := q.cancel, q.done
	q.cancel, q.done = nil, nil
	q.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Querier) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := q.queryOnce(ctx); err != nil && ctx.Err() == nil {
			q.logger.Error(ctx, "query failed", observe.Field{Key: "error", Value: err.Error()})
		}
	}
}

// queryOnce issues a single GET under a caller span.
func (q *Querier) queryOnce(ctx context.Context) error {
	ctx, span := q.tracer.StartSpan(ctx, observe.Op{Component: "caller", Name: "query_hello_world"})

	err := q.doRequest(ctx)
	q.tracer.EndSpan(span, err)
	return err
}

func (q *Querier) doRequest(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.url, nil)
	if err != nil {
		return fmt.Errorf("demo: build query request: %w", err)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("demo: query %s: %w", q.url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("demo: read query response: %w", err)
	}

	q.logger.Debug(ctx, "query completed",
		observe.Field{Key: "status", Value: resp.StatusCode},
		observe.Field{Key: "body", Value: string(body)})
	return nil
}
