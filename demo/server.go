package demo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/pyrolink/health"
	"github.com/jonwraymond/pyrolink/observe"
)

// countries is the pool both handlers draw destinations from.
var countries = []string{
	"United States",
	"Canada",
	"United Kingdom",
	"Germany",
	"France",
	"Japan",
	"Australia",
	"China",
	"India",
	"Brazil",
}

// errorMessages are the simulated failure causes.
var errorMessages = []string{
	"mysql connect timeout",
	"user not found",
	"network unreachable",
	"file not found",
}

const (
	defaultErrorRate = 0.1
	defaultSleepRate = 0.2
)

// Server is the demo HTTP application.
type Server struct {
	serviceName string
	tracer      observe.Tracer
	middleware  *observe.Middleware
	logger      observe.Logger

	requestsTotal    metric.Int64Counter
	taskDuration     metric.Float64Histogram
	visitTotal       metric.Int64Counter
	visitDuration    metric.Float64Histogram
	parallelDuration metric.Float64Histogram
	serialDuration   metric.Float64Histogram

	// Failure injection knobs, adjustable in tests.
	errorRate float64
	sleepRate float64

	health *health.Aggregator
}

// NewServer builds the demo application on top of the observer's
// telemetry primitives.
func NewServer(serviceName string, obs observe.Observer, agg *health.Aggregator) (*Server, error) {
	meter := obs.Meter()

	requestsTotal, err := meter.Int64Counter("requests_total",
		metric.WithDescription("Total number of HTTP requests"))
	if err != nil {
		return nil, fmt.Errorf("demo: create requests_total: %w", err)
	}
	taskDuration, err := meter.Float64Histogram("task_execute_duration_seconds",
		metric.WithUnit("s"),
		metric.WithDescription("Task execute duration in seconds"))
	if err != nil {
		return nil, fmt.Errorf("demo: create task_execute_duration_seconds: %w", err)
	}
	visitTotal, err := meter.Int64Counter("visit_requests_total",
		metric.WithDescription("Total number of visit calls"))
	if err != nil {
		return nil, fmt.Errorf("demo: create visit_requests_total: %w", err)
	}
	visitDuration, err := meter.Float64Histogram("visit_execute_duration_seconds",
		metric.WithUnit("s"),
		metric.WithDescription("visit function execute duration in seconds"))
	if err != nil {
		return nil, fmt.Errorf("demo: create visit_execute_duration_seconds: %w", err)
	}
	parallelDuration, err := meter.Float64Histogram("parallel_visit_execute_duration_seconds",
		metric.WithUnit("s"),
		metric.WithDescription("parallel visit function execute duration in seconds"))
	if err != nil {
		return nil, fmt.Errorf("demo: create parallel_visit_execute_duration_seconds: %w", err)
	}
	serialDuration, err := meter.Float64Histogram("serial_visit_execute_duration_seconds",
		metric.WithUnit("s"),
		metric.WithDescription("serial visit function execute duration in seconds"))
	if err != nil {
		return nil, fmt.Errorf("demo: create serial_visit_execute_duration_seconds: %w", err)
	}

	// Gauge with a synthetic value so dashboards always have data.
	_, err = meter.Float64ObservableGauge("memory_usage",
		metric.WithUnit("%"),
		metric.WithDescription("Memory usage"),
		metric.WithFloat64Callback(func(ctx context.Context, o metric.Float64Observer) error {
			o.Observe(float64(int(rand.Float64()*10000)) / 10000) // #nosec G404 -- demo data, not security sensitive
			return nil
		}))
	if err != nil {
		return nil, fmt.Errorf("demo: create memory_usage: %w", err)
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, fmt.Errorf("demo: build middleware: %w", err)
	}

	return &Server{
		serviceName:      serviceName,
		tracer:           observe.NewTracer(obs.Tracer()),
		middleware:       mw,
		logger:           obs.Logger().WithComponent("server"),
		requestsTotal:    requestsTotal,
		taskDuration:     taskDuration,
		visitTotal:       visitTotal,
		visitDuration:    visitDuration,
		parallelDuration: parallelDuration,
		serialDuration:   serialDuration,
		errorRate:        defaultErrorRate,
		sleepRate:        defaultSleepRate,
		health:           agg,
	}, nil
}

// Handler returns the full route table wrapped in HTTP instrumentation.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/helloworld", s.HandleHelloWorld)
	mux.HandleFunc("/travel", s.HandleTravel)
	if s.health != nil {
		health.RegisterHandlers(mux, s.health)
	}
	return otelhttp.NewHandler(mux, s.serviceName)
}

// HandleHelloWorld greets a random country while emitting one of every
// telemetry primitive: a counter, a histogram, custom spans, span
// events, and an occasional simulated error.
func (s *Server) HandleHelloWorld(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.StartSpan(r.Context(), observe.Op{Component: "handle", Name: "hello_world"})

	country := countries[rand.Intn(len(countries))] // #nosec G404
	s.logger.Info(ctx, "received request",
		observe.Field{Key: "method", Value: r.Method},
		observe.Field{Key: "path", Value: r.URL.Path},
		observe.Field{Key: "country", Value: country})

	s.requestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("country", country)))

	start := time.Now()
	doSomething(100)
	s.taskDuration.Record(ctx, time.Since(start).Seconds())

	s.customSpanDemo(ctx)
	s.spanEventDemo(ctx)

	if err := s.randomError(); err != nil {
		s.logger.Error(ctx, "simulated failure", observe.Field{Key: "error", Value: err.Error()})
		s.tracer.EndSpan(span, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.tracer.EndSpan(span, nil)

	fmt.Fprintf(w, "Hello World, %s!", country)
}

// customSpanDemo shows a child span with custom attributes.
func (s *Server) customSpanDemo(ctx context.Context) {
	_, span := s.tracer.StartSpan(ctx,
		observe.Op{Component: "custom_span_demo", Name: "do_something"},
		attribute.Int("helloworld.kind", 1),
		attribute.String("helloworld.step", "traces_custom_span_demo"),
	)
	doSomething(50)
	s.tracer.EndSpan(span, nil)
}

// spanEventDemo shows span events around a unit of work.
func (s *Server) spanEventDemo(ctx context.Context) {
	_, span := s.tracer.StartSpan(ctx, observe.Op{Component: "span_event_demo", Name: "do_something"})
	attrs := []attribute.KeyValue{
		attribute.Int("helloworld.kind", 2),
		attribute.String("helloworld.step", "traces_span_event_demo"),
	}
	span.AddEvent("Before do_something", trace.WithAttributes(attrs...))
	doSomething(50)
	span.AddEvent("After do_something", trace.WithAttributes(attrs...))
	s.tracer.EndSpan(span, nil)
}

// HandleTravel visits three random countries, first in parallel and
// then serially, so traces show both fan-out and sequential children.
func (s *Server) HandleTravel(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.StartSpan(r.Context(), observe.Op{Component: "travel", Name: "visit_handle"})

	picked := pickCountries(3)
	s.logger.Info(ctx, "planned trip",
		observe.Field{Key: "path", Value: r.URL.Path},
		observe.Field{Key: "countries", Value: picked})

	err := s.parallelVisit(ctx, picked)
	if err == nil {
		err = s.serialVisit(ctx, picked)
	}

	s.tracer.EndSpan(span, err)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	fmt.Fprint(w, "Travel Success")
}

// parallelVisit fans out one goroutine per country, each under its own
// span linked back to the parent context.
func (s *Server) parallelVisit(ctx context.Context, picked []string) error {
	ctx, span := s.tracer.StartSpan(ctx, observe.Op{Component: "travel", Name: "parallel_visit"})
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for _, country := range picked {
		g.Go(func() error {
			taskCtx, taskSpan := s.tracer.StartSpan(gctx, observe.Op{Component: "travel", Name: "parallel_task"})
			err := s.visit(taskCtx, "visit2", country)
			s.tracer.EndSpan(taskSpan, err)
			return err
		})
	}
	err := g.Wait()

	s.parallelDuration.Record(ctx, time.Since(start).Seconds())
	s.tracer.EndSpan(span, err)
	return err
}

// serialVisit walks the countries one by one, stopping at the first
// failure.
func (s *Server) serialVisit(ctx context.Context, picked []string) error {
	ctx, span := s.tracer.StartSpan(ctx, observe.Op{Component: "travel", Name: "serial_visit"})
	start := time.Now()

	var err error
	for _, country := range picked {
		if err = s.visit(ctx, "visit1", country); err != nil {
			break
		}
	}

	s.serialDuration.Record(ctx, time.Since(start).Seconds())
	s.tracer.EndSpan(span, err)
	return err
}

// visit simulates one country visit: counted, timed, occasionally slow
// and occasionally failing. The operation runs through the telemetry
// middleware so it is traced, measured and logged uniformly.
func (s *Server) visit(ctx context.Context, name, country string) error {
	op := observe.Op{Component: "travel", Name: name}
	fn := s.middleware.Wrap(op, func(ctx context.Context) error {
		start := time.Now()
		defer func() {
			s.visitDuration.Record(ctx, time.Since(start).Seconds())
		}()

		s.visitTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("country", country)))

		v := rand.Float64() // #nosec G404
		switch {
		case v < s.errorRate:
			return errors.New(errorMessages[rand.Intn(len(errorMessages))]) // #nosec G404
		case v < s.sleepRate:
			time.Sleep(time.Duration(v * 100 * float64(time.Millisecond)))
		}
		return nil
	})
	return fn(ctx)
}

// randomError fails at the configured rate with a random cause.
func (s *Server) randomError() error {
	if rand.Float64() < s.errorRate { // #nosec G404
		return errors.New(errorMessages[rand.Intn(len(errorMessages))]) // #nosec G404
	}
	return nil
}

// pickCountries samples n distinct countries.
func pickCountries(n int) []string {
	idx := rand.Perm(len(countries)) // #nosec G404
	picked := make([]string, n)
	for i := range picked {
		picked[i] = countries[idx[i]]
	}
	return picked
}

// doSomething busy-waits between 10ms and maxMs milliseconds so CPU
// profiles have something to show.
func doSomething(maxMs int) {
	duration := time.Duration(max(10, rand.Intn(maxMs+1))) * time.Millisecond // #nosec G404
	for start := time.Now(); time.Since(start) < duration; {
	}
}
