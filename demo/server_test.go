package demo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/jonwraymond/pyrolink/health"
	"github.com/jonwraymond/pyrolink/observe"
)

func newTestObserver(t *testing.T) observe.Observer {
	t.Helper()
	obs, err := observe.NewObserver(context.Background(), observe.Config{
		ServiceName: "demo-test",
		Protocol:    "none",
		Tracing:     observe.TracingConfig{Enabled: true, SamplePct: 1.0},
		Metrics:     observe.MetricsConfig{Enabled: true},
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	t.Cleanup(func() {
		_ = obs.Shutdown(context.Background())
	})
	return obs
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewServer("demo-test", newTestObserver(t), nil)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv
}

func TestHandleHelloWorld_Success(t *testing.T) {
	srv := newTestServer(t)
	srv.errorRate = 0

	rec := httptest.NewRecorder()
	srv.HandleHelloWorld(rec, httptest.NewRequest(http.MethodGet, "/helloworld", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	m := regexp.MustCompile(`^Hello World, (.+)!$`).FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("body = %q, want a greeting", body)
	}
	if !slices.Contains(countries, m[1]) {
		t.Errorf("greeted country %q is not in the pool", m[1])
	}
}

func TestHandleHelloWorld_SimulatedError(t *testing.T) {
	srv := newTestServer(t)
	srv.errorRate = 1

	rec := httptest.NewRecorder()
	srv.HandleHelloWorld(rec, httptest.NewRequest(http.MethodGet, "/helloworld", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := strings.TrimSpace(rec.Body.String())
	if !slices.Contains(errorMessages, body) {
		t.Errorf("body = %q, want one of the simulated error messages", body)
	}
}

func TestHandleTravel_Success(t *testing.T) {
	srv := newTestServer(t)
	srv.errorRate = 0
	srv.sleepRate = 0

	rec := httptest.NewRecorder()
	srv.HandleTravel(rec, httptest.NewRequest(http.MethodGet, "/travel", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "Travel Success" {
		t.Errorf("body = %q, want Travel Success", rec.Body.String())
	}
}

func TestHandleTravel_VisitFailure(t *testing.T) {
	srv := newTestServer(t)
	srv.errorRate = 1

	rec := httptest.NewRecorder()
	srv.HandleTravel(rec, httptest.NewRequest(http.MethodGet, "/travel", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := strings.TrimSpace(rec.Body.String())
	if !slices.Contains(errorMessages, body) {
		t.Errorf("body = %q, want one of the simulated error messages", body)
	}
}

func TestHandler_Routes(t *testing.T) {
	agg := health.NewAggregator()
	srv, err := NewServer("demo-test", newTestObserver(t), agg)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	srv.errorRate = 0
	srv.sleepRate = 0

	handler := srv.Handler()

	for _, path := range []string{"/helloworld", "/travel", "/healthz", "/readyz", "/health"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestPickCountries(t *testing.T) {
	picked := pickCountries(3)
	if len(picked) != 3 {
		t.Fatalf("pickCountries(3) returned %d entries", len(picked))
	}
	seen := make(map[string]bool)
	for _, c := range picked {
		if !slices.Contains(countries, c) {
			t.Errorf("picked %q is not in the pool", c)
		}
		if seen[c] {
			t.Errorf("picked %q twice", c)
		}
		seen[c] = true
	}
}
