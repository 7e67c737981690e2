package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestResultConstructors(t *testing.T) {
	checkErr := errors.New("boom")

	h := Healthy("all good")
	if h.Status != StatusHealthy || h.Message != "all good" || h.Timestamp.IsZero() {
		t.Errorf("Healthy() = %+v", h)
	}

	d := Degraded("slow")
	if d.Status != StatusDegraded || d.Message != "slow" {
		t.Errorf("Degraded() = %+v", d)
	}

	u := Unhealthy("down", checkErr)
	if u.Status != StatusUnhealthy || u.Error != checkErr {
		t.Errorf("Unhealthy() = %+v", u)
	}

	withDetails := h.WithDetails(map[string]any{"k": "v"})
	if withDetails.Details["k"] != "v" {
		t.Errorf("WithDetails() details = %v", withDetails.Details)
	}
}

func TestCheckerFunc(t *testing.T) {
	checker := NewCheckerFunc("custom", func(ctx context.Context) Result {
		return Healthy("ok")
	})

	if checker.Name() != "custom" {
		t.Errorf("Name() = %q, want %q", checker.Name(), "custom")
	}
	if result := checker.Check(context.Background()); result.Status != StatusHealthy {
		t.Errorf("Check() status = %v, want StatusHealthy", result.Status)
	}
}
