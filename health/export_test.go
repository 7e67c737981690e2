package health

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExportChecker_Healthy(t *testing.T) {
	checker := NewExportChecker("profile_export", func() error { return nil })

	if checker.Name() != "profile_export" {
		t.Errorf("Name() = %q, want %q", checker.Name(), "profile_export")
	}
	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("status = %v, want StatusHealthy", result.Status)
	}
}

func TestExportChecker_DegradedOnFailure(t *testing.T) {
	exportErr := errors.New("server returned 503")
	checker := NewExportChecker("profile_export", func() error { return exportErr })

	result := checker.Check(context.Background())
	if result.Status != StatusDegraded {
		t.Errorf("status = %v, want StatusDegraded", result.Status)
	}
	if result.Error != exportErr {
		t.Errorf("error = %v, want %v", result.Error, exportErr)
	}
	if !strings.Contains(result.Message, "server returned 503") {
		t.Errorf("message %q does not mention the export error", result.Message)
	}
}

func TestExportChecker_RecoversAfterSuccess(t *testing.T) {
	var lastErr error
	checker := NewExportChecker("profile_export", func() error { return lastErr })

	lastErr = errors.New("transient")
	if result := checker.Check(context.Background()); result.Status != StatusDegraded {
		t.Fatalf("status = %v, want StatusDegraded while failing", result.Status)
	}

	lastErr = nil
	if result := checker.Check(context.Background()); result.Status != StatusHealthy {
		t.Errorf("status = %v, want StatusHealthy after recovery", result.Status)
	}
}
