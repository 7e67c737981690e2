package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newRecordingMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// TestMetrics_TotalCounterIncrements verifies op.total is incremented.
func TestMetrics_TotalCounterIncrements(t *testing.T) {
	m, reader := newRecordingMetrics(t)

	op := Op{Component: "travel", Name: "visit1"}
	m.RecordOp(context.Background(), op, 100*time.Millisecond, nil)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "op.total")
	if found == nil {
		t.Fatal("op.total metric not found")
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("op.total data = %T, want Sum[int64]", found.Data)
	}
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("op.total = %+v, want single data point of 1", sum.DataPoints)
	}
}

// TestMetrics_ErrorCounterOnlyOnFailure verifies op.errors counts failures only.
func TestMetrics_ErrorCounterOnlyOnFailure(t *testing.T) {
	m, reader := newRecordingMetrics(t)

	ctx := context.Background()
	op := Op{Name: "hello_world"}
	m.RecordOp(ctx, op, time.Millisecond, nil)
	m.RecordOp(ctx, op, time.Millisecond, errors.New("user not found"))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "op.errors")
	if found == nil {
		t.Fatal("op.errors metric not found")
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("op.errors data = %T, want Sum[int64]", found.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 1 {
		t.Errorf("op.errors total = %d, want 1", total)
	}
}

// TestMetrics_DurationHistogramSeconds verifies duration is recorded in seconds.
func TestMetrics_DurationHistogramSeconds(t *testing.T) {
	m, reader := newRecordingMetrics(t)

	ctx := context.Background()
	m.RecordOp(ctx, Op{Name: "task"}, 250*time.Millisecond, nil)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "op.duration_seconds")
	if found == nil {
		t.Fatal("op.duration_seconds metric not found")
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("op.duration_seconds data = %T, want Histogram[float64]", found.Data)
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("data points = %d, want 1", len(hist.DataPoints))
	}
	if got := hist.DataPoints[0].Sum; got != 0.25 {
		t.Errorf("histogram sum = %v, want 0.25", got)
	}
}

// TestNoopMetrics verifies the no-op implementation is safe to call.
func TestNoopMetrics(t *testing.T) {
	m := NewNoopMetrics()
	m.RecordOp(context.Background(), Op{Name: "anything"}, time.Second, errors.New("ignored"))
}
