package otel_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace/noop"

	docotel "github.com/wrenlabs/docsmith/otel"
	"github.com/wrenlabs/docsmith/tool"
)

func newTestMeter() (*metric.ManualReader, *metric.MeterProvider) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	return reader, mp
}

func collectMetrics(t *testing.T, reader *metric.ManualReader) *metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, scope := range rm.ScopeMetrics {
		for i := range scope.Metrics {
			if scope.Metrics[i].Name == name {
				return &scope.Metrics[i]
			}
		}
	}
	return nil
}

func TestOperationObserverRecordsMetrics(t *testing.T) {
	reader, mp := newTestMeter()
	meter := mp.Meter("test-operation-observer")
	tracer := noop.NewTracerProvider().Tracer("test-operation-observer")

	observer, err := docotel.NewOperationObserver(meter, tracer)
	if err != nil {
		t.Fatalf("NewOperationObserver() error = %v", err)
	}

	observer.ObserveOperation(tool.OperationObservation{
		Operation:  "add_paragraph",
		Document:   "report.docx",
		DurationMS: 12,
		Success:    true,
	})
	observer.ObserveOperation(tool.OperationObservation{
		Operation:  "convert_document",
		Document:   "report.docx",
		DurationMS: 480,
		Success:    false,
		ErrorCode:  "CONVERSION_ERROR",
	})

	rm := collectMetrics(t, reader)

	invocations := findMetric(rm, "docsmith.operation.invocations")
	if invocations == nil {
		t.Fatal("docsmith.operation.invocations metric not found")
	}
	sum, ok := invocations.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("docsmith.operation.invocations type = %T, want Sum[int64]", invocations.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 2 {
		t.Fatalf("invocation total = %d, want 2", total)
	}

	failures := findMetric(rm, "docsmith.operation.failures")
	if failures == nil {
		t.Fatal("docsmith.operation.failures metric not found")
	}
	failSum, ok := failures.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("docsmith.operation.failures type = %T, want Sum[int64]", failures.Data)
	}
	var failTotal int64
	for _, dp := range failSum.DataPoints {
		failTotal += dp.Value
	}
	if failTotal != 1 {
		t.Fatalf("failure total = %d, want 1", failTotal)
	}

	latency := findMetric(rm, "docsmith.operation.latency")
	if latency == nil {
		t.Fatal("docsmith.operation.latency metric not found")
	}
	if _, ok := latency.Data.(metricdata.Histogram[float64]); !ok {
		t.Fatalf("docsmith.operation.latency type = %T, want Histogram[float64]", latency.Data)
	}
}
