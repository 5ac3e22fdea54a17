// Package otel provides OpenTelemetry integration for operation dispatch.
package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/wrenlabs/docsmith/tool"
)

// OperationObserver records dispatched operation outcomes into OpenTelemetry.
type OperationObserver struct {
	tracer trace.Tracer

	invocations metric.Int64Counter
	failures    metric.Int64Counter
	latency     metric.Float64Histogram
}

// NewOperationObserver creates an observer bound to the provided meter/tracer.
func NewOperationObserver(meter metric.Meter, tracer trace.Tracer) (*OperationObserver, error) {
	invocations, err := meter.Int64Counter(
		"docsmith.operation.invocations",
		metric.WithDescription("Number of operation invocations"),
	)
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter(
		"docsmith.operation.failures",
		metric.WithDescription("Number of failed operation invocations"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"docsmith.operation.latency",
		metric.WithDescription("Operation latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &OperationObserver{
		tracer:      tracer,
		invocations: invocations,
		failures:    failures,
		latency:     latency,
	}, nil
}

// ObserveOperation records one dispatched operation result.
func (o *OperationObserver) ObserveOperation(observation tool.OperationObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", observation.Operation),
		attribute.Bool("success", observation.Success),
	}
	if observation.Document != "" {
		attrs = append(attrs, attribute.String("document", observation.Document))
	}
	if observation.ErrorCode != "" {
		attrs = append(attrs, attribute.String("error_code", observation.ErrorCode))
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)
	o.invocations.Add(ctx, 1, options)
	if !observation.Success {
		o.failures.Add(ctx, 1, options)
	}
	o.latency.Record(ctx, float64(time.Duration(observation.DurationMS)*time.Millisecond)/float64(time.Second), options)

	if o.tracer == nil {
		return
	}
	_, span := o.tracer.Start(ctx, "operation."+observation.Operation, trace.WithAttributes(attrs...))
	if !observation.Success {
		span.SetStatus(codes.Error, observation.ErrorCode)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

var _ tool.Observer = (*OperationObserver)(nil)
