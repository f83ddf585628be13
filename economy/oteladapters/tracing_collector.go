package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

// TracingCollector implements economy.TracingCollector using the OpenTelemetry tracing API.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a new OpenTelemetry tracing collector.
// The tracer should be created from your OpenTelemetry TracerProvider.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan creates a new OpenTelemetry span with the given name and attributes.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, economy.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan adds the final attributes, sets the status and ends the span.
func (t *TracingCollector) FinishSpan(spanCtx economy.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	otelSpanCtx.span.SetAttributes(toAttributes(attrs)...)
	otelSpanCtx.setSpanStatus(status)
	otelSpanCtx.span.End()
}

var _ economy.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext implements economy.SpanContext by wrapping an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus sets the OpenTelemetry span status based on the provided status string.
func (s *OTelSpanContext) SetStatus(status string) {
	s.setSpanStatus(status)
}

// AddAttribute adds an attribute to the OpenTelemetry span.
func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

// setSpanStatus maps the generic status strings and the economy.Status names onto span status codes.
// Business outcomes like INSUFFICIENT_BALANCE are not errors of the span; they are kept as an attribute.
func (s *OTelSpanContext) setSpanStatus(status string) {
	switch status {
	case "ok", "success", "completed", economy.StatusOK.String():
		s.span.SetStatus(codes.Ok, "")
	case "error", "failed", "failure", economy.StatusError.String():
		s.span.SetStatus(codes.Error, "Operation failed")
	case economy.StatusErrorWhileReading.String(), economy.StatusErrorWhileUpdating.String(),
		economy.StatusUnexpectedState.String():
		s.span.SetStatus(codes.Error, status)
	case "cancelled", "canceled":
		s.span.SetStatus(codes.Error, "Operation cancelled")
	default:
		s.span.SetAttributes(attribute.String("status", status))
	}
}

var _ economy.SpanContext = (*OTelSpanContext)(nil)
