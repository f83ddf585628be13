package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/economy/oteladapters"
)

func Test_TracingCollector_FinishSpan_MapsStatuses(t *testing.T) {
	tests := []struct {
		status       string
		expectedCode codes.Code
	}{
		{status: "success", expectedCode: codes.Ok},
		{status: economy.StatusOK.String(), expectedCode: codes.Ok},
		{status: "error", expectedCode: codes.Error},
		{status: economy.StatusErrorWhileReading.String(), expectedCode: codes.Error},
		{status: economy.StatusUnexpectedState.String(), expectedCode: codes.Error},
		{status: "cancelled", expectedCode: codes.Error},
		{status: economy.StatusInsufficientBalance.String(), expectedCode: codes.Unset},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			// setup
			exporter := tracetest.NewInMemoryExporter()
			provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
			collector := oteladapters.NewTracingCollector(provider.Tracer("test"))

			// act
			_, spanCtx := collector.StartSpan(context.Background(), "closedeconomy.operation",
				map[string]string{"operation": "TRANSFER"})
			collector.FinishSpan(spanCtx, tt.status, map[string]string{"outcome": "x"})

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.expectedCode, spans[0].Status.Code)
			assert.Contains(t, spans[0].Attributes, attribute.String("operation", "TRANSFER"))
			assert.Contains(t, spans[0].Attributes, attribute.String("outcome", "x"))
		})
	}
}

func Test_TracingCollector_FinishSpan_When_StatusIsNotAnError_It_IsKeptAsAttribute(t *testing.T) {
	// setup
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	collector := oteladapters.NewTracingCollector(provider.Tracer("test"))

	// act
	_, spanCtx := collector.StartSpan(context.Background(), "closedeconomy.operation", nil)
	spanCtx.AddAttribute("from", "user3")
	collector.FinishSpan(spanCtx, "INSUFFICIENT_BALANCE", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes, attribute.String("status", "INSUFFICIENT_BALANCE"))
	assert.Contains(t, spans[0].Attributes, attribute.String("from", "user3"))
}

func Test_TracingCollector_StartSpan_When_ParentExists_It_CreatesChild(t *testing.T) {
	// setup
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	collector := oteladapters.NewTracingCollector(provider.Tracer("test"))

	// act
	ctx, parent := collector.StartSpan(context.Background(), "closedeconomy.operation", nil)
	_, child := collector.StartSpan(ctx, "postgresstore.read", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "postgresstore.read", spans[0].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}
