package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/economy/oteladapters"
)

const (
	serviceName         = "closed-economy-workload"
	serviceVersion      = "dev"
	metricsInterval     = 5 * time.Second
	shutdownTimeout     = 5 * time.Second
	instrumentationName = "github.com/AntonStoeckl/closed-economy-workload"
)

// observability bundles the logger and the optional OpenTelemetry collectors of one invocation.
type observability struct {
	logger           *slog.Logger
	contextualLogger economy.ContextualLogger
	metrics          economy.MetricsCollector
	tracing          economy.TracingCollector
	shutdown         func(ctx context.Context) error
}

func newLogger(s settings, out io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s.logLevel))); err != nil {
		level = slog.LevelInfo
	}

	options := &slog.HandlerOptions{Level: level}
	if s.logFormat == "json" {
		return slog.New(slog.NewJSONHandler(out, options))
	}

	return slog.New(slog.NewTextHandler(out, options))
}

// setupObservability creates the console logger and, when enabled, OTLP gRPC exporters for traces,
// metrics and logs, all sent to the same collector endpoint.
func setupObservability(ctx context.Context, s settings, logOut io.Writer) (*observability, error) {
	obs := &observability{
		logger:   newLogger(s, logOut),
		shutdown: func(context.Context) error { return nil },
	}

	if !s.observability {
		return obs, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(s.observabilityTarget),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter),
		trace.WithResource(res),
	)

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(s.observabilityTarget),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, errors.Join(err, tracerProvider.Shutdown(ctx))
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExporter, metric.WithInterval(metricsInterval))),
		metric.WithResource(res),
	)

	logExporter, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(s.observabilityTarget),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return nil, errors.Join(err, tracerProvider.Shutdown(ctx), meterProvider.Shutdown(ctx))
	}

	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	obs.metrics = oteladapters.NewMetricsCollector(meterProvider.Meter(instrumentationName))
	obs.tracing = oteladapters.NewTracingCollector(tracerProvider.Tracer(instrumentationName))

	if s.observabilityLogger == loggerOTel {
		obs.contextualLogger = oteladapters.NewOTelLogger(loggerProvider.Logger(instrumentationName))
	} else {
		obs.contextualLogger = oteladapters.NewSlogBridgeLoggerWithProvider(instrumentationName, loggerProvider)
	}

	obs.shutdown = func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		return errors.Join(
			tracerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
			loggerProvider.Shutdown(ctx),
		)
	}

	return obs, nil
}
