// Package oteladapters provides OpenTelemetry implementations of the economy observability interfaces.
//
// MetricsCollector maps durations to histograms, counters to counters and values to gauges.
// TracingCollector opens one span per reported operation. SlogBridgeLogger and OTelLogger are
// ContextualLoggers whose records carry the trace and span of the context they are logged with.
package oteladapters
