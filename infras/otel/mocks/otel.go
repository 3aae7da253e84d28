// Package mocks provides tracing for tests: spans are either dropped or
// recorded in memory.
package mocks

import (
	"taskboard/infras/otel"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

// NewOtel returns an Otel whose spans go nowhere.
func NewOtel() otel.Otel {
	return otel.NewWithProvider(noop.NewTracerProvider())
}

// NewRecorder returns an Otel that keeps every ended span in the recorder.
func NewRecorder() (otel.Otel, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	return otel.NewWithProvider(provider), recorder
}
