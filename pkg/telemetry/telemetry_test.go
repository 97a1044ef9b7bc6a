// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/telekom/loghtml/pkg/config"
)

func restoreProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
}

func TestInitDisabled(t *testing.T) {
	restoreProvider(t)
	ctx := context.Background()

	tp, shutdown, err := Init(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, noop.TracerProvider{}, tp)
	assert.NoError(t, shutdown(ctx))
}

func TestInitNoneExporter(t *testing.T) {
	restoreProvider(t)
	ctx := context.Background()

	tp, shutdown, err := Init(ctx, Options{
		Telemetry: config.Telemetry{Enabled: true, Exporter: "none", SamplingRate: 1.0},
		Logger:    zap.NewNop().Sugar(),
	})
	require.NoError(t, err)
	defer func() { assert.NoError(t, shutdown(ctx)) }()

	assert.IsType(t, &sdktrace.TracerProvider{}, tp)
	assert.Same(t, tp, otel.GetTracerProvider())

	_, span := Tracer("test").Start(ctx, "sample")
	assert.True(t, span.SpanContext().IsSampled())
	span.End()
}

func TestInitStdoutExporterWritesSpans(t *testing.T) {
	restoreProvider(t)
	ctx := context.Background()
	var out bytes.Buffer

	_, shutdown, err := Init(ctx, Options{
		Telemetry:    config.Telemetry{Enabled: true, Exporter: "stdout", SamplingRate: 1.0},
		ServiceName:  "test-stdout",
		StdoutWriter: &out,
	})
	require.NoError(t, err)

	_, span := Tracer("mail").Start(ctx, "mail.send")
	span.End()
	require.NoError(t, shutdown(ctx))

	assert.Contains(t, out.String(), `"Name": "mail.send"`)
	assert.Contains(t, out.String(), "test-stdout")
}

func TestInitInvalidExporter(t *testing.T) {
	_, _, err := Init(context.Background(), Options{
		Telemetry: config.Telemetry{Enabled: true, Exporter: "zipkin"},
	})
	assert.ErrorContains(t, err, "unknown OTel exporter")
}

func TestInitSamplingRateOutOfRange(t *testing.T) {
	for _, rate := range []float64{-0.5, 0, 2.0} {
		restoreProvider(t)
		ctx := context.Background()

		_, shutdown, err := Init(ctx, Options{
			Telemetry: config.Telemetry{Enabled: true, Exporter: "none", SamplingRate: rate},
		})
		require.NoError(t, err)

		_, span := Tracer("test").Start(ctx, "sample")
		assert.True(t, span.SpanContext().IsSampled(), "rate %v should fall back to sampling everything", rate)
		span.End()
		_ = shutdown(ctx)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	restoreProvider(t)
	ctx := context.Background()

	_, shutdown, err := Init(ctx, Options{Telemetry: config.Telemetry{Enabled: true, Exporter: "none"}})
	require.NoError(t, err)

	assert.NoError(t, shutdown(ctx))
	assert.NoError(t, shutdown(ctx))
}

func TestInitOTLPExporterCreation(t *testing.T) {
	restoreProvider(t)
	ctx := context.Background()

	// The OTLP exporter connects lazily, so a non-routable endpoint is fine.
	tp, shutdown, err := Init(ctx, Options{
		Telemetry: config.Telemetry{Enabled: true, Exporter: "otlp", Endpoint: "localhost:0", Insecure: true},
		Logger:    zap.NewNop().Sugar(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(ctx) })
	assert.NotNil(t, tp)
}
