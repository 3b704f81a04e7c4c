package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInit_NilConfig(t *testing.T) {
	tel, err := Init(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, tel)

	// No-op instruments are still usable so the guard middleware can record
	// decisions without branching on whether telemetry is on.
	assert.NotNil(t, tel.Tracer())
	assert.NotNil(t, tel.Meter())
	assert.Same(t, tel, Get())
}

func TestInit_Disabled(t *testing.T) {
	cfg := &Config{
		Enabled:     false,
		ServiceName: "immo-gateway",
	}

	tel, err := Init(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, tel)
	assert.NotNil(t, tel.Tracer())
	assert.NotNil(t, tel.Meter())
	assert.Equal(t, cfg, tel.config)
	assert.Nil(t, tel.tracerProvider)
	assert.Nil(t, tel.meterProvider)
}

func TestInit_Enabled(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cfg := &Config{
		Enabled:        true,
		ServiceName:    "immo-gateway",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		CollectorAddr:  "localhost:4317",
	}

	tel, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, tel)
	assert.NotNil(t, tel.tracerProvider)
	assert.NotNil(t, tel.meterProvider)

	// Defaults fill in when the config leaves them zero.
	assert.Equal(t, 15*time.Second, cfg.MetricInterval)
	assert.Equal(t, 1.0, cfg.SampleRatio)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	_ = Shutdown(shutdownCtx)
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1.0).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(2.5).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(-1).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), samplerFor(0.25).Description())
}

func TestNewResource(t *testing.T) {
	cfg := &Config{
		ServiceName:    "immo-mailer",
		ServiceVersion: "2.1.0",
		Environment:    "production",
	}

	res, err := newResource(cfg)
	require.NoError(t, err)

	attrs := make(map[string]string)
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, "immo-mailer", attrs["service.name"])
	assert.Equal(t, "2.1.0", attrs["service.version"])
	assert.Equal(t, "production", attrs["deployment.environment.name"])
	assert.Equal(t, "lycs-immo", attrs["service.namespace"])
}

func TestShutdown_NilGlobal(t *testing.T) {
	prev := globalTelemetry
	globalTelemetry = nil
	defer func() { globalTelemetry = prev }()

	assert.NoError(t, Shutdown(context.Background()))
}

func TestGetMeter_NilGlobal(t *testing.T) {
	prev := globalTelemetry
	globalTelemetry = nil
	defer func() { globalTelemetry = prev }()

	assert.NotNil(t, GetMeter())
}

func TestGetMeter_Disabled(t *testing.T) {
	_, err := Init(context.Background(), &Config{Enabled: false, ServiceName: "immo-gateway"})
	require.NoError(t, err)
	assert.NotNil(t, GetMeter())
}
