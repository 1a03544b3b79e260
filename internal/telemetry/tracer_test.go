// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/ManuGH/fetchdemo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false, ServiceName: "test-service"})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:      true,
		ServiceName:  "test-service",
		ExporterType: "invalid",
	})
	require.Error(t, err)
	assert.Equal(t, "unsupported exporter type: invalid (supported: grpc, http)", err.Error())
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want string
	}{
		{"always sample", 1.0, sdktrace.AlwaysSample().Description()},
		{"above one clamps", 3, sdktrace.AlwaysSample().Description()},
		{"never sample", 0.0, sdktrace.NeverSample().Description()},
		{"ratio sample", 0.5, sdktrace.TraceIDRatioBased(0.5).Description()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, samplerFor(tt.rate).Description())
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.TelemetryConfig{
		Enabled:      true,
		ExporterType: "http",
		Endpoint:     "collector:4318",
		SamplingRate: 0.25,
		Environment:  "staging",
	}, "fetchdemo", "1.2.3")

	assert.Equal(t, Config{
		Enabled:        true,
		ServiceName:    "fetchdemo",
		ServiceVersion: "1.2.3",
		Environment:    "staging",
		ExporterType:   "http",
		Endpoint:       "collector:4318",
		SamplingRate:   0.25,
	}, cfg)
}

func TestProvider_ShutdownNil(t *testing.T) {
	var p *Provider
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, p.Shutdown(ctx))
}

func TestProvider_ConcurrentShutdown(t *testing.T) {
	p := &Provider{}
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Shutdown(context.Background()))
		}()
	}
	wg.Wait()
}

func TestTracer(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	ctx, span := Tracer("test-tracer").Start(context.Background(), "test-span")
	require.NotNil(t, span)
	span.End()
	assert.NotNil(t, trace.SpanFromContext(ctx))
}
