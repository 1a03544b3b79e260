// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ManuGH/fetchdemo/internal/telemetry"
)

func TestDispatch_AnnotatesCallerSpan(t *testing.T) {
	srv := newBackend(t)
	c := New(WithHTTPClient(srv.Client()))

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "ui.hello.world")
	_, err := c.GetText(ctx, srv.URL+"/hello?token=secret")
	require.NoError(t, err)
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	attrs := map[attribute.Key]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, OpGetText, attrs[telemetry.OperationKey])
	assert.Equal(t, srv.URL+"/hello", attrs[telemetry.URLKey], "query strings are not recorded")
}
