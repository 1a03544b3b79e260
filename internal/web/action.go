// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package web

import (
	"context"

	"github.com/ManuGH/fetchdemo/internal/dispatch"
	"github.com/ManuGH/fetchdemo/internal/endpoint"
	"github.com/ManuGH/fetchdemo/internal/fetch"
	"github.com/ManuGH/fetchdemo/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

var tracer = telemetry.Tracer("github.com/ManuGH/fetchdemo/internal/web")

// actionEnv is everything a page action needs to start a request. Actions run
// on the session loop, which is also the owner settlements are posted to.
type actionEnv struct {
	ctx     context.Context
	page    string
	session string
	owner   dispatch.Poster
	client  *dispatch.Client
	urls    endpoint.Set
}

// track wraps dispatch.Track in a span covering the whole lifecycle, from
// InFlight to settlement.
func track[T any](env actionEnv, action string, set func(fetch.State[T]), op dispatch.Op[T]) {
	ctx, span := tracer.Start(env.ctx, "ui."+env.page+"."+action,
		trace.WithAttributes(telemetry.ActionAttributes(env.page, action, env.session)...))
	dispatch.Track(ctx, env.owner, set, func(ctx context.Context) (T, error) {
		defer span.End()
		v, err := op(ctx)
		telemetry.RecordOutcome(span, err)
		return v, err
	})
}
