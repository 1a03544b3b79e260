// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dispatch

import (
	"context"
	"fmt"

	"github.com/ManuGH/fetchdemo/internal/fetch"
	"github.com/ManuGH/fetchdemo/internal/metrics"
)

// Poster hands a function to the goroutine that owns a lifecycle.
// loop.Loop implements it.
type Poster interface {
	Post(fn func()) bool
}

// Op is a single dispatcher call producing a T.
type Op[T any] func(ctx context.Context) (T, error)

// Track drives one lifecycle through a request. It must be called from the
// owner's goroutine: set receives the InFlight state before Track returns,
// op runs on its own goroutine, and the settlement is posted back to the
// owner, where set receives Succeeded or Failed.
//
// op runs on a context that ignores cancellation of ctx, so it always
// settles. When the owner has gone away the settlement is dropped.
func Track[T any](ctx context.Context, owner Poster, set func(fetch.State[T]), op Op[T]) {
	set(fetch.Start[T]())
	ctx = context.WithoutCancel(ctx)

	go func() {
		next := settle(ctx, op)
		if !owner.Post(func() { set(next) }) {
			metrics.IncSettlementDropped()
		}
	}()
}

func settle[T any](ctx context.Context, op Op[T]) (next fetch.State[T]) {
	defer func() {
		if r := recover(); r != nil {
			next = fetch.Fail[T](fetch.NetworkError(fmt.Errorf("dispatch panicked: %v", r)))
		}
	}()
	v, err := op(ctx)
	if err != nil {
		return fetch.Fail[T](fetch.AsDetail(err))
	}
	return fetch.Succeed(v)
}
