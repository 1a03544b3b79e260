// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fetch models the lifecycle of a single asynchronous network
// operation: not started, in flight, succeeded with a typed payload, or failed.
package fetch

import (
	"errors"
	"fmt"
)

// Status names the active variant of a State.
type Status uint8

const (
	StatusIdle Status = iota
	StatusInFlight
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusInFlight:
		return "in_flight"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// ErrIncompleteHandlers is returned when a handler set does not cover every variant.
var ErrIncompleteHandlers = errors.New("fetch: handlers must cover idle, in-flight, succeeded and failed")

// State is the lifecycle of one request whose successful result has type T.
// The zero value is Idle. States are values: every transition returns a new
// State and the fields are only reachable through the guarded accessors, so a
// payload can never be observed while a request is outstanding.
type State[T any] struct {
	status Status
	value  T
	err    ErrorDetail
}

// Idle returns the initial state.
func Idle[T any]() State[T] {
	return State[T]{}
}

// Start returns the in-flight state. Whatever the previous state held is gone.
func Start[T any]() State[T] {
	return State[T]{status: StatusInFlight}
}

// Succeed returns the succeeded state carrying v.
func Succeed[T any](v T) State[T] {
	return State[T]{status: StatusSucceeded, value: v}
}

// Fail returns the failed state carrying detail.
func Fail[T any](detail ErrorDetail) State[T] {
	return State[T]{status: StatusFailed, err: detail}
}

// Status reports the active variant.
func (s State[T]) Status() Status {
	return s.status
}

// Value returns the payload only when the state is Succeeded.
func (s State[T]) Value() (T, bool) {
	if s.status != StatusSucceeded {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Err returns the failure only when the state is Failed.
func (s State[T]) Err() (ErrorDetail, bool) {
	if s.status != StatusFailed {
		return ErrorDetail{}, false
	}
	return s.err, true
}

// Pending reports whether a request is outstanding.
func (s State[T]) Pending() bool {
	return s.status == StatusInFlight
}

// Settled reports whether the state is terminal (Succeeded or Failed).
func (s State[T]) Settled() bool {
	return s.status == StatusSucceeded || s.status == StatusFailed
}

func (s State[T]) String() string {
	switch s.status {
	case StatusSucceeded:
		return fmt.Sprintf("succeeded(%v)", s.value)
	case StatusFailed:
		return fmt.Sprintf("failed(%s)", s.err.Error())
	default:
		return s.status.String()
	}
}

// Handlers is a side-effect dispatch table over the four variants.
type Handlers[T any] struct {
	Idle      func()
	InFlight  func()
	Succeeded func(T)
	Failed    func(ErrorDetail)
}

func (h Handlers[T]) complete() bool {
	return h.Idle != nil && h.InFlight != nil && h.Succeeded != nil && h.Failed != nil
}

// Match runs the handler of the active variant. All four handlers are
// required; an incomplete set is rejected before anything runs, whichever
// variant happens to be active.
func (s State[T]) Match(h Handlers[T]) error {
	if !h.complete() {
		return ErrIncompleteHandlers
	}
	switch s.status {
	case StatusIdle:
		h.Idle()
	case StatusInFlight:
		h.InFlight()
	case StatusSucceeded:
		h.Succeeded(s.value)
	case StatusFailed:
		h.Failed(s.err)
	default:
		return fmt.Errorf("fetch: unknown %s", s.status)
	}
	return nil
}

// Cases is a value-producing dispatch table over the four variants.
type Cases[T, R any] struct {
	Idle      func() R
	InFlight  func() R
	Succeeded func(T) R
	Failed    func(ErrorDetail) R
}

// Fold maps s to a value through the case of its active variant. It panics
// with ErrIncompleteHandlers when any case is missing or the status is not
// one of the four variants.
func Fold[T, R any](s State[T], c Cases[T, R]) R {
	if c.Idle == nil || c.InFlight == nil || c.Succeeded == nil || c.Failed == nil {
		panic(ErrIncompleteHandlers)
	}
	switch s.status {
	case StatusIdle:
		return c.Idle()
	case StatusInFlight:
		return c.InFlight()
	case StatusSucceeded:
		return c.Succeeded(s.value)
	case StatusFailed:
		return c.Failed(s.err)
	default:
		panic(fmt.Errorf("%w: no case for %s", ErrIncompleteHandlers, s.status))
	}
}
