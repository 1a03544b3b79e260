// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fetch

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// variants counts how many handlers fire for s; it must always be exactly one.
func variants[T any](t *testing.T, s State[T]) (fired int, which Status) {
	t.Helper()
	err := s.Match(Handlers[T]{
		Idle:      func() { fired++; which = StatusIdle },
		InFlight:  func() { fired++; which = StatusInFlight },
		Succeeded: func(T) { fired++; which = StatusSucceeded },
		Failed:    func(ErrorDetail) { fired++; which = StatusFailed },
	})
	require.NoError(t, err)
	return fired, which
}

func TestState_ZeroValueIsIdle(t *testing.T) {
	var s State[string]
	assert.Equal(t, StatusIdle, s.Status())
	assert.Equal(t, Idle[string](), s)

	_, ok := s.Value()
	assert.False(t, ok)
	_, ok = s.Err()
	assert.False(t, ok)
}

func TestState_ExactlyOneVariantAcrossTransitions(t *testing.T) {
	detail := NetworkError(io.ErrUnexpectedEOF)
	steps := []struct {
		name string
		next func(State[int]) State[int]
		want Status
	}{
		{"start", func(State[int]) State[int] { return Start[int]() }, StatusInFlight},
		{"succeed", func(State[int]) State[int] { return Succeed(7) }, StatusSucceeded},
		{"restart", func(State[int]) State[int] { return Start[int]() }, StatusInFlight},
		{"fail", func(State[int]) State[int] { return Fail[int](detail) }, StatusFailed},
		{"restart after failure", func(State[int]) State[int] { return Start[int]() }, StatusInFlight},
		{"idle", func(State[int]) State[int] { return Idle[int]() }, StatusIdle},
		{"succeed from idle", func(State[int]) State[int] { return Succeed(0) }, StatusSucceeded},
	}

	s := Idle[int]()
	for _, step := range steps {
		s = step.next(s)
		fired, which := variants(t, s)
		assert.Equal(t, 1, fired, step.name)
		assert.Equal(t, step.want, which, step.name)
		assert.Equal(t, step.want, s.Status(), step.name)
	}
}

func TestState_StartDiscardsPreviousPayload(t *testing.T) {
	s := Succeed("hello")
	v, ok := s.Value()
	require.True(t, ok)
	assert.Equal(t, "hello", v)

	s = Start[string]()
	v, ok = s.Value()
	assert.False(t, ok)
	assert.Empty(t, v)
	assert.True(t, s.Pending())

	s = Fail[string](DecodeError(errors.New("bad json")))
	_, ok = s.Err()
	require.True(t, ok)

	s = Start[string]()
	_, ok = s.Err()
	assert.False(t, ok, "error must not survive a restart")
	assert.Equal(t, Start[string](), s)
}

func TestState_GuardedAccessors(t *testing.T) {
	failed := Fail[int](StatusError(404))
	_, ok := failed.Value()
	assert.False(t, ok)
	d, ok := failed.Err()
	require.True(t, ok)
	assert.Equal(t, KindHTTPStatus, d.Kind)
	assert.Equal(t, 404, d.Code)
	assert.True(t, failed.Settled())
	assert.False(t, failed.Pending())
}

func TestMatch_RejectsIncompleteHandlers(t *testing.T) {
	called := false
	err := Idle[int]().Match(Handlers[int]{
		Idle:     func() { called = true },
		InFlight: func() {},
		// Succeeded and Failed missing
	})
	require.ErrorIs(t, err, ErrIncompleteHandlers)
	assert.False(t, called, "no handler may run when the set is incomplete")
}

func TestFold(t *testing.T) {
	render := Cases[string, string]{
		Idle:      func() string { return "Not fetching" },
		InFlight:  func() string { return "Fetching" },
		Succeeded: func(s string) string { return s },
		Failed:    func(ErrorDetail) string { return "Failed to fetch" },
	}

	assert.Equal(t, "Not fetching", Fold(Idle[string](), render))
	assert.Equal(t, "Fetching", Fold(Start[string](), render))
	assert.Equal(t, "Hello, world!", Fold(Succeed("Hello, world!"), render))
	assert.Equal(t, "Failed to fetch", Fold(Fail[string](NetworkError(io.EOF)), render))
}

func TestFold_PanicsOnMissingCase(t *testing.T) {
	assert.PanicsWithValue(t, ErrIncompleteHandlers, func() {
		Fold(Succeed(1), Cases[int, int]{Succeeded: func(v int) int { return v }})
	})
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "in_flight", StatusInFlight.String())
	assert.Equal(t, "succeeded", StatusSucceeded.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "status(9)", Status(9).String())
}

func TestFoldAndMatch_RejectUnknownStatus(t *testing.T) {
	s := State[int]{status: Status(9)}
	all := Cases[int, string]{
		Idle:      func() string { return "idle" },
		InFlight:  func() string { return "in flight" },
		Succeeded: func(int) string { return "ok" },
		Failed:    func(ErrorDetail) string { return "failed" },
	}

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		Fold(s, all)
	}()
	err, ok := recovered.(error)
	require.True(t, ok, "Fold must panic with an error, got %v", recovered)
	assert.ErrorIs(t, err, ErrIncompleteHandlers)
	assert.Contains(t, err.Error(), "status(9)")

	matchErr := s.Match(Handlers[int]{
		Idle:      func() { t.Error("idle handler must not run") },
		InFlight:  func() {},
		Succeeded: func(int) {},
		Failed:    func(ErrorDetail) {},
	})
	assert.ErrorContains(t, matchErr, "unknown status(9)")
}
