// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/fetchdemo/internal/user"
)

// ErrNotFound is returned for ids the store does not hold.
var ErrNotFound = errors.New("user not found")

// Store persists users. Ids are assigned by the store, start at 1 and are
// never reused.
type Store interface {
	Create(ctx context.Context, u user.User) (user.ID, error)
	Get(ctx context.Context, id user.ID) (user.User, error)
	Delete(ctx context.Context, id user.ID) error
	Ping(ctx context.Context) error
	Close() error
}

// NewStore selects a store implementation. The sqlite backend accepts a file
// path or ":memory:".
func NewStore(kind, dbPath string) (Store, error) {
	switch kind {
	case "", "sqlite":
		return NewSqliteStore(dbPath)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown user store backend: %s (supported: sqlite, memory)", kind)
	}
}
