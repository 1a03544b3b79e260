// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/fetchdemo/internal/persistence/sqlite"
	"github.com/ManuGH/fetchdemo/internal/user"
)

const schemaVersion = 1

// SqliteStore implements Store on modernc.org/sqlite.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens dbPath and migrates it to the current schema.
func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	if dbPath == "" {
		dbPath = sqlite.MemoryPath
	}
	db, err := sqlite.Open(dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	s := &SqliteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("user store: migration failed: %w", err)
	}
	return s, nil
}

func (s *SqliteStore) migrate() error {
	var current int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return err
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// AUTOINCREMENT keeps deleted ids from being handed out again.
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL,
		color_r    INTEGER NOT NULL CHECK (color_r BETWEEN 0 AND 255),
		color_g    INTEGER NOT NULL CHECK (color_g BETWEEN 0 AND 255),
		color_b    INTEGER NOT NULL CHECK (color_b BETWEEN 0 AND 255),
		created_at TEXT    NOT NULL
	);`
	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SqliteStore) Create(ctx context.Context, u user.User) (user.ID, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, color_r, color_g, color_b, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.Name, u.Color.R, u.Color.G, u.Color.B, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return user.ID(id), nil
}

func (s *SqliteStore) Get(ctx context.Context, id user.ID) (user.User, error) {
	var u user.User
	err := s.db.QueryRowContext(ctx,
		`SELECT name, color_r, color_g, color_b FROM users WHERE id = ?`, int64(id),
	).Scan(&u.Name, &u.Color.R, &u.Color.G, &u.Color.B)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, ErrNotFound
	}
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *SqliteStore) Delete(ctx context.Context, id user.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, int64(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}
