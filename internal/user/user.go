// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package user holds the demo's payload entity and the parsers for the form
// fields it is built from.
package user

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ManuGH/fetchdemo/internal/fetch"
)

// RGB is a 24-bit colour.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex renders c as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// CSS renders c as "rgb(r, g, b)".
func (c RGB) CSS() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// User is the entity the backend stores. The backend is the source of truth;
// nothing here is persisted.
type User struct {
	Name  string `json:"name"`
	Color RGB    `json:"color"`
}

// ID identifies a user on the backend.
type ID uint32

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

var (
	errColorLength = errors.New("colour must be 7 characters in the form #rrggbb")
	errColorPrefix = errors.New("colour must start with '#'")
	errIDEmpty     = errors.New("id is empty")
)

// ParseColor parses "#rrggbb". Failures are Decode errors.
func ParseColor(s string) (RGB, error) {
	if len(s) != 7 {
		return RGB{}, fetch.DecodeError(fmt.Errorf("parse colour %q: %w", s, errColorLength))
	}
	if s[0] != '#' {
		return RGB{}, fetch.DecodeError(fmt.Errorf("parse colour %q: %w", s, errColorPrefix))
	}
	b, err := hex.DecodeString(s[1:])
	if err != nil {
		return RGB{}, fetch.DecodeError(fmt.Errorf("parse colour %q: %w", s, err))
	}
	return RGB{R: b[0], G: b[1], B: b[2]}, nil
}

// ParseID parses an unsigned 32-bit user id. Failures are Decode errors.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fetch.DecodeError(errIDEmpty)
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fetch.DecodeError(fmt.Errorf("parse id: %w", err))
	}
	return ID(n), nil
}
