// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dispatch

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ManuGH/fetchdemo/internal/fetch"
)

// Response is a completed request. The body has been read in full, so a
// Response stays valid after the connection is gone.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Text returns the body as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// CheckStatus is the caller-side status policy: any non-2xx response becomes
// an HTTPStatus failure.
func CheckStatus(r *Response) error {
	if r == nil {
		return fetch.NetworkError(errNoResponse)
	}
	if !r.OK() {
		return fetch.StatusError(r.StatusCode)
	}
	return nil
}

// DecodeJSON decodes the body of r into a T.
func DecodeJSON[T any](r *Response) (T, error) {
	var v T
	if r == nil {
		return v, fetch.NetworkError(errNoResponse)
	}
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return v, fetch.DecodeError(fmt.Errorf("decode JSON body (HTTP %d): %w", r.StatusCode, err))
	}
	return v, nil
}
