// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why a request did not produce the payload its caller wanted.
type Kind uint8

const (
	// KindNetwork covers connection and transport failures.
	KindNetwork Kind = iota + 1
	// KindDecode covers payloads that could not be parsed into the expected
	// shape, and local input that could not be parsed before dispatch.
	KindDecode
	// KindHTTPStatus is a caller-level interpretation of a completed request.
	KindHTTPStatus
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindHTTPStatus:
		return "http_status"
	default:
		return "unknown"
	}
}

// ErrorDetail is the failure carried by a Failed state.
type ErrorDetail struct {
	Kind    Kind
	Code    int // HTTP status, set for KindHTTPStatus only
	Message string
	Err     error
}

func (e ErrorDetail) Error() string {
	switch {
	case e.Kind == KindHTTPStatus:
		return fmt.Sprintf("%s: HTTP %d: %s", e.Kind, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

// Unwrap exposes the underlying transport or decode error untouched.
func (e ErrorDetail) Unwrap() error {
	return e.Err
}

// NetworkError wraps a transport failure.
func NetworkError(err error) ErrorDetail {
	return ErrorDetail{Kind: KindNetwork, Message: messageOf(err), Err: err}
}

// DecodeError wraps a payload or input parse failure.
func DecodeError(err error) ErrorDetail {
	return ErrorDetail{Kind: KindDecode, Message: messageOf(err), Err: err}
}

// StatusError describes a completed request whose status the caller rejects.
func StatusError(code int) ErrorDetail {
	return ErrorDetail{Kind: KindHTTPStatus, Code: code, Message: http.StatusText(code)}
}

// AsDetail classifies err. Errors that already carry an ErrorDetail keep it;
// anything else is treated as a transport failure.
func AsDetail(err error) ErrorDetail {
	var d ErrorDetail
	if errors.As(err, &d) {
		return d
	}
	var pd *ErrorDetail
	if errors.As(err, &pd) && pd != nil {
		return *pd
	}
	return NetworkError(err)
}

// IsKind reports whether err classifies as kind k under AsDetail.
func IsKind(err error, k Kind) bool {
	return err != nil && AsDetail(err).Kind == k
}

func messageOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
