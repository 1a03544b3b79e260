// SPDX-License-Identifier: MIT

package telemetry

import (
	"github.com/ManuGH/fetchdemo/internal/fetch"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by UI actions and the reference backend.
const (
	PageKey       = "fetchdemo.page"
	ActionKey     = "fetchdemo.action"
	SessionKey    = "fetchdemo.session_id"
	OperationKey  = "dispatch.operation"
	URLKey        = "dispatch.url"
	LifecycleKey  = "lifecycle.state"
	ErrorKindKey  = "error.kind"
	HTTPStatusKey = "http.status_code"
	UserIDKey     = "user.id"
)

// ActionAttributes describes a UI action that starts a request.
func ActionAttributes(page, action, sessionID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(PageKey, page),
		attribute.String(ActionKey, action),
	}
	if sessionID != "" {
		attrs = append(attrs, attribute.String(SessionKey, sessionID))
	}
	return attrs
}

// DispatchAttributes describes an outgoing request.
func DispatchAttributes(op, url string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(OperationKey, op),
		attribute.String(URLKey, url),
	}
}

// RecordOutcome annotates span with how a lifecycle settled.
func RecordOutcome(span trace.Span, err error) {
	if err == nil {
		span.SetAttributes(attribute.String(LifecycleKey, fetch.StatusSucceeded.String()))
		span.SetStatus(codes.Ok, "")
		return
	}
	d := fetch.AsDetail(err)
	attrs := []attribute.KeyValue{
		attribute.String(LifecycleKey, fetch.StatusFailed.String()),
		attribute.String(ErrorKindKey, d.Kind.String()),
	}
	if d.Kind == fetch.KindHTTPStatus {
		attrs = append(attrs, attribute.Int(HTTPStatusKey, d.Code))
	}
	span.SetAttributes(attrs...)
	span.RecordError(err)
	span.SetStatus(codes.Error, d.Kind.String())
}
