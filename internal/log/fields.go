// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Request lifecycle fields
	FieldOperation = "operation"
	FieldOutcome   = "outcome"
	FieldKind      = "kind"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldPage      = "page"

	// Path / URL fields
	FieldPath    = "path"
	FieldURL     = "url"
	FieldBaseURL = "base_url"
	FieldMethod  = "method"
)
