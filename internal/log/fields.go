// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID  = "session_id"
	FieldRequestID  = "request_id"
	FieldGeneration = "generation"
	FieldTraceID    = "trace_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldOperation = "operation"

	// Media fields
	FieldFilename       = "filename"
	FieldServerFilename = "server_filename"
	FieldMethod         = "method"
	FieldQuality        = "quality"
	FieldRegion         = "region"
	FieldProgress       = "progress"
	FieldDrift          = "drift"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
	FieldReason   = "reason"

	// Path / URL fields
	FieldPath    = "path"
	FieldBaseURL = "base_url"
	FieldURL     = "url"
	FieldStatus  = "status"
)
