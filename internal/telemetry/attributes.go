// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/ManuGH/unmark/internal/geometry"
)

// Attribute keys shared by spans across packages.
const (
	SessionIDKey  = "session.id"
	GenerationKey = "session.generation"

	UploadFilenameKey = "upload.filename"
	UploadSizeKey     = "upload.size_bytes"
	ServerFileKey     = "upload.server_filename"

	ProcessMethodKey  = "process.method"
	ProcessQualityKey = "process.quality"
	RegionXKey        = "process.region.x"
	RegionYKey        = "process.region.y"
	RegionWidthKey    = "process.region.width"
	RegionHeightKey   = "process.region.height"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// UploadAttributes describes an upload span. A negative size is omitted.
func UploadAttributes(filename string, size int64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(UploadFilenameKey, filename)}
	if size >= 0 {
		attrs = append(attrs, attribute.Int64(UploadSizeKey, size))
	}
	return attrs
}

// ProcessAttributes describes a process span. A nil region adds no region keys.
func ProcessAttributes(serverFilename, method, quality string, region *geometry.Region) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(ServerFileKey, serverFilename),
		attribute.String(ProcessMethodKey, method),
		attribute.String(ProcessQualityKey, quality),
	}
	if region != nil {
		attrs = append(attrs,
			attribute.Int(RegionXKey, region.X),
			attribute.Int(RegionYKey, region.Y),
			attribute.Int(RegionWidthKey, region.Width),
			attribute.Int(RegionHeightKey, region.Height),
		)
	}
	return attrs
}

// SessionAttributes tags a span with the owning session.
func SessionAttributes(sessionID string, generation uint64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(SessionIDKey, sessionID),
		attribute.Int64(GenerationKey, int64(generation)),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
