// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/unmark/internal/backend"
	"github.com/ManuGH/unmark/internal/geometry"
	xlog "github.com/ManuGH/unmark/internal/log"
	"github.com/ManuGH/unmark/internal/metrics"
	"github.com/ManuGH/unmark/internal/telemetry"
)

// Inpainting methods understood by the backend.
const (
	MethodTelea = "telea"
	MethodNS    = "ns"
)

// Quality presets, fastest first.
var QualityPresets = []string{"fast", "balanced", "better", "best", "ultra"}

const (
	DefaultMethod  = MethodTelea
	DefaultQuality = "ultra"
)

// Request is one processing submission.
type Request struct {
	// Filename is the server filename returned by the upload.
	Filename string
	Region   *geometry.Region
	// RequireRegion rejects a nil or empty Region before any network call.
	RequireRegion bool
	Method        string
	Quality       string
}

// Validate returns the user input failure that would stop the request, or nil.
func (r Request) Validate() *Failure {
	if r.Filename == "" {
		return NewUserInput(ReasonMissingUpload, MsgUploadFirst)
	}
	if r.RequireRegion && (r.Region == nil || r.Region.Empty()) {
		return NewUserInput(ReasonMissingRegion, MsgDrawRegion)
	}
	return nil
}

func (r Request) wire() backend.ProcessRequest {
	out := backend.ProcessRequest{
		Filename: r.Filename,
		Method:   r.Method,
		Quality:  r.Quality,
	}
	if out.Method == "" {
		out.Method = DefaultMethod
	}
	if out.Quality == "" {
		out.Quality = DefaultQuality
	}
	if r.Region != nil && !r.Region.Empty() {
		out.ROI = &backend.ROI{X: r.Region.X, Y: r.Region.Y, Width: r.Region.Width, Height: r.Region.Height}
	}
	return out
}

// ProcessResult locates the processed video.
type ProcessResult struct {
	ResultPlayableURL string `json:"resultPlayableUrl"`
	DownloadURL       string `json:"downloadUrl"`
	DownloadFilename  string `json:"downloadFilename"`
}

// Processor submits uploaded files for watermark removal.
type Processor struct {
	client *backend.Client
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewProcessor returns a Processor bound to client.
func NewProcessor(client *backend.Client) *Processor {
	return &Processor{
		client: client,
		logger: xlog.WithComponent("process"),
		tracer: telemetry.Tracer(tracerName),
	}
}

// Process validates req and submits it. The stream carries no progress, only
// the terminal event. No timeout is applied beyond ctx.
func (p *Processor) Process(ctx context.Context, req Request) *Stream[ProcessResult] {
	if fail := req.Validate(); fail != nil {
		metrics.RecordOperation("process", string(fail.Kind), 0)
		return failed[ProcessResult](fail)
	}
	s := newStream[ProcessResult]()
	go p.run(ctx, req.wire(), req.Region, s)
	return s
}

func (p *Processor) run(ctx context.Context, in backend.ProcessRequest, region *geometry.Region, s *Stream[ProcessResult]) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "process",
		trace.WithAttributes(telemetry.ProcessAttributes(in.Filename, in.Method, in.Quality, region)...))
	defer span.End()

	ev := xlog.WithContext(ctx, p.logger).With().
		Str(xlog.FieldServerFilename, in.Filename).
		Str(xlog.FieldMethod, in.Method).
		Str(xlog.FieldQuality, in.Quality)
	if region != nil {
		ev = ev.Stringer(xlog.FieldRegion, region)
	}
	logger := ev.Logger()
	logger.Info().Str(xlog.FieldEvent, "process.start").Msg("processing started")

	resp, err := p.client.Process(ctx, in)
	if err != nil {
		fail := classify(err, MsgProcessFailed)
		span.SetStatus(codes.Error, fail.Reason)
		span.SetAttributes(telemetry.ErrorAttributes(string(fail.Kind))...)
		metrics.RecordOperation("process", string(fail.Kind), time.Since(start))
		logger.Warn().
			Str(xlog.FieldEvent, "process.failed").
			Str(xlog.FieldReason, fail.Detail()).
			Msg(fail.Message)
		s.fail(fail)
		return
	}

	metrics.RecordOperation("process", "success", time.Since(start))
	logger.Info().
		Str(xlog.FieldEvent, "process.complete").
		Str("output", resp.OutputFilename).
		Dur("duration", time.Since(start)).
		Msg("processing complete")
	s.succeed(ProcessResult{
		ResultPlayableURL: resp.VideoURL,
		DownloadURL:       resp.DownloadURL,
		DownloadFilename:  resp.OutputFilename,
	})
}
