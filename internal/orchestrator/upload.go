// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package orchestrator

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/ManuGH/unmark/internal/backend"
	xlog "github.com/ManuGH/unmark/internal/log"
	"github.com/ManuGH/unmark/internal/metrics"
	"github.com/ManuGH/unmark/internal/telemetry"
)

const tracerName = "unmark/orchestrator"

// UploadResult identifies the uploaded file on the server.
type UploadResult struct {
	ServerFilename string `json:"serverFilename"`
	PlayableURL    string `json:"playableUrl"`
}

// Uploader sends a chosen file to the backend and reports progress.
type Uploader struct {
	client *backend.Client
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewUploader returns an Uploader bound to client.
func NewUploader(client *backend.Client) *Uploader {
	return &Uploader{
		client: client,
		logger: xlog.WithComponent("upload"),
		tracer: telemetry.Tracer(tracerName),
	}
}

// Upload starts one transfer of f. A nil file fails immediately without
// touching the network. Calls are neither retried nor serialized.
func (u *Uploader) Upload(ctx context.Context, f *File) *Stream[UploadResult] {
	if f == nil {
		metrics.RecordOperation("upload", string(KindUserInput), 0)
		return failed[UploadResult](NewUserInput(ReasonNoFile, MsgSelectVideo))
	}
	s := newStream[UploadResult]()
	go u.run(ctx, f, s)
	return s
}

func (u *Uploader) run(ctx context.Context, f *File, s *Stream[UploadResult]) {
	start := time.Now()
	ctx, span := u.tracer.Start(ctx, "upload", trace.WithAttributes(telemetry.UploadAttributes(f.Name, f.Size)...))
	defer span.End()

	logger := xlog.WithContext(ctx, u.logger).With().
		Str(xlog.FieldFilename, f.Name).
		Int64("size", f.Size).
		Logger()
	logger.Info().Str(xlog.FieldEvent, "upload.start").Msg("upload started")

	finish := func(res UploadResult, fail *Failure) {
		if fail != nil {
			span.SetStatus(codes.Error, fail.Reason)
			span.SetAttributes(telemetry.ErrorAttributes(string(fail.Kind))...)
			metrics.RecordOperation("upload", string(fail.Kind), time.Since(start))
			logger.Warn().
				Str(xlog.FieldEvent, "upload.failed").
				Str(xlog.FieldReason, fail.Detail()).
				Msg(fail.Message)
			s.fail(fail)
			return
		}
		metrics.RecordOperation("upload", "success", time.Since(start))
		metrics.AddUploadBytes(f.Size)
		logger.Info().
			Str(xlog.FieldEvent, "upload.complete").
			Str(xlog.FieldServerFilename, res.ServerFilename).
			Dur("duration", time.Since(start)).
			Msg("upload complete")
		s.succeed(res)
	}

	body, err := f.Open()
	if err != nil {
		finish(UploadResult{}, &Failure{Kind: KindUserInput, Reason: ReasonNoFile, Message: MsgUploadFailed, Err: err})
		return
	}
	defer func() { _ = body.Close() }()

	var progress backend.ProgressFunc
	if f.Size >= 0 {
		s.progress(0)
		every := rate.Sometimes{Interval: time.Second}
		progress = func(sent, total int64) {
			if total <= 0 {
				return
			}
			pct := int(math.Round(float64(sent) / float64(total) * 100))
			if s.progress(pct) {
				every.Do(func() {
					logger.Debug().Int(xlog.FieldProgress, pct).Msg("upload progress")
				})
			}
		}
	}

	resp, err := u.client.Upload(ctx, f.Name, body, f.Size, progress)
	if err != nil {
		finish(UploadResult{}, classify(err, MsgUploadFailed))
		return
	}
	finish(UploadResult{ServerFilename: resp.Filename, PlayableURL: resp.VideoURL}, nil)
}
