// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	xlog "github.com/ManuGH/unmark/internal/log"
)

// Logging writes one access log line per request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := routePattern(r, r.URL.Path)
		logger := xlog.WithComponentFromContext(r.Context(), "api")
		ev := logger.Info()
		switch {
		case ww.Status() >= 500:
			ev = logger.Error()
		case route == "/healthz" || route == "/readyz" || route == "/metrics":
			ev = logger.Debug()
		}
		ev.Str(xlog.FieldEvent, "http.request").
			Str("http_method", r.Method).
			Str("route", route).
			Int(xlog.FieldStatus, statusOf(ww)).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}
