// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unmark",
		Name:      "operations_total",
		Help:      "Terminal outcomes of upload and process calls",
	}, []string{
		"operation", // upload|process
		"result",    // success|user_input|transport|server|protocol
	})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "unmark",
		Name:      "operation_duration_seconds",
		Help:      "Wall time from request start to terminal outcome",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
	}, []string{"operation"})

	uploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "unmark",
		Name:      "upload_bytes_total",
		Help:      "Bytes of video handed to successful uploads",
	})

	staleResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unmark",
		Name:      "stale_results_total",
		Help:      "Terminal events discarded because the session moved on",
	}, []string{"operation"})

	sessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unmark",
		Name:      "session_transitions_total",
		Help:      "Session state machine transitions",
	}, []string{"from", "to"})

	illegalTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unmark",
		Name:      "session_illegal_transitions_total",
		Help:      "Events rejected by the session state machine",
	}, []string{"state", "event"})
)

// RecordOperation records the terminal outcome of an upload or process call.
func RecordOperation(operation, result string, elapsed time.Duration) {
	operationsTotal.WithLabelValues(operation, result).Inc()
	operationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// AddUploadBytes counts bytes of a completed upload.
func AddUploadBytes(n int64) {
	if n > 0 {
		uploadBytes.Add(float64(n))
	}
}

// RecordStaleResult counts a discarded terminal event.
func RecordStaleResult(operation string) {
	staleResults.WithLabelValues(operation).Inc()
}

// RecordTransition counts a session state change.
func RecordTransition(from, to string) {
	sessionTransitions.WithLabelValues(from, to).Inc()
}

// RecordIllegalTransition counts an event the machine refused.
func RecordIllegalTransition(state, event string) {
	illegalTransitions.WithLabelValues(state, event).Inc()
}
