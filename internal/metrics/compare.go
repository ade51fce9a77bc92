// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	compareResyncs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "unmark",
		Name:      "compare_resyncs_total",
		Help:      "Follower seeks caused by drift above the sync threshold",
	})

	compareDrift = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "unmark",
		Name:      "compare_drift_seconds",
		Help:      "Observed playhead drift between original and processed media at each sync check",
		Buckets:   []float64{0.01, 0.03, 0.06, 0.12, 0.25, 0.5, 1, 2},
	})

	dropzoneFiles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unmark",
		Name:      "dropzone_files_total",
		Help:      "Files seen in the watched drop directory",
	}, []string{"result"}) // accepted|ignored
)

// ObserveDrift records one sync check.
func ObserveDrift(seconds float64) {
	compareDrift.Observe(seconds)
}

// RecordResync counts one follower snap.
func RecordResync() {
	compareResyncs.Inc()
}

// RecordDropzoneFile counts a file event in the drop directory.
func RecordDropzoneFile(result string) {
	dropzoneFiles.WithLabelValues(result).Inc()
}
