// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// histogramCount reads the sample count of a plain histogram.
func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, h.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(operationsTotal.WithLabelValues("upload", "success"))
	RecordOperation("upload", "success", 250*time.Millisecond)
	assert.InDelta(t, before+1, testutil.ToFloat64(operationsTotal.WithLabelValues("upload", "success")), 1e-9)
}

func TestAddUploadBytes_IgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(uploadBytes)
	AddUploadBytes(0)
	AddUploadBytes(-5)
	assert.InDelta(t, before, testutil.ToFloat64(uploadBytes), 1e-9)
	AddUploadBytes(1024)
	assert.InDelta(t, before+1024, testutil.ToFloat64(uploadBytes), 1e-9)
}

func TestSessionCounters(t *testing.T) {
	stale := testutil.ToFloat64(staleResults.WithLabelValues("process"))
	RecordStaleResult("process")
	assert.InDelta(t, stale+1, testutil.ToFloat64(staleResults.WithLabelValues("process")), 1e-9)

	tr := testutil.ToFloat64(sessionTransitions.WithLabelValues("ready", "processing"))
	RecordTransition("ready", "processing")
	assert.InDelta(t, tr+1, testutil.ToFloat64(sessionTransitions.WithLabelValues("ready", "processing")), 1e-9)

	il := testutil.ToFloat64(illegalTransitions.WithLabelValues("idle", "process_succeeded"))
	RecordIllegalTransition("idle", "process_succeeded")
	assert.InDelta(t, il+1, testutil.ToFloat64(illegalTransitions.WithLabelValues("idle", "process_succeeded")), 1e-9)
}

func TestCompareMetrics(t *testing.T) {
	n := histogramCount(t, compareDrift)
	ObserveDrift(0.2)
	assert.Equal(t, n+1, histogramCount(t, compareDrift))

	resyncs := testutil.ToFloat64(compareResyncs)
	RecordResync()
	assert.InDelta(t, resyncs+1, testutil.ToFloat64(compareResyncs), 1e-9)

	accepted := testutil.ToFloat64(dropzoneFiles.WithLabelValues("accepted"))
	RecordDropzoneFile("accepted")
	assert.InDelta(t, accepted+1, testutil.ToFloat64(dropzoneFiles.WithLabelValues("accepted")), 1e-9)
}

func TestPromhttpExposure(t *testing.T) {
	RecordResync()
	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	res, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var b strings.Builder
	_, err = io.Copy(&b, res.Body)
	require.NoError(t, err)
	assert.Contains(t, b.String(), "unmark_compare_resyncs_total")
}
