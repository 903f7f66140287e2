// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/notesput/internal/platform/metrics"
)

func TestRecord(t *testing.T) {
	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	m.RecordGateDecision(metrics.DecisionRedirect)
	m.RecordGateDecision(metrics.DecisionRedirect)
	m.RecordAuthAction("sign_in", metrics.OutcomeRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GateDecisions.WithLabelValues(metrics.DecisionRedirect)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthActions.WithLabelValues("sign_in", metrics.OutcomeRejected)))

	recorder := httptest.NewRecorder()
	metrics.Handler(registry).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "notesput_session_gate_decisions_total")
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.RecordGateDecision(metrics.DecisionAllowed)
		m.RecordAuthAction("sign_up", metrics.OutcomeSuccess)
	})
}
