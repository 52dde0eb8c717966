// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/telemetry_logger/internal/telemetry"
)

func TestMetrics_ObserveSession(t *testing.T) {
	m := New()
	fail := true
	s := telemetry.NewSession(telemetry.SinkFunc(func(telemetry.Record) error {
		if fail {
			fail = false
			return errors.New("disk full")
		}
		return nil
	}), nil)

	for _, l := range []string{
		"Time: 10:00:01",
		"Humidity: nan",
		"Latitude: 52.520008",
		"Temperature: warm",
		"Humidity: 40.0 %",
		"Pressure: 1013.25 hPa",
		"Altitude: 30.00 m",
		"Speed: 2.00",
		"garbage",
	} {
		m.Observe(s.Process(l))
	}

	assert.Equal(t, 7.0, testutil.ToFloat64(m.Lines.WithLabelValues(OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lines.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lines.WithLabelValues(OutcomeUnrecognized)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SinkErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoutePoints.WithLabelValues("Latitude")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Malformed.WithLabelValues("Temperature")))
	assert.Zero(t, testutil.ToFloat64(m.Samples))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Commits.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "telemetry_records_committed_total 1")
}
