// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/telemetry_logger/internal/config"
	"github.com/relabs-tech/telemetry_logger/internal/metrics"
	"github.com/relabs-tech/telemetry_logger/internal/telemetry"
)

type queue struct {
	lines []string
}

func (q *queue) Poll() (string, bool) {
	if len(q.lines) == 0 {
		return "", false
	}
	l := q.lines[0]
	q.lines = q.lines[1:]
	return l, true
}

type recorder struct {
	rows    []telemetry.Record
	samples []telemetry.Sample
}

func (r *recorder) Append(rec telemetry.Record) error {
	r.rows = append(r.rows, rec)
	return nil
}

func (r *recorder) PublishSample(s telemetry.Sample) error {
	r.samples = append(r.samples, s)
	return nil
}

var interval = []string{
	"Date: 2024-05-01",
	"Temperature: 20.0 C",
	"Humidity: 45.0 %",
	"Pressure: 1013.25 hPa",
	"Latitude: 52.520008",
	"Longitude: 13.404954",
	"Altitude: 34.10 m",
	"Speed: 12.40 km/h",
	"Time: 10:00:01",
	"Latitude: 52.520108",
	"Longitude: 13.405054",
	"Time: 10:00:02",
	"Bogus line",
}

func runAll(p *pipeline, n int) {
	for range n {
		p.step()
	}
}

func newTestPipeline(lines ...string) (*pipeline, *recorder) {
	rec := &recorder{}
	p := newPipeline(&queue{lines: append([]string(nil), lines...)}, rec, metrics.New())
	p.samples = rec
	return p, rec
}

func TestPipeline_StepIsNoOpWithoutLine(t *testing.T) {
	p, rec := newTestPipeline()
	p.step()
	assert.Zero(t, p.session.Lines())
	assert.Empty(t, rec.rows)
}

func TestPipeline_PersistsAndPublishes(t *testing.T) {
	p, rec := newTestPipeline(interval...)
	runAll(p, len(interval)+3)

	require.Len(t, rec.rows, 2)
	assert.Equal(t, "10:00:01", rec.rows[0].Get(telemetry.Time))
	assert.Equal(t, "10:00:02", rec.rows[1].Get(telemetry.Time))
	// one sample per complete line from Time onward, bogus line excluded
	assert.Len(t, rec.samples, 4)
	assert.Equal(t, len(interval), p.session.Lines())
}

func TestWeb_Endpoints(t *testing.T) {
	p, _ := newTestPipeline(interval...)
	runAll(p, len(interval))

	cfg := config.Default()
	srv := httptest.NewServer(newWebMux(p, cfg))
	defer srv.Close()

	getJSON := func(path string, v any) {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}

	var record recordResponse
	getJSON("/api/record", &record)
	assert.Equal(t, "10:00:02", record.Record.Get(telemetry.Time))
	assert.Equal(t, "10:00:02", record.LastCommitted)
	assert.Equal(t, "Received unexpected message: Bogus line", record.Advisory)

	var series seriesResponse
	getJSON("/api/series", &series)
	assert.Len(t, series.Timestamps, 4)
	assert.Equal(t, "10:00:01", series.Timestamps[0])
	assert.Equal(t, []float64{20, 20, 20, 20}, series.Temperature)

	var route routeResponse
	getJSON("/api/route", &route)
	assert.Len(t, route.Coordinates, 2)
	assert.True(t, route.Drawable)

	var status statusResponse
	getJSON("/api/status", &status)
	assert.Equal(t, len(interval), status.Lines)
	assert.Equal(t, 4, status.Samples)

	resp, err := http.Get(srv.URL + "/api/route.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWeb_RouteImageNeedsTwoPoints(t *testing.T) {
	p, _ := newTestPipeline("Latitude: 52.520008", "Longitude: 13.404954")
	runAll(p, 2)

	srv := httptest.NewServer(newWebMux(p, config.Default()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/route.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestWeb_WebsocketStreamsOutcomes(t *testing.T) {
	p, _ := newTestPipeline("Time: 10:00:01", "Humidity: nan")
	p.hub = newHub()

	srv := httptest.NewServer(newWebMux(p, config.Default()))
	defer srv.Close()
	defer p.hub.closeAll()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return p.hub.count() == 1 }, 5*time.Second, 5*time.Millisecond)

	runAll(p, 2)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first, second map[string]any
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))

	assert.Equal(t, "Time: 10:00:01", first["line"])
	assert.NotNil(t, first["committed"])
	assert.Equal(t, false, second["accepted"])
	assert.Equal(t, "Humidity", second["reading"].(map[string]any)["field"])
}

func TestFormatRecordAndSample(t *testing.T) {
	var r telemetry.Record
	require.NoError(t, json.Unmarshal([]byte(`{"Time":"10:00:01","Speed":"4.50"}`), &r))
	payload, err := json.Marshal(r)
	require.NoError(t, err)

	line, err := formatRecord(payload)
	require.NoError(t, err)
	assert.Contains(t, line, "10:00:01")
	assert.Contains(t, line, "v=4.50")

	ts, _ := telemetry.ParseClock("10:00:01")
	payload, err = json.Marshal(telemetry.Sample{Timestamp: ts, Temperature: 20.5})
	require.NoError(t, err)
	line, err = formatSample(payload)
	require.NoError(t, err)
	assert.Contains(t, line, "10:00:01")
	assert.Contains(t, line, "T= 20.50")

	_, err = formatRecord([]byte("not json"))
	assert.Error(t, err)
}

func TestPrintOutcome(t *testing.T) {
	s := telemetry.NewSession(telemetry.SinkFunc(func(telemetry.Record) error { return nil }), nil)
	var buf bytes.Buffer
	for _, l := range append(append([]string(nil), interval[:9]...), "Speed: 0.00", "Pressure: high", "Bogus line") {
		printOutcome(&buf, s.Process(l))
	}

	out := buf.String()
	assert.Contains(t, out, "[LINE]  Temperature  20.0 C")
	assert.Contains(t, out, "[REC ]  [2024-05-01 10:00:01")
	assert.Contains(t, out, "[SMPL]  10:00:01")
	assert.Contains(t, out, "[SKIP]  Speed: 0.00 (placeholder)")
	assert.Contains(t, out, "[????]  Bogus line")
	assert.Contains(t, out, "[WARN]  malformed Pressure value")
}

func TestRunLogger_RequiresConfig(t *testing.T) {
	if config.Get() != nil {
		t.Skip("global config already initialized")
	}
	assert.EqualError(t, RunLogger(LoggerOptions{Simulate: true}), "config not initialized")
	assert.EqualError(t, RunConsoleMQTT(), "config not initialized")
}
