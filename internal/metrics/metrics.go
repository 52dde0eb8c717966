// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package metrics exposes ingestion counters in Prometheus format.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/telemetry_logger/internal/telemetry"
)

const namespace = "telemetry"

// Line outcome labels.
const (
	OutcomeAccepted     = "accepted"
	OutcomeRejected     = "sentinel_rejected"
	OutcomeUnrecognized = "unrecognized"
)

// Metrics is the set of counters updated once per processed line.
type Metrics struct {
	registry *prometheus.Registry

	Lines         *prometheus.CounterVec
	Commits       prometheus.Counter
	Samples       prometheus.Counter
	RoutePoints   *prometheus.CounterVec
	Malformed     *prometheus.CounterVec
	SinkErrors    prometheus.Counter
	LastCommitted prometheus.Gauge
}

// New creates the counters on a private registry together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_total",
			Help:      "Protocol lines processed, by outcome",
		}, []string{"outcome"}),
		Commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_committed_total",
			Help:      "Record snapshots persisted",
		}),
		Samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Samples appended to the time series",
		}),
		RoutePoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_points_total",
			Help:      "Coordinates appended to the route buffer, by axis",
		}, []string{"field"}),
		Malformed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_values_total",
			Help:      "Values that could not be parsed as numbers, by field",
		}, []string{"field"}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed record commits",
		}),
		LastCommitted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_commit_timestamp_seconds",
			Help:      "Wall clock time of the last committed record",
		}),
	}

	m.registry.MustRegister(
		m.Lines, m.Commits, m.Samples, m.RoutePoints, m.Malformed, m.SinkErrors, m.LastCommitted,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one line outcome.
func (m *Metrics) Observe(o telemetry.Outcome) {
	switch {
	case o.Reading == nil:
		m.Lines.WithLabelValues(OutcomeUnrecognized).Inc()
	case o.Accepted:
		m.Lines.WithLabelValues(OutcomeAccepted).Inc()
	default:
		m.Lines.WithLabelValues(OutcomeRejected).Inc()
	}

	if o.Committed != nil {
		m.Commits.Inc()
		m.LastCommitted.SetToCurrentTime()
	}
	if o.Sample != nil {
		m.Samples.Inc()
	}
	if o.RoutePoint {
		m.RoutePoints.WithLabelValues(o.Reading.Field.String()).Inc()
	}

	if o.Err == nil {
		return
	}
	for _, err := range unwrapAll(o.Err) {
		var mv *telemetry.MalformedValueError
		var ule *telemetry.UnrecognizedLineError
		switch {
		case errors.As(err, &mv):
			m.Malformed.WithLabelValues(mv.Field.String()).Inc()
		case errors.As(err, &ule):
		default:
			m.SinkErrors.Inc()
		}
	}
}

// unwrapAll flattens an errors.Join tree one level deep.
func unwrapAll(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests, extra collectors).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
