// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ClockLayout is the layout of the Time field.
const ClockLayout = "15:04:05"

// Sample is one fully populated data point. Timestamp carries only the clock
// time; all samples of a session are assumed to share a calendar day.
type Sample struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure"`
	Altitude    float64   `json:"altitude"`
	Speed       float64   `json:"speed"`
}

// sampleFields must all be set before a Sample is produced.
var sampleFields = []Field{Time, Temperature, Humidity, Pressure, Altitude, Speed}

// MalformedValueError reports a field whose text could not be read as a number
// (or, for Time, as a clock time).
type MalformedValueError struct {
	Field Field
	Value string
	Err   error
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("malformed %s value %q: %v", e.Field, e.Value, e.Err)
}

func (e *MalformedValueError) Unwrap() error { return e.Err }

// errNotFinite rejects NaN and Inf, which cannot be plotted or encoded as JSON.
var errNotFinite = errors.New("not a finite number")

// Magnitude returns the leading numeric token of a value such as "23.5 C".
func Magnitude(value string) (float64, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// ParseClock parses an "HH:MM:SS" Time value.
func ParseClock(value string) (time.Time, error) {
	return time.Parse(ClockLayout, strings.TrimSpace(value))
}

// Series holds the time-indexed samples of a session. It grows without bound
// and performs no dedup: one Sample is appended per observed complete record.
type Series struct {
	samples []Sample
}

// Observe appends a Sample if every sample field of r is set.
// It returns false with a nil error when the record is incomplete.
func (s *Series) Observe(r Record) (bool, error) {
	for _, f := range sampleFields {
		if r.Get(f) == "" {
			return false, nil
		}
	}

	ts, err := ParseClock(r.Get(Time))
	if err != nil {
		return false, &MalformedValueError{Field: Time, Value: r.Get(Time), Err: err}
	}

	var metrics [5]float64
	for i, f := range sampleFields[1:] {
		v, err := Magnitude(r.Get(f))
		if err != nil {
			return false, &MalformedValueError{Field: f, Value: r.Get(f), Err: err}
		}
		metrics[i] = v
	}

	s.samples = append(s.samples, Sample{
		Timestamp:   ts,
		Temperature: metrics[0],
		Humidity:    metrics[1],
		Pressure:    metrics[2],
		Altitude:    metrics[3],
		Speed:       metrics[4],
	})
	return true, nil
}

// Len returns the number of samples.
func (s *Series) Len() int { return len(s.samples) }

// Samples returns a copy of all samples in arrival order.
func (s *Series) Samples() []Sample {
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Timestamps returns the time axis shared by every metric series.
func (s *Series) Timestamps() []time.Time {
	out := make([]time.Time, len(s.samples))
	for i, smp := range s.samples {
		out[i] = smp.Timestamp
	}
	return out
}

// Values returns the series of one metric, parallel to Timestamps.
// Fields that are not sample metrics return nil.
func (s *Series) Values(f Field) []float64 {
	var pick func(Sample) float64
	switch f {
	case Temperature:
		pick = func(x Sample) float64 { return x.Temperature }
	case Humidity:
		pick = func(x Sample) float64 { return x.Humidity }
	case Pressure:
		pick = func(x Sample) float64 { return x.Pressure }
	case Altitude:
		pick = func(x Sample) float64 { return x.Altitude }
	case Speed:
		pick = func(x Sample) float64 { return x.Speed }
	default:
		return nil
	}
	out := make([]float64, len(s.samples))
	for i, smp := range s.samples {
		out[i] = pick(smp)
	}
	return out
}
