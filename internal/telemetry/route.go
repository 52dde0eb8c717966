// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
)

// Coordinate is one point of the travelled route, in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Route keeps the accepted latitude and longitude readings. The two sequences
// grow independently because the protocol sends them on separate lines; they
// are only parallel up to the shorter one.
type Route struct {
	latitudes  []float64
	longitudes []float64
}

// Observe appends an accepted Latitude or Longitude reading. Other fields are
// ignored. Values may use decimal degrees ("52.520008"), DMS or NMEA notation.
func (rt *Route) Observe(r Reading) (bool, error) {
	if r.Field != Latitude && r.Field != Longitude {
		return false, nil
	}

	v, err := parseCoordinate(r.Field, r.Value)
	if err != nil {
		return false, &MalformedValueError{Field: r.Field, Value: r.Value, Err: err}
	}

	if r.Field == Latitude {
		rt.latitudes = append(rt.latitudes, v)
	} else {
		rt.longitudes = append(rt.longitudes, v)
	}
	return true, nil
}

// Latitudes returns a copy of the latitude sequence.
func (rt *Route) Latitudes() []float64 {
	return append([]float64(nil), rt.latitudes...)
}

// Longitudes returns a copy of the longitude sequence.
func (rt *Route) Longitudes() []float64 {
	return append([]float64(nil), rt.longitudes...)
}

// Coordinates pairs the two sequences up to the shorter one.
func (rt *Route) Coordinates() []Coordinate {
	n := min(len(rt.latitudes), len(rt.longitudes))
	out := make([]Coordinate, n)
	for i := range n {
		out[i] = Coordinate{Latitude: rt.latitudes[i], Longitude: rt.longitudes[i]}
	}
	return out
}

// Drawable reports whether there are enough points to draw a path.
func (rt *Route) Drawable() bool {
	return len(rt.latitudes) >= 2 && len(rt.longitudes) >= 2
}

// parseCoordinate reads a latitude or longitude in decimal degrees. Anything
// else goes to go-nmea, where "<number> <hemisphere>" means NMEA ddmm.mmmm;
// that form must carry the zero-padded degree digits NMEA always sends, so
// "52.520008 N" is rejected instead of being read as 0°52.52'.
func parseCoordinate(f Field, value string) (float64, error) {
	value = strings.TrimSpace(value)

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		if num, hemi, ok := strings.Cut(value, " "); ok {
			if err := checkNMEA(f, num, hemi); err != nil {
				return 0, err
			}
		}
		if v, err = nmea.ParseLatLong(value); err != nil {
			return 0, err
		}
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	limit := 180.0
	if f == Latitude {
		limit = 90
	}
	if math.Abs(v) > limit {
		return 0, fmt.Errorf("out of range ±%g", limit)
	}
	return v, nil
}

func checkNMEA(f Field, num, hemi string) error {
	if len(hemi) != 1 || !strings.Contains("NSEW", hemi) {
		return nil // DMS and other notations
	}
	hemis, digits := "NS", 4
	if f == Longitude {
		hemis, digits = "EW", 5
	}
	if !strings.Contains(hemis, hemi) {
		return fmt.Errorf("hemisphere %s does not apply to %s", hemi, f)
	}
	whole, _, _ := strings.Cut(num, ".")
	if len(whole) < digits {
		return fmt.Errorf("%q is not ddmm.mmmm: decimal degrees take a sign, not a hemisphere", num+" "+hemi)
	}
	return nil
}
