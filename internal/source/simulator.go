// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package source

import (
	"fmt"
	"math"
	"time"
)

// Simulator emits the line sequence of a sensor unit on a slow drive, one
// line per Poll. Every interval starts with a fresh Time line; the GPS reports
// placeholders for the first few intervals as a cold receiver would.
type Simulator struct {
	start   time.Time
	pending []string
	tick    int
}

// NewSimulator creates a simulator whose clock starts at start.
func NewSimulator(start time.Time) *Simulator {
	return &Simulator{start: start}
}

// Poll always has a line ready.
func (s *Simulator) Poll() (string, bool) {
	if len(s.pending) == 0 {
		s.pending = s.interval(s.tick)
		s.tick++
	}
	line := s.pending[0]
	s.pending = s.pending[1:]
	return line, true
}

func (s *Simulator) interval(n int) []string {
	ts := s.start.Add(time.Duration(n) * time.Second)
	t := float64(n)

	lat, lon := "00.000000", "00.000000"
	alt, speed := "0.00", "0.00"
	if n >= 3 {
		lat = fmt.Sprintf("%.6f", 52.520008+0.0001*t)
		lon = fmt.Sprintf("%.6f", 13.404954+0.00005*t*math.Cos(t/20))
		alt = fmt.Sprintf("%.2f", 34+2*math.Sin(t/15))
		speed = fmt.Sprintf("%.2f", 12+3*math.Sin(t/7))
	}

	humidity := fmt.Sprintf("%.1f %%", 45+5*math.Cos(t/30))
	if n%17 == 5 {
		humidity = "nan"
	}

	return []string{
		"Date: " + ts.Format("2006-01-02"),
		"Time: " + ts.Format("15:04:05"),
		fmt.Sprintf("Temperature: %.1f C", 20+2*math.Sin(t/10)),
		"Humidity: " + humidity,
		fmt.Sprintf("Pressure: %.2f hPa", 1013.25-0.05*t),
		"Latitude: " + lat,
		"Longitude: " + lon,
		"Altitude: " + alt,
		"Speed: " + speed,
	}
}
