// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

// SentinelTable maps a field to the literal the sensor sends when it has no
// valid reading. Fields without an entry accept every value.
type SentinelTable map[Field]string

// DefaultSentinels returns the placeholders emitted by the sensor firmware.
func DefaultSentinels() SentinelTable {
	return SentinelTable{
		Humidity:  "nan",
		Latitude:  "00.000000",
		Longitude: "00.000000",
		Altitude:  "0.00",
		Speed:     "0.00",
	}
}

// Accept reports whether value is a real reading for f.
func (t SentinelTable) Accept(f Field, value string) bool {
	sentinel, ok := t[f]
	return !ok || value != sentinel
}
