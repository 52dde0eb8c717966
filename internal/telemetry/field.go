// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"encoding/json"
	"fmt"
)

// Field identifies one reading carried by the sensor line protocol.
type Field int

const (
	Date Field = iota
	Time
	Temperature
	Humidity
	Pressure
	Latitude
	Longitude
	Altitude
	Speed

	numFields
)

// Fields lists every field in persisted column order.
var Fields = []Field{Date, Time, Temperature, Humidity, Pressure, Latitude, Longitude, Altitude, Speed}

var fieldNames = [numFields]string{
	"Date", "Time", "Temperature", "Humidity", "Pressure",
	"Latitude", "Longitude", "Altitude", "Speed",
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "Unknown"
	}
	return fieldNames[f]
}

// MarshalText encodes the field by name.
func (f Field) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a field name.
func (f *Field) UnmarshalText(text []byte) error {
	v, ok := ParseField(string(text))
	if !ok {
		return fmt.Errorf("unknown field %q", text)
	}
	*f = v
	return nil
}

// ParseField maps a protocol field name (e.g. "Temperature") to its Field.
func ParseField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

// Header returns the column names in persisted order.
func Header() []string {
	h := make([]string, len(Fields))
	for i, f := range Fields {
		h[i] = f.String()
	}
	return h
}

// Record is the sticky per-field state of the sample currently being assembled.
// An empty string means the field has not been received yet. Record is a value
// type: assigning it copies every field, which is how snapshots are taken.
type Record [numFields]string

// Get returns the stored value for f, or "" if unset.
func (r Record) Get(f Field) string {
	if f < 0 || f >= numFields {
		return ""
	}
	return r[f]
}

func (r *Record) set(f Field, v string) {
	r[f] = v
}

// Values returns the record as a row in Fields order.
func (r Record) Values() []string {
	row := make([]string, len(Fields))
	for i, f := range Fields {
		row[i] = r[f]
	}
	return row
}

// MarshalJSON encodes the record as {"Date": "...", "Time": "...", ...}.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, numFields)
	for _, f := range Fields {
		m[f.String()] = r[f]
	}
	return json.Marshal(m)
}

// UnmarshalJSON is the inverse of MarshalJSON; unknown keys are ignored.
func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = Record{}
	for k, v := range m {
		if f, ok := ParseField(k); ok {
			r[f] = v
		}
	}
	return nil
}
