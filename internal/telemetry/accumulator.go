// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

// Accumulator assembles a Record from readings that arrive one line at a time.
// A field keeps its last accepted value until another accepted reading replaces it.
type Accumulator struct {
	filter SentinelTable
	record Record
}

// NewAccumulator returns an empty accumulator using filter to drop placeholders.
func NewAccumulator(filter SentinelTable) *Accumulator {
	return &Accumulator{filter: filter}
}

// Apply stores r unless its value is the sentinel for its field.
// It reports whether the reading was accepted.
func (a *Accumulator) Apply(r Reading) bool {
	if !a.filter.Accept(r.Field, r.Value) {
		return false
	}
	a.record.set(r.Field, r.Value)
	return true
}

// Record returns a copy of the current state.
func (a *Accumulator) Record() Record {
	return a.record
}
