// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import "fmt"

// Sink receives committed record snapshots. Implementations are append-only.
type Sink interface {
	Append(Record) error
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Record) error

func (f SinkFunc) Append(r Record) error { return f(r) }

type gateState int

const (
	awaitingFirstTime gateState = iota
	haveCommitted
)

// Gate commits a record snapshot each time the Time field moves to a value
// that has not been committed yet. Time is the identity key of a sample, so a
// given Time is persisted at most once per session.
type Gate struct {
	sink     Sink
	state    gateState
	lastTime string
}

// NewGate returns a gate in the awaiting-first-time state.
func NewGate(sink Sink) *Gate {
	return &Gate{sink: sink}
}

// Observe inspects the current record and commits it if its Time changed.
// A failed append leaves the gate untouched so the next line retries.
func (g *Gate) Observe(r Record) (bool, error) {
	t := r.Get(Time)
	if t == "" {
		return false, nil
	}
	if g.state == haveCommitted && t == g.lastTime {
		return false, nil
	}

	if err := g.sink.Append(r); err != nil {
		return false, fmt.Errorf("commit record at %s: %w", t, err)
	}
	g.state = haveCommitted
	g.lastTime = t
	return true, nil
}

// LastTime returns the Time of the last committed record.
func (g *Gate) LastTime() (string, bool) {
	return g.lastTime, g.state == haveCommitted
}
