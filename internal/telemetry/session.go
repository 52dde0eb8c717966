// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"errors"
)

// LineSource provides raw protocol lines. Poll never blocks: it returns false
// when no complete line is available yet.
type LineSource interface {
	Poll() (string, bool)
}

// Outcome describes what processing a single line did to the session.
type Outcome struct {
	Line       string   `json:"line"`
	Reading    *Reading `json:"reading,omitempty"`
	Accepted   bool     `json:"accepted"`
	Committed  *Record  `json:"committed,omitempty"`
	Sample     *Sample  `json:"sample,omitempty"`
	RoutePoint bool     `json:"route_point"`
	Advisory   string   `json:"advisory,omitempty"`

	// Err joins the recoverable problems met on this line: an unrecognized
	// line, malformed numeric values, or a failed commit.
	Err error `json:"-"`
}

// Rejected reports whether the line was recognized but filtered as a sentinel.
func (o Outcome) Rejected() bool {
	return o.Reading != nil && !o.Accepted
}

// Session owns all state of one ingestion session. It is not safe for
// concurrent use; lines are processed strictly one after another.
type Session struct {
	acc      *Accumulator
	gate     *Gate
	series   Series
	route    Route
	advisory string
	lines    int
}

// NewSession returns an empty session that commits records to sink and
// filters readings through sentinels (DefaultSentinels when nil).
func NewSession(sink Sink, sentinels SentinelTable) *Session {
	if sentinels == nil {
		sentinels = DefaultSentinels()
	}
	return &Session{
		acc:  NewAccumulator(sentinels),
		gate: NewGate(sink),
	}
}

// Process runs one line through decode, filter, accumulate, commit, series
// and route, in that order.
func (s *Session) Process(line string) Outcome {
	s.lines++
	out := Outcome{Line: line}

	reading, err := Decode(line)
	if err != nil {
		// unrecognized lines never touch the record
		s.advisory = "Received unexpected message: " + line
		out.Advisory = s.advisory
		out.Err = err
		return out
	}
	out.Reading = &reading

	var errs []error
	if s.acc.Apply(reading) {
		out.Accepted = true
		s.advisory = ""

		ok, err := s.route.Observe(reading)
		if err != nil {
			errs = append(errs, err)
		}
		out.RoutePoint = ok
	}

	rec := s.acc.Record()
	committed, err := s.gate.Observe(rec)
	if err != nil {
		errs = append(errs, err)
	}
	if committed {
		out.Committed = &rec
	}

	appended, err := s.series.Observe(rec)
	if err != nil {
		errs = append(errs, err)
	}
	if appended {
		smp := s.series.samples[len(s.series.samples)-1]
		out.Sample = &smp
	}

	if len(errs) > 0 {
		out.Err = errors.Join(errs...)
		var mv *MalformedValueError
		if errors.As(out.Err, &mv) {
			s.advisory = mv.Error()
		}
	}
	out.Advisory = s.advisory
	return out
}

// Step polls src once and processes the line if one is ready.
func (s *Session) Step(src LineSource) (Outcome, bool) {
	line, ok := src.Poll()
	if !ok {
		return Outcome{}, false
	}
	return s.Process(line), true
}

// Record returns a copy of the record being assembled.
func (s *Session) Record() Record { return s.acc.Record() }

// Series returns the session's sample store.
func (s *Session) Series() *Series { return &s.series }

// Route returns the session's route buffer.
func (s *Session) Route() *Route { return &s.route }

// Advisory returns the last user-facing notice, or "" when there is none.
func (s *Session) Advisory() string { return s.advisory }

// LastCommitted returns the Time of the last persisted record.
func (s *Session) LastCommitted() (string, bool) { return s.gate.LastTime() }

// Lines returns how many lines have been processed.
func (s *Session) Lines() int { return s.lines }
