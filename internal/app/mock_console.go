// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/relabs-tech/telemetry_logger/internal/source"
	"github.com/relabs-tech/telemetry_logger/internal/telemetry"
)

// RunMockConsole runs a session without persistence and prints what each
// line did. With replayPath empty the simulated sensor is used and the
// console runs until killed.
func RunMockConsole(replayPath string) error {
	var src telemetry.LineSource
	if replayPath != "" {
		lines, err := source.OpenReplay(replayPath)
		if err != nil {
			return err
		}
		defer lines.Close()
		src = lines
	} else {
		src = source.NewSimulator(time.Now())
	}

	discard := telemetry.SinkFunc(func(telemetry.Record) error { return nil })
	session := telemetry.NewSession(discard, nil)

	ticker := time.NewTicker(telemetry.DefaultPollInterval)
	defer ticker.Stop()

	for range ticker.C {
		out, ok := session.Step(src)
		if ok {
			printOutcome(os.Stdout, out)
			continue
		}
		if l, isLines := src.(*source.Lines); isLines && l.Exhausted() {
			return l.Err()
		}
	}
	return nil
}

func printOutcome(w io.Writer, out telemetry.Outcome) {
	switch {
	case out.Reading == nil:
		fmt.Fprintf(w, "[????]  %s\n", out.Line)
		return
	case !out.Accepted:
		fmt.Fprintf(w, "[SKIP]  %s (placeholder)\n", out.Line)
	default:
		fmt.Fprintf(w, "[LINE]  %-12s %s\n", out.Reading.Field, out.Reading.Value)
	}

	if out.Committed != nil {
		fmt.Fprintf(w, "[REC ]  %v\n", out.Committed.Values())
	}
	if out.Sample != nil {
		fmt.Fprintln(w, sampleLine(*out.Sample))
	}
	if out.Err != nil && out.Advisory != "" {
		fmt.Fprintf(w, "[WARN]  %s\n", out.Advisory)
	}
}
