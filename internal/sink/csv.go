// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sink holds the destinations committed records are written to.
package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/relabs-tech/telemetry_logger/internal/telemetry"
)

// CSV appends committed records to a CSV file in telemetry.Fields order.
// The header row is written only when the file is new or empty, so a
// restarted logger keeps appending to the same table.
type CSV struct {
	mu   sync.Mutex
	path string
	file *os.File
	out  io.Writer
	csv  *csv.Writer
	rows uint64
}

// OpenCSV opens (or creates) path for appending.
func OpenCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("csv open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv stat %s: %w", path, err)
	}

	w := &CSV{
		path: path,
		file: f,
		out:  f,
		csv:  csv.NewWriter(f),
	}

	if info.Size() == 0 {
		if err := w.csv.Write(telemetry.Header()); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("csv write header: %w", err)
		}
		if err := w.flushLocked(); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("csv write header: %w", err)
		}
	}

	log.Printf("csv: appending records to %s", path)
	return w, nil
}

// Append writes one record row and pushes it to the OS. Committed rows are
// rare (one per sampling interval) so every row is flushed.
//
// A failed row is cut back off the file and the writer is replaced, so the
// caller can retry the same record on a later call.
func (w *CSV) Append(r telemetry.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := w.file.Stat()
	if err != nil {
		return fmt.Errorf("csv stat %s: %w", w.path, err)
	}

	err = w.csv.Write(r.Values())
	if err == nil {
		err = w.flushLocked()
	}
	if err != nil {
		w.resetLocked(info.Size())
		return fmt.Errorf("csv write row: %w", err)
	}
	w.rows++
	return nil
}

func (w *CSV) flushLocked() error {
	w.csv.Flush()
	return w.csv.Error()
}

// resetLocked drops a partly written row. csv.Writer keeps its first error
// forever, so it is rebuilt as well.
func (w *CSV) resetLocked(size int64) {
	if err := w.file.Truncate(size); err != nil {
		log.Printf("csv: truncate %s after failed write: %v", w.path, err)
	}
	w.csv = csv.NewWriter(w.out)
}

// Rows returns the number of data rows written by this writer.
func (w *CSV) Rows() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

// Path returns the file being written.
func (w *CSV) Path() string { return w.path }

// Close flushes and closes the file.
func (w *CSV) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	flushErr := w.flushLocked()
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("csv close: %w", err)
	}
	if flushErr != nil {
		return fmt.Errorf("csv flush: %w", flushErr)
	}
	return nil
}
