// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sink

import (
	"errors"

	"github.com/relabs-tech/telemetry_logger/internal/telemetry"
)

// Tee forwards every record to a primary sink and a set of mirrors. Only the
// primary decides whether the commit succeeded; mirror failures are reported
// through OnMirrorError and otherwise ignored.
type Tee struct {
	Primary       telemetry.Sink
	Mirrors       []telemetry.Sink
	OnMirrorError func(error)
}

func (t *Tee) Append(r telemetry.Record) error {
	if err := t.Primary.Append(r); err != nil {
		return err
	}

	var errs []error
	for _, m := range t.Mirrors {
		if err := m.Append(r); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 && t.OnMirrorError != nil {
		t.OnMirrorError(errors.Join(errs...))
	}
	return nil
}
