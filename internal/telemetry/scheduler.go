// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"context"
	"time"
)

// DefaultPollInterval is how often the driver checks the source for a line.
const DefaultPollInterval = 100 * time.Millisecond

// Scheduler calls step repeatedly until ctx is done. Calls never overlap.
type Scheduler interface {
	RunEvery(ctx context.Context, interval time.Duration, step func()) error
}

// TickerScheduler runs steps off a time.Ticker.
type TickerScheduler struct{}

func (TickerScheduler) RunEvery(ctx context.Context, interval time.Duration, step func()) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			step()
		}
	}
}
