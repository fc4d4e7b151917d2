// Package testutil holds deterministic clock, randomness and logging helpers
// shared by tests and the scenario harness.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
)

// Epoch is the wall time every mock clock from NewClock starts at.
var Epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// waitTimeout bounds how long Advance waits for fired timers to run.
const waitTimeout = 5 * time.Second

// NewClock returns a mock clock set to Epoch. It must be created before any
// timer is started on it.
func NewClock(tb testing.TB) *quartz.Mock {
	tb.Helper()
	clock := quartz.NewMock(tb)
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	clock.Set(Epoch).MustWait(ctx)
	return clock
}

// Advance moves the clock forward by d and waits for every timer that fired
// to finish its callback.
func Advance(tb testing.TB, clock *quartz.Mock, d time.Duration) {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	clock.Advance(d).MustWait(ctx)
}
