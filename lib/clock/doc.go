// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by the
// lifecycle manager's expiry timers.
//
// Production code holds a Clock and calls Now and AfterFunc on it
// instead of the time package. Real() forwards to the standard library.
// Fake() returns a FakeClock that only moves when a test calls Advance,
// so idle thresholds measured in minutes can be exercised in
// microseconds and in a fixed order.
//
// # FakeClock Synchronization
//
// AfterFunc registers a pending timer. When the timer is armed from a
// goroutine the test does not control (an event handler, a timer
// callback re-arming itself), call WaitForTimers before Advance so the
// registration cannot race the advance:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go manager.HandleOccupancyChange(ctx, channel)
//	c.WaitForTimers(1)
//	c.Advance(5 * time.Minute)
package clock
