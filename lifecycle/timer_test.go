// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/hushroom/lib/ref"
	"github.com/bureau-foundation/hushroom/platform/platformtest"
)

func TestArmReplacesExistingTimer(t *testing.T) {
	h := newHarness(t)
	result := h.provision(5, alice)

	record, _ := h.manager.registry.ByGroup(result.Group)
	for range 3 {
		h.manager.mu.Lock()
		h.manager.armLocked(record)
		h.manager.mu.Unlock()
		if got := h.clock.PendingCount(); got != 1 {
			t.Fatalf("pending timers after re-arm = %d, want 1", got)
		}
	}

	// Only the last arm fires, so exactly one reclaim happens.
	h.clock.Advance(5 * time.Minute)
	h.requireReclaimed(result)
	if got := h.platform.Count(platformtest.OpOccupancy); got != 1 {
		t.Errorf("occupancy checks at expiry = %d, want 1", got)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	h := newHarness(t)
	result := h.provision(5, alice)

	record, _ := h.manager.registry.ByGroup(result.Group)
	h.manager.mu.Lock()
	h.manager.cancelLocked(record)
	h.manager.cancelLocked(record)
	h.manager.mu.Unlock()

	if h.armed(result.Group) {
		t.Error("record still armed after cancel")
	}
	if got := h.clock.PendingCount(); got != 0 {
		t.Errorf("pending timers = %d, want 0", got)
	}
	h.clock.Advance(time.Hour)
	h.requireIntact(result)
}

func TestFireOnOccupiedChannelKeepsPair(t *testing.T) {
	h := newHarness(t)
	result := h.provision(5, alice)

	// Someone joined but the event has not been delivered yet.
	h.platform.SetOccupants(result.Channel, 1)
	h.clock.Advance(5 * time.Minute)

	h.requireIntact(result)
	if got := h.platform.Count(platformtest.OpDeleteChannel) + h.platform.Count(platformtest.OpDeleteGroup); got != 0 {
		t.Errorf("delete calls = %d, want 0", got)
	}
	if h.armed(result.Group) {
		t.Error("timer re-armed on an occupied channel")
	}
}

func TestFireOnMissingChannelReclaims(t *testing.T) {
	h := newHarness(t)
	result := h.provision(1, alice)

	h.platform.RemoveChannel(result.Channel)
	h.clock.Advance(time.Minute)

	h.requireReclaimed(result)
}

func TestFireRearmsWhenOccupancyQueryFails(t *testing.T) {
	h := newHarness(t)
	result := h.provision(1, alice)

	h.platform.Fail(platformtest.OpOccupancy, errors.New("gateway cache unavailable"))
	h.clock.Advance(time.Minute)

	h.requireIntact(result)
	if !h.armed(result.Group) {
		t.Fatal("timer not re-armed after failed occupancy check")
	}

	h.platform.Fail(platformtest.OpOccupancy, nil)
	h.clock.Advance(time.Minute)
	h.requireReclaimed(result)
}

func TestFireLosesRaceWithOccupancyEvent(t *testing.T) {
	h := newHarness(t)
	result := h.provision(1, alice)

	// While the expiry check is querying occupancy, an occupancy event
	// for the same channel arrives and arms a fresh timer. The stale
	// expiry must not reclaim.
	interleaved := false
	h.platform.BeforeOccupancy = func(channel ref.ChannelID) {
		if interleaved {
			return
		}
		interleaved = true
		h.manager.HandleOccupancyChange(context.Background(), channel)
	}

	h.clock.Advance(time.Minute)

	if !interleaved {
		t.Fatal("occupancy hook never ran")
	}
	h.requireIntact(result)
	if !h.armed(result.Group) {
		t.Error("fresh timer from the interleaved event was lost")
	}
	if got := h.clock.PendingCount(); got != 1 {
		t.Errorf("pending timers = %d, want 1", got)
	}

	h.platform.BeforeOccupancy = nil
	h.clock.Advance(time.Minute)
	h.requireReclaimed(result)
}

func TestCloseStopsTimers(t *testing.T) {
	h := newHarness(t)
	first := h.provision(1, alice)
	second := h.provision(5, bob)

	h.manager.Close()
	if got := h.clock.PendingCount(); got != 0 {
		t.Fatalf("pending timers after Close = %d, want 0", got)
	}
	h.clock.Advance(time.Hour)
	h.requireIntact(first)
	h.requireIntact(second)

	// Occupancy changes after Close never arm.
	h.manager.HandleOccupancyChange(context.Background(), first.Channel)
	if got := h.clock.PendingCount(); got != 0 {
		t.Errorf("pending timers after post-Close event = %d, want 0", got)
	}
}

func TestStatusReportsDeadline(t *testing.T) {
	h := newHarness(t)
	result := h.provision(15, alice)

	statuses := h.manager.Status()
	if len(statuses) != 1 {
		t.Fatalf("Status() returned %d records, want 1", len(statuses))
	}
	status := statuses[0]
	if status.Group != result.Group || status.Channel != result.Channel || status.Label != result.Label {
		t.Errorf("status = %+v does not match result %+v", status, result)
	}
	if status.Threshold != "15m0s" {
		t.Errorf("threshold = %q, want 15m0s", status.Threshold)
	}
	if status.ExpiresAt == nil || !status.ExpiresAt.Equal(epoch.Add(15*time.Minute)) {
		t.Errorf("expires_at = %v, want %v", status.ExpiresAt, epoch.Add(15*time.Minute))
	}

	h.platform.SetOccupants(result.Channel, 2)
	h.manager.HandleOccupancyChange(context.Background(), result.Channel)
	if status := h.manager.Status()[0]; status.ExpiresAt != nil {
		t.Errorf("expires_at = %v on an occupied channel, want nil", status.ExpiresAt)
	}
}
