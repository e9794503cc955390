// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bureau-foundation/hushroom/lib/clock"
	"github.com/bureau-foundation/hushroom/lib/ref"
	"github.com/bureau-foundation/hushroom/platform/platformtest"
)

var (
	epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	testGuild     = ref.MustParseGuildID("100")
	testBot       = ref.MustParseUserID("1")
	testRequester = ref.MustParseUserID("200")
	alice         = ref.MustParseUserID("201")
	bob           = ref.MustParseUserID("202")
	stranger      = ref.MustParseUserID("299")
)

type harness struct {
	t        *testing.T
	clock    *clock.FakeClock
	platform *platformtest.Fake
	manager  *Manager
	metrics  *Metrics

	category ref.ChannelID
	invoking ref.ChannelID
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithConfig(t, func(*Config) {})
}

func newHarnessWithConfig(t *testing.T, configure func(*Config)) *harness {
	t.Helper()

	fake := platformtest.New(testBot)
	fake.AddMembers(testGuild, testRequester, alice, bob)
	category := fake.AddChannel(testGuild, "Voice", ref.ChannelID{})
	invoking := fake.AddChannel(testGuild, "general", category)

	fakeClock := clock.Fake(epoch)
	metrics := NewMetrics(prometheus.NewRegistry())
	config := Config{
		Platform:   fake,
		Clock:      fakeClock,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:    metrics,
		Compensate: true,
	}
	configure(&config)

	manager, err := New(config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(manager.Close)

	return &harness{
		t:        t,
		clock:    fakeClock,
		platform: fake,
		manager:  manager,
		metrics:  metrics,
		category: category,
		invoking: invoking,
	}
}

func (h *harness) request(threshold int, invitees ...ref.UserID) Request {
	return Request{
		Guild:           testGuild,
		Requester:       testRequester,
		InvokingChannel: h.invoking,
		Threshold:       threshold,
		Invitees:        invitees,
	}
}

// provision provisions a channel and fails the test on error.
func (h *harness) provision(threshold int, invitees ...ref.UserID) *Result {
	h.t.Helper()
	result, err := h.manager.Provision(context.Background(), h.request(threshold, invitees...))
	if err != nil {
		h.t.Fatalf("Provision: %v", err)
	}
	return result
}

// armed reports whether group's record has a live timer. Fails the test
// if group is not tracked.
func (h *harness) armed(group ref.RoleID) bool {
	h.t.Helper()
	h.manager.mu.Lock()
	defer h.manager.mu.Unlock()
	record, ok := h.manager.registry.ByGroup(group)
	if !ok {
		h.t.Fatalf("role %s is not tracked", group)
	}
	return record.expiry.timer != nil
}

func (h *harness) tracked(group ref.RoleID) bool {
	_, ok := h.manager.registry.ByGroup(group)
	return ok
}

// requireReclaimed fails unless result's channel and role are gone from
// the platform and its record from the registry.
func (h *harness) requireReclaimed(result *Result) {
	h.t.Helper()
	if h.tracked(result.Group) {
		h.t.Errorf("role %s still tracked", result.Group)
	}
	if _, ok := h.platform.Channel(result.Channel); ok {
		h.t.Errorf("channel %s still exists", result.Channel)
	}
	if _, ok := h.platform.Role(result.Group); ok {
		h.t.Errorf("role %s still exists", result.Group)
	}
}

// requireIntact fails unless result's channel, role, and record all
// still exist.
func (h *harness) requireIntact(result *Result) {
	h.t.Helper()
	if !h.tracked(result.Group) {
		h.t.Errorf("role %s no longer tracked", result.Group)
	}
	if _, ok := h.platform.Channel(result.Channel); !ok {
		h.t.Errorf("channel %s was deleted", result.Channel)
	}
	if _, ok := h.platform.Role(result.Group); !ok {
		h.t.Errorf("role %s was deleted", result.Group)
	}
}
