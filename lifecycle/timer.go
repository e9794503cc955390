// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"time"

	"github.com/bureau-foundation/hushroom/lib/ref"
)

// delay maps a threshold to the duration actually armed.
func (m *Manager) delay(threshold time.Duration) time.Duration {
	if threshold < m.minimumDelay {
		return m.minimumDelay
	}
	return threshold
}

// armLocked replaces record's timer with a fresh one for its threshold.
// Must be called with m.mu held.
func (m *Manager) armLocked(record *Record) {
	m.cancelLocked(record)
	if m.closed {
		return
	}

	delay := m.delay(record.Threshold)
	generation := record.expiry.generation
	group := record.Group
	record.expiry.deadline = m.clock.Now().Add(delay)
	record.expiry.timer = m.clock.AfterFunc(delay, func() {
		m.fire(group, generation)
	})
	m.logger.Debug("armed expiry timer",
		"group", group,
		"channel", record.Channel,
		"delay", delay,
	)
}

// cancelLocked stops record's timer, if any. Idempotent. Any callback
// already running sees a new generation and does nothing. Must be
// called with m.mu held.
func (m *Manager) cancelLocked(record *Record) {
	record.expiry.generation++
	if record.expiry.timer == nil {
		return
	}
	record.expiry.timer.Stop()
	record.expiry.timer = nil
	record.expiry.deadline = time.Time{}
	m.logger.Debug("canceled expiry timer", "group", record.Group, "channel", record.Channel)
}

// currentLocked returns group's record if it is still tracked and has
// not been armed or canceled since generation. Must be called with m.mu
// held.
func (m *Manager) currentLocked(group ref.RoleID, generation uint64) (*Record, bool) {
	record, ok := m.registry.ByGroup(group)
	if !ok || record.expiry.generation != generation {
		return nil, false
	}
	return record, true
}

// fire runs when a timer expires. It re-checks occupancy and reclaims
// the pair only if the channel is gone or still empty.
func (m *Manager) fire(group ref.RoleID, generation uint64) {
	m.mu.Lock()
	record, ok := m.currentLocked(group, generation)
	if !ok {
		m.mu.Unlock()
		return
	}
	record.expiry.timer = nil
	record.expiry.deadline = time.Time{}
	guild, channel := record.Guild, record.Channel
	m.mu.Unlock()

	occupancy, err := m.platform.Occupancy(m.ctx, guild, channel)
	if err != nil {
		m.mu.Lock()
		record, ok := m.currentLocked(group, generation)
		if ok {
			m.armLocked(record)
		}
		m.mu.Unlock()
		m.logger.Warn("occupancy check failed at expiry, retrying later",
			"group", group,
			"channel", channel,
			"rearmed", ok,
			"error", err,
		)
		return
	}

	if !occupancy.Empty() {
		m.logger.Debug("expiry timer fired on occupied channel",
			"group", group,
			"channel", channel,
			"occupants", occupancy.Count,
		)
		return
	}

	m.mu.Lock()
	record, ok = m.currentLocked(group, generation)
	if !ok {
		m.mu.Unlock()
		return
	}
	m.claimLocked(record)
	m.mu.Unlock()

	reason := reasonIdle
	if !occupancy.Exists {
		reason = reasonChannelMissing
	}
	m.release(m.ctx, record, reason)
}
