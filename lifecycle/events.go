// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"

	"github.com/bureau-foundation/hushroom/lib/ref"
)

// HandleOccupancyChange reacts to members joining or leaving channel.
// It queries the channel's current occupancy and then:
//   - channel gone: stops tracking it and deletes the role
//   - channel empty: arms a fresh timer for the record's threshold
//   - channel occupied: cancels any pending timer
//
// Untracked channels are ignored. When handlers for the same channel
// overlap, only the one that started last applies its result.
func (m *Manager) HandleOccupancyChange(ctx context.Context, channel ref.ChannelID) {
	m.mu.Lock()
	record, ok := m.registry.ByChannel(channel)
	if !ok {
		m.mu.Unlock()
		return
	}
	record.expiry.events++
	sequence := record.expiry.events
	guild, group := record.Guild, record.Group
	m.mu.Unlock()

	occupancy, err := m.platform.Occupancy(ctx, guild, channel)
	if err != nil {
		m.logger.Warn("occupancy query failed, leaving timer unchanged",
			"group", group,
			"channel", channel,
			"error", err,
		)
		return
	}

	m.mu.Lock()
	record, ok = m.registry.ByGroup(group)
	if !ok {
		// Reclaimed while the query was in flight.
		m.mu.Unlock()
		return
	}
	if record.expiry.events != sequence {
		m.mu.Unlock()
		m.logger.Debug("discarding superseded occupancy result",
			"group", group,
			"channel", channel,
			"occupants", occupancy.Count,
		)
		return
	}
	switch {
	case !occupancy.Exists:
		m.claimLocked(record)
		m.mu.Unlock()
		m.releaseGroup(ctx, record, reasonChannelMissing)
		return
	case occupancy.Count == 0:
		m.armLocked(record)
	default:
		m.cancelLocked(record)
	}
	m.mu.Unlock()
}

// HandleChannelDeleted reacts to channel being deleted out of band. The
// record is dropped and its role deleted at once, without consulting the
// timer. Untracked channels are ignored.
func (m *Manager) HandleChannelDeleted(ctx context.Context, channel ref.ChannelID) {
	m.mu.Lock()
	record, ok := m.registry.ByChannel(channel)
	if !ok {
		m.mu.Unlock()
		return
	}
	m.claimLocked(record)
	m.mu.Unlock()

	m.releaseGroup(ctx, record, reasonChannelDeleted)
}
