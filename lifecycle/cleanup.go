// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"

	"github.com/bureau-foundation/hushroom/lib/ref"
	"github.com/bureau-foundation/hushroom/platform"
)

// Cleanup stops tracking group and deletes its channel and role. It is
// idempotent: an untracked group is a no-op, and concurrent calls for
// the same group issue one set of deletes between them. Delete failures
// are logged and counted, never returned.
func (m *Manager) Cleanup(ctx context.Context, group ref.RoleID) {
	m.mu.Lock()
	record, ok := m.registry.ByGroup(group)
	if !ok {
		m.mu.Unlock()
		m.logger.Debug("cleanup of untracked role", "group", group)
		return
	}
	m.claimLocked(record)
	m.mu.Unlock()

	m.release(ctx, record, reasonRequested)
}

// claimLocked cancels record's timer and removes it from the registry.
// Whoever claims a record owns its deletion. Must be called with m.mu
// held.
func (m *Manager) claimLocked(record *Record) {
	m.cancelLocked(record)
	m.registry.Remove(record.Group)
	m.metrics.RecordsActive.Set(float64(m.registry.Len()))
}

// release deletes a claimed record's channel, then its role.
func (m *Manager) release(ctx context.Context, record *Record, reason string) {
	channelErr := m.deleteChannel(ctx, record)
	groupErr := m.deleteGroup(ctx, record)
	m.metrics.Reclaims.WithLabelValues(reason).Inc()
	m.logger.Info("reclaimed private channel",
		"group", record.Group,
		"channel", record.Channel,
		"label", record.Label,
		"reason", reason,
		"complete", channelErr == nil && groupErr == nil,
	)
}

// releaseGroup deletes a claimed record's role when its channel is
// already gone.
func (m *Manager) releaseGroup(ctx context.Context, record *Record, reason string) {
	groupErr := m.deleteGroup(ctx, record)
	m.metrics.Reclaims.WithLabelValues(reason).Inc()
	m.logger.Info("private channel removed externally",
		"group", record.Group,
		"channel", record.Channel,
		"label", record.Label,
		"reason", reason,
		"complete", groupErr == nil,
	)
}

func (m *Manager) deleteChannel(ctx context.Context, record *Record) *CleanupError {
	err := m.platform.DeleteChannel(ctx, record.Channel)
	if err == nil || platform.IsNotFound(err) {
		return nil
	}
	return m.cleanupFailed(&CleanupError{
		Resource: "channel",
		ID:       record.Channel.String(),
		Group:    record.Group,
		Err:      err,
	})
}

func (m *Manager) deleteGroup(ctx context.Context, record *Record) *CleanupError {
	err := m.platform.DeleteGroup(ctx, record.Guild, record.Group)
	if err == nil || platform.IsNotFound(err) {
		return nil
	}
	return m.cleanupFailed(&CleanupError{
		Resource: "role",
		ID:       record.Group.String(),
		Group:    record.Group,
		Err:      err,
	})
}

func (m *Manager) cleanupFailed(cleanupErr *CleanupError) *CleanupError {
	m.metrics.CleanupFailures.WithLabelValues(cleanupErr.Resource).Inc()
	m.logger.Warn("best-effort delete failed",
		"resource", cleanupErr.Resource,
		"id", cleanupErr.ID,
		"group", cleanupErr.Group,
		"error", cleanupErr.Err,
	)
	return cleanupErr
}
