// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package lifecycle provisions private voice channels and reclaims them
// once they sit idle.
//
// A [Manager] owns every tracked (role, channel) pair. [Manager.Provision]
// creates the pair for a requester and their invitees, records it in the
// [Registry], and arms an expiry timer. Gateway events feed back in
// through [Manager.HandleOccupancyChange] and [Manager.HandleChannelDeleted]:
// an empty channel has a timer armed, an occupied channel has none, and a
// channel deleted out of band has its role removed immediately.
//
// Timer callbacks never delete on the strength of the event that armed
// them. When a timer fires the manager asks the platform for the
// channel's current occupancy and reclaims only if it is gone or empty.
//
// The manager holds a single mutex over the registry and every record's
// timer state, and never holds it across a platform call. Each handler
// reads what it needs under the lock, releases it for the platform call,
// and re-validates the record afterwards. Cleanup claims a record by
// removing it under the lock before issuing any delete, so concurrent or
// repeated cleanups of the same role issue at most one set of deletes.
//
// Lifecycle state is process-local. A restart forgets every record; the
// channels and roles it leaves behind are not reclaimed.
package lifecycle
