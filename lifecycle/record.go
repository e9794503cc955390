// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"time"

	"github.com/bureau-foundation/hushroom/lib/clock"
	"github.com/bureau-foundation/hushroom/lib/ref"
)

// Record tracks one provisioned (role, channel) pair. Records are created
// by Provision, have their timer replaced by the timer engine and event
// handlers, and are destroyed by cleanup. The exported fields never
// change after insertion.
type Record struct {
	Guild   ref.GuildID
	Group   ref.RoleID
	Channel ref.ChannelID
	Label   string

	// Threshold is how long the channel must sit empty before it is
	// reclaimed. Zero means reclaim as soon as the minimum delay
	// passes.
	Threshold time.Duration

	CreatedAt time.Time

	// expiry is allocated with the record and never reassigned, so
	// copies of a Record share it. Its fields are guarded by
	// Manager.mu.
	expiry *expiry
}

// expiry is the pending-timer slot of a record.
type expiry struct {
	timer *clock.Timer
	// generation increments on every arm and cancel. A timer callback
	// carries the generation it was armed with and does nothing if the
	// record has moved on.
	generation uint64
	deadline   time.Time
	// events increments each time an occupancy-change handler starts
	// for the record. A handler whose query returns after a later
	// handler started discards its result.
	events uint64
}

func newRecord(guild ref.GuildID, group ref.RoleID, channel ref.ChannelID, label string, threshold time.Duration, createdAt time.Time) *Record {
	return &Record{
		Guild:     guild,
		Group:     group,
		Channel:   channel,
		Label:     label,
		Threshold: threshold,
		CreatedAt: createdAt,
		expiry:    &expiry{},
	}
}

// RecordStatus is a point-in-time view of a record for diagnostics.
type RecordStatus struct {
	Guild     ref.GuildID   `json:"guild"`
	Group     ref.RoleID    `json:"group"`
	Channel   ref.ChannelID `json:"channel"`
	Label     string        `json:"label"`
	Threshold string        `json:"threshold"`
	CreatedAt time.Time     `json:"created_at"`
	// ExpiresAt is set only while a timer is armed.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
