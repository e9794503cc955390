// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"fmt"
	"sort"
	"sync"

	"github.com/micro-go/lock"

	"github.com/bureau-foundation/hushroom/lib/ref"
)

// Registry maps roles to their lifecycle records, with a secondary index
// by channel. It is the only place records live: a role with no record
// is not tracked, whatever the platform still holds.
//
// Registry is safe for concurrent use. Compound check-then-act sequences
// (look up, then remove) need an outer lock; Manager provides it.
type Registry struct {
	mutex     sync.RWMutex
	byGroup   map[ref.RoleID]*Record
	byChannel map[ref.ChannelID]ref.RoleID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byGroup:   make(map[ref.RoleID]*Record),
		byChannel: make(map[ref.ChannelID]ref.RoleID),
	}
}

// Insert adds record. Returns an error if its role or channel is
// already tracked.
func (r *Registry) Insert(record *Record) error {
	defer lock.Write(&r.mutex).Unlock()
	if _, exists := r.byGroup[record.Group]; exists {
		return fmt.Errorf("role %s is already tracked", record.Group)
	}
	if group, exists := r.byChannel[record.Channel]; exists {
		return fmt.Errorf("channel %s is already tracked by role %s", record.Channel, group)
	}
	r.byGroup[record.Group] = record
	r.byChannel[record.Channel] = record.Group
	return nil
}

// ByGroup returns the record for group.
func (r *Registry) ByGroup(group ref.RoleID) (*Record, bool) {
	defer lock.Read(&r.mutex).Unlock()
	record, ok := r.byGroup[group]
	return record, ok
}

// ByChannel returns the record whose channel is channel.
func (r *Registry) ByChannel(channel ref.ChannelID) (*Record, bool) {
	defer lock.Read(&r.mutex).Unlock()
	group, ok := r.byChannel[channel]
	if !ok {
		return nil, false
	}
	record, ok := r.byGroup[group]
	return record, ok
}

// Remove deletes the record for group and returns it. Removing an
// untracked role returns false.
func (r *Registry) Remove(group ref.RoleID) (*Record, bool) {
	defer lock.Write(&r.mutex).Unlock()
	record, ok := r.byGroup[group]
	if !ok {
		return nil, false
	}
	delete(r.byGroup, group)
	delete(r.byChannel, record.Channel)
	return record, true
}

// Len returns the number of tracked records.
func (r *Registry) Len() int {
	defer lock.Read(&r.mutex).Unlock()
	return len(r.byGroup)
}

// Snapshot returns the tracked records ordered by creation time, oldest
// first.
func (r *Registry) Snapshot() []*Record {
	defer lock.Read(&r.mutex).Unlock()
	records := make([]*Record, 0, len(r.byGroup))
	for _, record := range r.byGroup {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].Group.String() < records[j].Group.String()
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records
}
