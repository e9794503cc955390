// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package platformtest provides an in-memory platform.Platform for
// tests. The fake models guilds, members, roles, channels, and voice
// occupancy, records every call, and lets tests inject failures per
// operation.
package platformtest

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/bureau-foundation/hushroom/lib/ref"
	"github.com/bureau-foundation/hushroom/platform"
)

// Operation names used in call records and failure injection.
const (
	OpMissingCapabilities = "MissingCapabilities"
	OpActorTopPosition    = "ActorTopPosition"
	OpResolveMembers      = "ResolveMembers"
	OpParentOf            = "ParentOf"
	OpCreateGroup         = "CreateGroup"
	OpGrantGroup          = "GrantGroup"
	OpCreateChannel       = "CreateChannel"
	OpDeleteGroup         = "DeleteGroup"
	OpDeleteChannel       = "DeleteChannel"
	OpOccupancy           = "Occupancy"
)

// Call is one recorded invocation. Target is the primary ID the call
// addressed (guild, role, or channel), or empty.
type Call struct {
	Op     string
	Target string
}

// Channel is the fake's view of a channel.
type Channel struct {
	ID         ref.ChannelID
	Guild      ref.GuildID
	Name       string
	Parent     ref.ChannelID
	Overwrites []platform.Overwrite
	Occupants  int
}

// Role is the fake's view of a role.
type Role struct {
	ID          ref.RoleID
	Guild       ref.GuildID
	Name        string
	Position    int
	Mentionable bool
	Members     []ref.UserID
}

// Fake is an in-memory platform.Platform. The zero value is not usable;
// construct with New.
type Fake struct {
	mu sync.Mutex

	actor       ref.UserID
	nextID      uint64
	topPosition int
	missing     []platform.Capability
	members     map[ref.GuildID]map[ref.UserID]bool
	channels    map[ref.ChannelID]*Channel
	roles       map[ref.RoleID]*Role
	failures    map[string]error
	calls       []Call

	// BeforeOccupancy, when set, runs at the start of every Occupancy
	// call without the fake's lock held. Tests use it to interleave
	// other handlers with an in-flight occupancy query.
	BeforeOccupancy func(channel ref.ChannelID)

	// AfterOccupancy, when set, runs after an Occupancy call has read
	// the channel and before it returns, without the fake's lock held.
	// The caller still receives the value read before the hook ran.
	AfterOccupancy func(channel ref.ChannelID, occupancy platform.Occupancy)

	// OnCall, when set, runs as each call is recorded, with the fake's
	// lock held. It must not call back into the fake.
	OnCall func(op string)
}

// New returns a Fake whose bot user is actor. The bot's top role sits at
// position 10 and it holds every capability.
func New(actor ref.UserID) *Fake {
	return &Fake{
		actor:       actor,
		nextID:      900_000,
		topPosition: 10,
		members:     make(map[ref.GuildID]map[ref.UserID]bool),
		channels:    make(map[ref.ChannelID]*Channel),
		roles:       make(map[ref.RoleID]*Role),
		failures:    make(map[string]error),
	}
}

func (f *Fake) newIDLocked() string {
	f.nextID++
	return strconv.FormatUint(f.nextID, 10)
}

// AddMembers makes users members of guild.
func (f *Fake) AddMembers(guild ref.GuildID, users ...ref.UserID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := f.members[guild]
	if set == nil {
		set = make(map[ref.UserID]bool)
		f.members[guild] = set
	}
	for _, user := range users {
		set[user] = true
	}
}

// AddChannel creates a channel directly (not via CreateChannel, so no
// call is recorded) and returns its ID. Use it for the channel a command
// is invoked from and for categories.
func (f *Fake) AddChannel(guild ref.GuildID, name string, parent ref.ChannelID) ref.ChannelID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := ref.MustParseChannelID(f.newIDLocked())
	f.channels[id] = &Channel{ID: id, Guild: guild, Name: name, Parent: parent}
	return id
}

// SetMissing configures the capabilities the bot lacks.
func (f *Fake) SetMissing(capabilities ...platform.Capability) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing = capabilities
}

// SetTopPosition configures the position of the bot's highest role.
func (f *Fake) SetTopPosition(position int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topPosition = position
}

// Fail makes every subsequent call to op return err. A nil err clears
// the failure.
func (f *Fake) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// SetOccupants sets the number of members connected to channel.
func (f *Fake) SetOccupants(channel ref.ChannelID, count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.channels[channel]; ok {
		c.Occupants = count
	}
}

// RemoveChannel deletes channel out of band, as a guild admin would.
func (f *Fake) RemoveChannel(channel ref.ChannelID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.channels, channel)
}

// Channel returns a copy of the channel, or false if it does not exist.
func (f *Fake) Channel(id ref.ChannelID) (Channel, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.channels[id]
	if !ok {
		return Channel{}, false
	}
	copied := *c
	copied.Overwrites = slices.Clone(c.Overwrites)
	return copied, true
}

// Role returns a copy of the role, or false if it does not exist.
func (f *Fake) Role(id ref.RoleID) (Role, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[id]
	if !ok {
		return Role{}, false
	}
	copied := *r
	copied.Members = slices.Clone(r.Members)
	return copied, true
}

// RoleCount returns the number of roles the fake currently holds.
func (f *Fake) RoleCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.roles)
}

// Calls returns every recorded call in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Count returns how many times op was called.
func (f *Fake) Count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, call := range f.calls {
		if call.Op == op {
			count++
		}
	}
	return count
}

// SideEffects returns the number of recorded calls that create, grant,
// or delete something.
func (f *Fake) SideEffects() int {
	return f.Count(OpCreateGroup) + f.Count(OpGrantGroup) + f.Count(OpCreateChannel) +
		f.Count(OpDeleteGroup) + f.Count(OpDeleteChannel)
}

// record appends a call and returns the injected failure for op, if any.
// Must be called with f.mu held.
func (f *Fake) recordLocked(op, target string) error {
	f.calls = append(f.calls, Call{Op: op, Target: target})
	if f.OnCall != nil {
		f.OnCall(op)
	}
	return f.failures[op]
}

// mutateLocked records a call that changes platform state. Like a REST
// request, it fails once ctx is done.
func (f *Fake) mutateLocked(ctx context.Context, op, target string) error {
	if err := f.recordLocked(op, target); err != nil {
		return err
	}
	return ctx.Err()
}

func (f *Fake) ActorID() ref.UserID { return f.actor }

func (f *Fake) MissingCapabilities(ctx context.Context, guild ref.GuildID, required []platform.Capability) ([]platform.Capability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.recordLocked(OpMissingCapabilities, guild.String()); err != nil {
		return nil, err
	}
	var missing []platform.Capability
	for _, capability := range required {
		if slices.Contains(f.missing, capability) {
			missing = append(missing, capability)
		}
	}
	return missing, nil
}

func (f *Fake) ActorTopPosition(ctx context.Context, guild ref.GuildID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.recordLocked(OpActorTopPosition, guild.String()); err != nil {
		return 0, err
	}
	return f.topPosition, nil
}

func (f *Fake) ResolveMembers(ctx context.Context, guild ref.GuildID, users []ref.UserID) ([]ref.UserID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.recordLocked(OpResolveMembers, guild.String()); err != nil {
		return nil, err
	}
	var resolved []ref.UserID
	for _, user := range users {
		if f.members[guild][user] {
			resolved = append(resolved, user)
		}
	}
	return resolved, nil
}

func (f *Fake) ParentOf(ctx context.Context, channel ref.ChannelID) (ref.ChannelID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.recordLocked(OpParentOf, channel.String()); err != nil {
		return ref.ChannelID{}, err
	}
	c, ok := f.channels[channel]
	if !ok {
		return ref.ChannelID{}, &platform.Error{Code: platform.ErrCodeUnknownChannel, StatusCode: 404, Message: "Unknown Channel"}
	}
	return c.Parent, nil
}

func (f *Fake) CreateGroup(ctx context.Context, guild ref.GuildID, spec platform.GroupSpec) (ref.RoleID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutateLocked(ctx, OpCreateGroup, guild.String()); err != nil {
		return ref.RoleID{}, err
	}
	id := ref.MustParseRoleID(f.newIDLocked())
	f.roles[id] = &Role{ID: id, Guild: guild, Name: spec.Name, Position: spec.Position, Mentionable: spec.Mentionable}
	return id, nil
}

func (f *Fake) GrantGroup(ctx context.Context, guild ref.GuildID, user ref.UserID, role ref.RoleID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutateLocked(ctx, OpGrantGroup, role.String()); err != nil {
		return err
	}
	r, ok := f.roles[role]
	if !ok {
		return &platform.Error{Code: platform.ErrCodeUnknownRole, StatusCode: 404, Message: "Unknown Role"}
	}
	if !slices.Contains(r.Members, user) {
		r.Members = append(r.Members, user)
	}
	return nil
}

func (f *Fake) CreateChannel(ctx context.Context, guild ref.GuildID, spec platform.ChannelSpec) (ref.ChannelID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutateLocked(ctx, OpCreateChannel, guild.String()); err != nil {
		return ref.ChannelID{}, err
	}
	id := ref.MustParseChannelID(f.newIDLocked())
	f.channels[id] = &Channel{
		ID:         id,
		Guild:      guild,
		Name:       spec.Name,
		Parent:     spec.Parent,
		Overwrites: slices.Clone(spec.Overwrites),
	}
	return id, nil
}

func (f *Fake) DeleteGroup(ctx context.Context, guild ref.GuildID, role ref.RoleID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutateLocked(ctx, OpDeleteGroup, role.String()); err != nil {
		return err
	}
	if _, ok := f.roles[role]; !ok {
		return &platform.Error{Code: platform.ErrCodeUnknownRole, StatusCode: 404, Message: "Unknown Role"}
	}
	delete(f.roles, role)
	return nil
}

func (f *Fake) DeleteChannel(ctx context.Context, channel ref.ChannelID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutateLocked(ctx, OpDeleteChannel, channel.String()); err != nil {
		return err
	}
	if _, ok := f.channels[channel]; !ok {
		return &platform.Error{Code: platform.ErrCodeUnknownChannel, StatusCode: 404, Message: "Unknown Channel"}
	}
	delete(f.channels, channel)
	return nil
}

func (f *Fake) Occupancy(ctx context.Context, guild ref.GuildID, channel ref.ChannelID) (platform.Occupancy, error) {
	if hook := f.BeforeOccupancy; hook != nil {
		hook(channel)
	}
	occupancy, err := f.readOccupancy(channel)
	if err != nil {
		return platform.Occupancy{}, err
	}
	if hook := f.AfterOccupancy; hook != nil {
		hook(channel, occupancy)
	}
	return occupancy, nil
}

func (f *Fake) readOccupancy(channel ref.ChannelID) (platform.Occupancy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.recordLocked(OpOccupancy, channel.String()); err != nil {
		return platform.Occupancy{}, err
	}
	c, ok := f.channels[channel]
	if !ok {
		return platform.Occupancy{}, nil
	}
	return platform.Occupancy{Exists: true, Count: c.Occupants}, nil
}

var _ platform.Platform = (*Fake)(nil)

// String summarizes the fake's state for test failure messages.
func (f *Fake) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fmt.Sprintf("platformtest.Fake{roles: %d, channels: %d, calls: %d}", len(f.roles), len(f.channels), len(f.calls))
}
