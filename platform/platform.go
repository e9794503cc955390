// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"

	"github.com/bureau-foundation/hushroom/lib/ref"
)

// Platform is the set of chat-platform operations the lifecycle manager
// depends on. Every call may fail with a *Error; implementations must
// be safe for concurrent use.
type Platform interface {
	// ActorID returns the bot's own user ID.
	ActorID() ref.UserID

	// MissingCapabilities returns the subset of required capabilities
	// the bot lacks in guild, in the order given. An empty result means
	// all are present.
	MissingCapabilities(ctx context.Context, guild ref.GuildID, required []Capability) ([]Capability, error)

	// ActorTopPosition returns the position of the bot's highest role
	// in guild.
	ActorTopPosition(ctx context.Context, guild ref.GuildID) (int, error)

	// ResolveMembers returns the users that are members of guild, in
	// input order. Users that cannot be resolved are dropped without
	// error; an error means the lookup itself failed.
	ResolveMembers(ctx context.Context, guild ref.GuildID, users []ref.UserID) ([]ref.UserID, error)

	// ParentOf returns the category that contains channel, or the zero
	// ChannelID when the channel is top-level.
	ParentOf(ctx context.Context, channel ref.ChannelID) (ref.ChannelID, error)

	CreateGroup(ctx context.Context, guild ref.GuildID, spec GroupSpec) (ref.RoleID, error)
	GrantGroup(ctx context.Context, guild ref.GuildID, user ref.UserID, role ref.RoleID) error
	CreateChannel(ctx context.Context, guild ref.GuildID, spec ChannelSpec) (ref.ChannelID, error)
	DeleteGroup(ctx context.Context, guild ref.GuildID, role ref.RoleID) error
	DeleteChannel(ctx context.Context, channel ref.ChannelID) error

	// Occupancy reports whether channel still exists and how many
	// members are connected to it, as of this call.
	Occupancy(ctx context.Context, guild ref.GuildID, channel ref.ChannelID) (Occupancy, error)
}
