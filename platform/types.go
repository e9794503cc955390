// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"strings"

	"github.com/bureau-foundation/hushroom/lib/ref"
)

// Capability is a guild-wide administrative permission the bot needs
// to provision resources.
type Capability int

const (
	// CapabilityManageRoles allows creating, deleting, and granting roles.
	CapabilityManageRoles Capability = iota + 1
	// CapabilityManageChannels allows creating and deleting channels.
	CapabilityManageChannels
	// CapabilityViewChannel allows seeing channels at all.
	CapabilityViewChannel
)

// String returns the name Discord shows for the permission in its
// settings UI, so a missing-capability message can be acted on
// directly by a server admin.
func (c Capability) String() string {
	switch c {
	case CapabilityManageRoles:
		return "Manage Roles"
	case CapabilityManageChannels:
		return "Manage Channels"
	case CapabilityViewChannel:
		return "View Channels"
	default:
		return "Unknown"
	}
}

// JoinCapabilities renders capabilities as a comma-separated list.
func JoinCapabilities(capabilities []Capability) string {
	names := make([]string, len(capabilities))
	for i, capability := range capabilities {
		names[i] = capability.String()
	}
	return strings.Join(names, ", ")
}

// Permission is a set of channel permission bits used in overwrites.
type Permission uint64

const (
	PermissionViewChannel Permission = 1 << iota
	PermissionManageChannels
	PermissionConnect
)

// Has reports whether every bit in other is set in p.
func (p Permission) Has(other Permission) bool { return p&other == other }

// OverwriteKind says whether an overwrite targets a role or a member.
type OverwriteKind int

const (
	OverwriteRole OverwriteKind = iota
	OverwriteMember
)

// Overwrite is a per-channel permission override for one role or
// member.
type Overwrite struct {
	// ID is the role or user snowflake, according to Kind.
	ID    string
	Kind  OverwriteKind
	Allow Permission
	Deny  Permission
}

// RoleOverwrite builds an overwrite targeting a role.
func RoleOverwrite(role ref.RoleID, allow, deny Permission) Overwrite {
	return Overwrite{ID: role.String(), Kind: OverwriteRole, Allow: allow, Deny: deny}
}

// MemberOverwrite builds an overwrite targeting a single member.
func MemberOverwrite(user ref.UserID, allow, deny Permission) Overwrite {
	return Overwrite{ID: user.String(), Kind: OverwriteMember, Allow: allow, Deny: deny}
}

// GroupSpec describes an access-control role to create.
type GroupSpec struct {
	Name string
	// Position is the rank of the new role in the guild hierarchy
	// (higher outranks lower). Zero leaves the platform default.
	Position int
	// Mentionable controls whether members can @mention the role.
	Mentionable bool
}

// ChannelSpec describes a voice channel to create.
type ChannelSpec struct {
	Name string
	// Parent is the category to place the channel in. Zero means
	// unparented (top level of the guild).
	Parent     ref.ChannelID
	Overwrites []Overwrite
}

// Occupancy is the live state of a channel at query time.
type Occupancy struct {
	// Exists is false when the channel has been deleted.
	Exists bool
	// Count is the number of members currently connected.
	Count int
}

// Empty reports whether the channel is gone or nobody is connected.
func (o Occupancy) Empty() bool { return !o.Exists || o.Count == 0 }
