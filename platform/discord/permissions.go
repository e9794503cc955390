// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/bureau-foundation/hushroom/platform"
)

func capabilityBit(capability platform.Capability) int64 {
	switch capability {
	case platform.CapabilityManageRoles:
		return discordgo.PermissionManageRoles
	case platform.CapabilityManageChannels:
		return discordgo.PermissionManageChannels
	case platform.CapabilityViewChannel:
		return discordgo.PermissionViewChannel
	}
	return 0
}

func permissionBits(permission platform.Permission) int64 {
	var bits int64
	if permission.Has(platform.PermissionViewChannel) {
		bits |= discordgo.PermissionViewChannel
	}
	if permission.Has(platform.PermissionManageChannels) {
		bits |= discordgo.PermissionManageChannels
	}
	if permission.Has(platform.PermissionConnect) {
		bits |= discordgo.PermissionVoiceConnect
	}
	return bits
}

func convertOverwrites(overwrites []platform.Overwrite) []*discordgo.PermissionOverwrite {
	converted := make([]*discordgo.PermissionOverwrite, len(overwrites))
	for i, overwrite := range overwrites {
		kind := discordgo.PermissionOverwriteTypeRole
		if overwrite.Kind == platform.OverwriteMember {
			kind = discordgo.PermissionOverwriteTypeMember
		}
		converted[i] = &discordgo.PermissionOverwrite{
			ID:    overwrite.ID,
			Type:  kind,
			Allow: permissionBits(overwrite.Allow),
			Deny:  permissionBits(overwrite.Deny),
		}
	}
	return converted
}

// guildPermissions computes a member's guild-level permissions: the
// union of @everyone and every role the member holds. The guild owner
// and administrators hold every permission.
func guildPermissions(guild *discordgo.Guild, userID string, memberRoles []string) int64 {
	if guild.OwnerID == userID {
		return discordgo.PermissionAll
	}
	held := make(map[string]bool, len(memberRoles)+1)
	held[guild.ID] = true
	for _, roleID := range memberRoles {
		held[roleID] = true
	}

	var permissions int64
	for _, role := range guild.Roles {
		if held[role.ID] {
			permissions |= role.Permissions
		}
	}
	if permissions&discordgo.PermissionAdministrator != 0 {
		return discordgo.PermissionAll
	}
	return permissions
}

// missingCapabilities returns the entries of required whose bits are
// absent from permissions, in order.
func missingCapabilities(permissions int64, required []platform.Capability) []platform.Capability {
	var missing []platform.Capability
	for _, capability := range required {
		bit := capabilityBit(capability)
		if permissions&bit != bit {
			missing = append(missing, capability)
		}
	}
	return missing
}

// topPosition returns the highest position among the roles in
// memberRoles. A member with no roles sits at position 0.
func topPosition(roles []*discordgo.Role, memberRoles []string) int {
	top := 0
	for _, role := range roles {
		for _, held := range memberRoles {
			if role.ID == held && role.Position > top {
				top = role.Position
			}
		}
	}
	return top
}

// countOccupants counts voice states connected to channelID.
func countOccupants(voiceStates []*discordgo.VoiceState, channelID string) int {
	count := 0
	for _, state := range voiceStates {
		if state != nil && state.ChannelID == channelID {
			count++
		}
	}
	return count
}
