// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/bureau-foundation/hushroom/lib/ref"
	"github.com/bureau-foundation/hushroom/platform"
)

// Client implements platform.Platform on a discordgo session.
type Client struct {
	session *discordgo.Session
	logger  *slog.Logger

	// actor is the bot user, learned from the Ready event.
	actor atomic.Pointer[ref.UserID]
	// connected tracks the gateway connection for health reporting.
	connected atomic.Bool
}

// New wraps session. Call before session.Open so the Ready event that
// identifies the bot user is not missed.
func New(session *discordgo.Session, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	client := &Client{session: session, logger: logger}
	session.AddHandler(client.onReady)
	session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Resumed) { client.connected.Store(true) })
	session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) { client.connected.Store(false) })
	return client
}

// presence is shown as the bot's "Watching ..." activity.
const presence = "your commands"

func (c *Client) onReady(session *discordgo.Session, ready *discordgo.Ready) {
	if ready.User == nil {
		return
	}
	actor, err := ref.ParseUserID(ready.User.ID)
	if err != nil {
		c.logger.Error("ready event carried an invalid bot user ID", "id", ready.User.ID, "error", err)
		return
	}
	c.actor.Store(&actor)
	c.connected.Store(true)
	c.logger.Info("connected to discord",
		"user", ready.User.String(),
		"guilds", len(ready.Guilds),
	)
	if err := session.UpdateWatchStatus(0, presence); err != nil {
		c.logger.Warn("setting presence", "error", err)
	}
}

// Connected reports whether the gateway connection is up.
func (c *Client) Connected() bool { return c.connected.Load() }

// ActorID returns the bot's user ID, or the zero UserID before Ready.
func (c *Client) ActorID() ref.UserID {
	if actor := c.actor.Load(); actor != nil {
		return *actor
	}
	return ref.UserID{}
}

// guild returns the guild's owner and roles, copied out of the state
// cache so callers need not hold its lock.
func (c *Client) guild(ctx context.Context, guildID ref.GuildID) (*discordgo.Guild, error) {
	state := c.session.State
	if cached, err := state.Guild(guildID.String()); err == nil {
		state.RLock()
		copied := &discordgo.Guild{
			ID:      cached.ID,
			OwnerID: cached.OwnerID,
			Roles:   make([]*discordgo.Role, len(cached.Roles)),
		}
		for i, role := range cached.Roles {
			roleCopy := *role
			copied.Roles[i] = &roleCopy
		}
		state.RUnlock()
		return copied, nil
	}
	guild, err := c.session.Guild(guildID.String(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, convertError(err)
	}
	return guild, nil
}

// memberRoles returns the role IDs held by user in guild. A user who is
// not a member yields a not-found *platform.Error.
func (c *Client) memberRoles(ctx context.Context, guildID ref.GuildID, userID ref.UserID) ([]string, error) {
	state := c.session.State
	if cached, err := state.Member(guildID.String(), userID.String()); err == nil {
		state.RLock()
		roles := append([]string(nil), cached.Roles...)
		state.RUnlock()
		return roles, nil
	}
	member, err := c.session.GuildMember(guildID.String(), userID.String(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, convertError(err)
	}
	return member.Roles, nil
}

func (c *Client) MissingCapabilities(ctx context.Context, guildID ref.GuildID, required []platform.Capability) ([]platform.Capability, error) {
	actor := c.ActorID()
	if actor.IsZero() {
		return nil, &platform.Error{Err: errors.New("bot user not known yet")}
	}
	guild, err := c.guild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	roles, err := c.memberRoles(ctx, guildID, actor)
	if err != nil {
		return nil, err
	}
	return missingCapabilities(guildPermissions(guild, actor.String(), roles), required), nil
}

func (c *Client) ActorTopPosition(ctx context.Context, guildID ref.GuildID) (int, error) {
	guild, err := c.guild(ctx, guildID)
	if err != nil {
		return 0, err
	}
	roles, err := c.memberRoles(ctx, guildID, c.ActorID())
	if err != nil {
		return 0, err
	}
	return topPosition(guild.Roles, roles), nil
}

func (c *Client) ResolveMembers(ctx context.Context, guildID ref.GuildID, users []ref.UserID) ([]ref.UserID, error) {
	var resolved []ref.UserID
	for _, user := range users {
		if _, err := c.memberRoles(ctx, guildID, user); err != nil {
			if platform.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("resolving member %s: %w", user, err)
		}
		resolved = append(resolved, user)
	}
	return resolved, nil
}

func (c *Client) ParentOf(ctx context.Context, channelID ref.ChannelID) (ref.ChannelID, error) {
	var parent string
	state := c.session.State
	if cached, err := state.Channel(channelID.String()); err == nil {
		state.RLock()
		parent = cached.ParentID
		state.RUnlock()
	} else {
		channel, err := c.session.Channel(channelID.String(), discordgo.WithContext(ctx))
		if err != nil {
			return ref.ChannelID{}, convertError(err)
		}
		parent = channel.ParentID
	}
	if parent == "" {
		return ref.ChannelID{}, nil
	}
	return ref.ParseChannelID(parent)
}

// CreateGroup creates the role and then moves it to spec.Position. Role
// creation cannot set a position, so a failed move deletes the new role
// before returning the error.
func (c *Client) CreateGroup(ctx context.Context, guildID ref.GuildID, spec platform.GroupSpec) (ref.RoleID, error) {
	noPermissions := int64(0)
	mentionable := spec.Mentionable
	role, err := c.session.GuildRoleCreate(guildID.String(), &discordgo.RoleParams{
		Name:        spec.Name,
		Permissions: &noPermissions,
		Mentionable: &mentionable,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return ref.RoleID{}, convertError(err)
	}
	roleID, err := ref.ParseRoleID(role.ID)
	if err != nil {
		return ref.RoleID{}, &platform.Error{Err: fmt.Errorf("created role has invalid ID: %w", err)}
	}

	if spec.Position > 0 {
		_, err := c.session.GuildRoleReorder(guildID.String(), []*discordgo.Role{{ID: role.ID, Position: spec.Position}},
			discordgo.WithContext(ctx))
		if err != nil {
			if deleteErr := c.session.GuildRoleDelete(guildID.String(), role.ID, discordgo.WithContext(ctx)); deleteErr != nil {
				c.logger.Warn("deleting role after failed reorder", "group", roleID, "error", deleteErr)
			}
			return ref.RoleID{}, convertError(err)
		}
	}
	return roleID, nil
}

func (c *Client) GrantGroup(ctx context.Context, guildID ref.GuildID, user ref.UserID, role ref.RoleID) error {
	return convertError(c.session.GuildMemberRoleAdd(guildID.String(), user.String(), role.String(), discordgo.WithContext(ctx)))
}

func (c *Client) CreateChannel(ctx context.Context, guildID ref.GuildID, spec platform.ChannelSpec) (ref.ChannelID, error) {
	channel, err := c.session.GuildChannelCreateComplex(guildID.String(), discordgo.GuildChannelCreateData{
		Name:                 spec.Name,
		Type:                 discordgo.ChannelTypeGuildVoice,
		ParentID:             spec.Parent.String(),
		PermissionOverwrites: convertOverwrites(spec.Overwrites),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return ref.ChannelID{}, convertError(err)
	}
	channelID, err := ref.ParseChannelID(channel.ID)
	if err != nil {
		return ref.ChannelID{}, &platform.Error{Err: fmt.Errorf("created channel has invalid ID: %w", err)}
	}
	return channelID, nil
}

func (c *Client) DeleteGroup(ctx context.Context, guildID ref.GuildID, role ref.RoleID) error {
	return convertError(c.session.GuildRoleDelete(guildID.String(), role.String(), discordgo.WithContext(ctx)))
}

func (c *Client) DeleteChannel(ctx context.Context, channelID ref.ChannelID) error {
	_, err := c.session.ChannelDelete(channelID.String(), discordgo.WithContext(ctx))
	return convertError(err)
}

// Occupancy counts the voice states in the gateway cache that point at
// channelID. When the cache does not know the channel, REST decides
// whether it exists.
func (c *Client) Occupancy(ctx context.Context, guildID ref.GuildID, channelID ref.ChannelID) (platform.Occupancy, error) {
	state := c.session.State
	if _, err := state.Channel(channelID.String()); err != nil {
		if _, err := c.session.Channel(channelID.String(), discordgo.WithContext(ctx)); err != nil {
			converted := convertError(err)
			if platform.IsNotFound(converted) {
				return platform.Occupancy{}, nil
			}
			return platform.Occupancy{}, converted
		}
	}

	guild, err := state.Guild(guildID.String())
	if err != nil {
		return platform.Occupancy{}, &platform.Error{Err: fmt.Errorf("guild %s not in gateway state: %w", guildID, err)}
	}
	state.RLock()
	count := countOccupants(guild.VoiceStates, channelID.String())
	state.RUnlock()
	return platform.Occupancy{Exists: true, Count: count}, nil
}

var _ platform.Platform = (*Client)(nil)
