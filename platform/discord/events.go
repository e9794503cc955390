// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/bureau-foundation/hushroom/lib/ref"
)

// Handlers receives channel events. Either field may be nil. discordgo
// runs each event on its own goroutine, so handlers must be safe for
// concurrent use.
type Handlers struct {
	// OccupancyChanged is called when a member joins, leaves, or moves
	// into or out of a voice channel. A move calls it for both channels.
	OccupancyChanged func(ctx context.Context, guild ref.GuildID, channel ref.ChannelID)

	// ChannelDeleted is called when a voice channel is deleted.
	ChannelDeleted func(ctx context.Context, guild ref.GuildID, channel ref.ChannelID)
}

// Subscribe registers handlers on session. Events are delivered with
// ctx; once it is canceled events are dropped. The returned function
// removes the registrations.
func Subscribe(ctx context.Context, session *discordgo.Session, handlers Handlers, logger *slog.Logger) (unsubscribe func()) {
	if logger == nil {
		logger = slog.Default()
	}
	var removers []func()

	if handlers.OccupancyChanged != nil {
		removers = append(removers, session.AddHandler(func(_ *discordgo.Session, update *discordgo.VoiceStateUpdate) {
			if ctx.Err() != nil || update.VoiceState == nil {
				return
			}
			guild, err := ref.ParseGuildID(update.GuildID)
			if err != nil {
				return
			}
			for _, raw := range voiceStateChannels(update) {
				channel, err := ref.ParseChannelID(raw)
				if err != nil {
					logger.Debug("ignoring voice state with invalid channel ID", "channel", raw, "error", err)
					continue
				}
				handlers.OccupancyChanged(ctx, guild, channel)
			}
		}))
	}

	if handlers.ChannelDeleted != nil {
		removers = append(removers, session.AddHandler(func(_ *discordgo.Session, deleted *discordgo.ChannelDelete) {
			if ctx.Err() != nil || deleted.Channel == nil || !isVoice(deleted.Channel) {
				return
			}
			guild, err := ref.ParseGuildID(deleted.GuildID)
			if err != nil {
				return
			}
			channel, err := ref.ParseChannelID(deleted.ID)
			if err != nil {
				return
			}
			handlers.ChannelDeleted(ctx, guild, channel)
		}))
	}

	return func() {
		for _, remove := range removers {
			remove()
		}
	}
}

// voiceStateChannels returns the channels whose occupancy a voice state
// update changes: the channel left and the channel joined, deduplicated,
// skipping empty IDs. Mute and deafen updates report the same channel
// on both sides, which still counts as one change.
func voiceStateChannels(update *discordgo.VoiceStateUpdate) []string {
	var channels []string
	if update.BeforeUpdate != nil && update.BeforeUpdate.ChannelID != "" {
		channels = append(channels, update.BeforeUpdate.ChannelID)
	}
	if update.VoiceState != nil && update.ChannelID != "" {
		if len(channels) == 0 || channels[0] != update.ChannelID {
			channels = append(channels, update.ChannelID)
		}
	}
	return channels
}

func isVoice(channel *discordgo.Channel) bool {
	return channel.Type == discordgo.ChannelTypeGuildVoice || channel.Type == discordgo.ChannelTypeGuildStageVoice
}
