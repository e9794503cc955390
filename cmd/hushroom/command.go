// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/bureau-foundation/hushroom/lib/ref"
	"github.com/bureau-foundation/hushroom/lifecycle"
	"github.com/bureau-foundation/hushroom/platform"
)

const (
	thresholdOption  = "timeout"
	inviteeOptionFmt = "user%d"
)

// commandDefinition builds the slash command offering one choice per
// threshold and maxInvitees user options, the first of them required.
func commandDefinition(name string, thresholds []int, maxInvitees int) *discordgo.ApplicationCommand {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(thresholds))
	for i, minutes := range thresholds {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{
			Name:  thresholdChoiceName(minutes),
			Value: minutes,
		}
	}

	options := []*discordgo.ApplicationCommandOption{{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        thresholdOption,
		Description: "Delete after no activity (minutes)",
		Required:    true,
		Choices:     choices,
	}}
	for n := 1; n <= maxInvitees; n++ {
		description := fmt.Sprintf("User %d to invite (optional)", n)
		if n == 1 {
			description = "First user to invite"
		}
		options = append(options, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        fmt.Sprintf(inviteeOptionFmt, n),
			Description: description,
			Required:    n == 1,
		})
	}

	connect := int64(discordgo.PermissionVoiceConnect)
	dmPermission := false
	return &discordgo.ApplicationCommand{
		Type:                     discordgo.ChatApplicationCommand,
		Name:                     name,
		Description:              "Create a private voice channel",
		Options:                  options,
		DefaultMemberPermissions: &connect,
		DMPermission:             &dmPermission,
	}
}

func thresholdChoiceName(minutes int) string {
	switch minutes {
	case 0:
		return "Immediately"
	case 1:
		return "1 minute"
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}

// parseRequest turns a command interaction into a provisioning request.
// Invitees keep the order of their option numbers.
func parseRequest(interaction *discordgo.Interaction) (lifecycle.Request, error) {
	var request lifecycle.Request

	guild, err := ref.ParseGuildID(interaction.GuildID)
	if err != nil || interaction.Member == nil || interaction.Member.User == nil {
		return request, &lifecycle.ValidationError{Field: "context", Reason: "command must be used in a server"}
	}
	requester, err := ref.ParseUserID(interaction.Member.User.ID)
	if err != nil {
		return request, &lifecycle.ValidationError{Field: "requester", Reason: err.Error()}
	}
	request.Guild = guild
	request.Requester = requester
	if channel, err := ref.ParseChannelID(interaction.ChannelID); err == nil {
		request.InvokingChannel = channel
	}

	type numbered struct {
		n    int
		user ref.UserID
	}
	var invitees []numbered
	thresholdSeen := false
	for _, option := range interaction.ApplicationCommandData().Options {
		switch {
		case option.Name == thresholdOption:
			if option.Type != discordgo.ApplicationCommandOptionInteger {
				return request, &lifecycle.ValidationError{Field: "threshold", Reason: "not an integer"}
			}
			request.Threshold = int(option.IntValue())
			thresholdSeen = true

		case strings.HasPrefix(option.Name, "user"):
			n, err := strconv.Atoi(strings.TrimPrefix(option.Name, "user"))
			if err != nil || option.Type != discordgo.ApplicationCommandOptionUser {
				continue
			}
			raw, _ := option.Value.(string)
			user, err := ref.ParseUserID(raw)
			if err != nil {
				return request, &lifecycle.ValidationError{Field: option.Name, Reason: err.Error()}
			}
			invitees = append(invitees, numbered{n: n, user: user})
		}
	}
	if !thresholdSeen {
		return request, &lifecycle.ValidationError{Field: "threshold", Reason: "missing"}
	}

	slices.SortFunc(invitees, func(a, b numbered) int { return a.n - b.n })
	for _, invitee := range invitees {
		request.Invitees = append(request.Invitees, invitee.user)
	}
	return request, nil
}

// replyFor renders the ephemeral reply for a provisioning outcome.
func replyFor(result *lifecycle.Result, err error) string {
	if err == nil {
		return fmt.Sprintf("Your private channel **%s** is ready!", result.Label)
	}

	var capabilityErr *lifecycle.CapabilityError
	if errors.As(err, &capabilityErr) {
		return fmt.Sprintf("**Missing Permissions**: The bot needs these permissions to work:\n`%s`\n\n"+
			"Please ask a server admin to grant these permissions to the bot.",
			platform.JoinCapabilities(capabilityErr.Missing))
	}

	var validationErr *lifecycle.ValidationError
	if errors.As(err, &validationErr) {
		if validationErr.Field == "context" {
			return "This command can only be used in a server."
		}
		return fmt.Sprintf("**Invalid request**: %s", validationErr.Reason)
	}

	var platformErr *platform.Error
	if errors.As(err, &platformErr) {
		switch platformErr.Code {
		case platform.ErrCodeMissingPermissions:
			return "**Missing Permissions**: The bot doesn't have permission to create channels or roles in this server. " +
				"Please ask a server admin to grant the bot proper permissions."
		case platform.ErrCodeMissingAccess:
			return "**Access Denied**: The bot doesn't have access to this channel or category. " +
				"Please check the bot's permissions."
		}
	}
	return "Something went wrong creating your channel."
}
