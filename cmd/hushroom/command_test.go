// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/bureau-foundation/hushroom/lib/ref"
	"github.com/bureau-foundation/hushroom/lifecycle"
	"github.com/bureau-foundation/hushroom/platform"
)

func TestCommandDefinition(t *testing.T) {
	command := commandDefinition("dnd", []int{0, 1, 5, 15, 30, 60}, 10)

	if command.Name != "dnd" || command.Description != "Create a private voice channel" {
		t.Errorf("command = %q %q", command.Name, command.Description)
	}
	if command.DMPermission == nil || *command.DMPermission {
		t.Error("command is usable in DMs")
	}
	if command.DefaultMemberPermissions == nil || *command.DefaultMemberPermissions != discordgo.PermissionVoiceConnect {
		t.Errorf("default member permissions = %v, want Connect", command.DefaultMemberPermissions)
	}
	if len(command.Options) != 11 {
		t.Fatalf("options = %d, want 11", len(command.Options))
	}

	threshold := command.Options[0]
	if threshold.Name != "timeout" || !threshold.Required || threshold.Type != discordgo.ApplicationCommandOptionInteger {
		t.Errorf("threshold option = %+v", threshold)
	}
	wantChoices := []string{"Immediately", "1 minute", "5 minutes", "15 minutes", "30 minutes", "60 minutes"}
	for i, choice := range threshold.Choices {
		if choice.Name != wantChoices[i] {
			t.Errorf("choice %d = %q, want %q", i, choice.Name, wantChoices[i])
		}
	}

	for n, option := range command.Options[1:] {
		wantName := fmt.Sprintf("user%d", n+1)
		if option.Name != wantName || option.Type != discordgo.ApplicationCommandOptionUser {
			t.Errorf("option %d = %s (%v), want user option %s", n+1, option.Name, option.Type, wantName)
		}
		if option.Required != (n == 0) {
			t.Errorf("%s required = %v", option.Name, option.Required)
		}
	}
}

func TestParseRequest(t *testing.T) {
	interaction := commandInteraction("i1",
		integerOption("timeout", 15),
		userOption("user3", "203"),
		userOption("user1", "201"),
		userOption("user2", "202"),
	)

	request, err := parseRequest(interaction)
	if err != nil {
		t.Fatalf("parseRequest: %v", err)
	}
	if request.Guild != ref.MustParseGuildID("100") || request.Requester != ref.MustParseUserID("200") {
		t.Errorf("guild/requester = %s/%s", request.Guild, request.Requester)
	}
	if request.InvokingChannel != ref.MustParseChannelID("300") {
		t.Errorf("invoking channel = %s, want 300", request.InvokingChannel)
	}
	if request.Threshold != 15 {
		t.Errorf("threshold = %d, want 15", request.Threshold)
	}
	want := []string{"201", "202", "203"}
	if len(request.Invitees) != len(want) {
		t.Fatalf("invitees = %v, want %v", request.Invitees, want)
	}
	for i, invitee := range request.Invitees {
		if invitee.String() != want[i] {
			t.Errorf("invitee %d = %s, want %s", i, invitee, want[i])
		}
	}
}

func TestParseRequestRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*discordgo.Interaction)
		field  string
	}{
		{
			name:   "direct message",
			mutate: func(i *discordgo.Interaction) { i.GuildID = ""; i.Member = nil; i.User = &discordgo.User{ID: "200"} },
			field:  "context",
		},
		{
			name: "missing threshold",
			mutate: func(i *discordgo.Interaction) {
				i.Data = discordgo.ApplicationCommandInteractionData{
					Name:    "dnd",
					Options: []*discordgo.ApplicationCommandInteractionDataOption{userOption("user1", "201")},
				}
			},
			field: "threshold",
		},
		{
			name: "malformed user",
			mutate: func(i *discordgo.Interaction) {
				i.Data = discordgo.ApplicationCommandInteractionData{
					Name: "dnd",
					Options: []*discordgo.ApplicationCommandInteractionDataOption{
						integerOption("timeout", 1),
						userOption("user1", "not-a-snowflake"),
					},
				}
			},
			field: "user1",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			interaction := commandInteraction("i1", integerOption("timeout", 1), userOption("user1", "201"))
			test.mutate(interaction)
			_, err := parseRequest(interaction)
			var validationErr *lifecycle.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("err = %v, want *lifecycle.ValidationError", err)
			}
			if validationErr.Field != test.field {
				t.Errorf("field = %q, want %q", validationErr.Field, test.field)
			}
		})
	}
}

func TestReplyFor(t *testing.T) {
	tests := []struct {
		name     string
		result   *lifecycle.Result
		err      error
		contains string
	}{
		{
			name:     "success",
			result:   &lifecycle.Result{Label: "hush-AB12CD"},
			contains: "Your private channel **hush-AB12CD** is ready!",
		},
		{
			name: "missing capabilities",
			err: &lifecycle.CapabilityError{Missing: []platform.Capability{
				platform.CapabilityManageRoles, platform.CapabilityManageChannels,
			}},
			contains: "`Manage Roles, Manage Channels`",
		},
		{
			name: "permission denied mid-provision",
			err: &lifecycle.ProvisioningError{
				Step: lifecycle.StepCreateChannel,
				Err:  &platform.Error{Code: platform.ErrCodeMissingPermissions, StatusCode: 403},
			},
			contains: "**Missing Permissions**: The bot doesn't have permission",
		},
		{
			name: "access denied",
			err: &lifecycle.ProvisioningError{
				Step: lifecycle.StepCreateChannel,
				Err:  &platform.Error{Code: platform.ErrCodeMissingAccess, StatusCode: 403},
			},
			contains: "**Access Denied**",
		},
		{
			name:     "used outside a server",
			err:      &lifecycle.ValidationError{Field: "context", Reason: "command must be used in a server"},
			contains: "only be used in a server",
		},
		{
			name:     "invalid threshold",
			err:      &lifecycle.ValidationError{Field: "threshold", Reason: "7 minutes is not one of [0 1]"},
			contains: "**Invalid request**: 7 minutes",
		},
		{
			name:     "anything else",
			err:      &lifecycle.ProvisioningError{Step: lifecycle.StepCreateGroup, Err: errors.New("boom")},
			contains: "Something went wrong creating your channel.",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			reply := replyFor(test.result, test.err)
			if !strings.Contains(reply, test.contains) {
				t.Errorf("reply = %q, want it to contain %q", reply, test.contains)
			}
			if strings.Contains(reply, "boom") {
				t.Errorf("reply leaks internal error: %q", reply)
			}
		})
	}
}

func commandInteraction(id string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        id,
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "100",
		ChannelID: "300",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "200"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    "dnd",
			Options: options,
		},
	}
}

func integerOption(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	// Gateway JSON decodes numbers as float64.
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}

func userOption(name, id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionUser,
		Value: id,
	}
}
