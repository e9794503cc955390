// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/hushroom/lib/ref"
	"github.com/bureau-foundation/hushroom/platform"
)

// requiredCapabilities are checked before anything is created.
var requiredCapabilities = []platform.Capability{
	platform.CapabilityManageRoles,
	platform.CapabilityManageChannels,
	platform.CapabilityViewChannel,
}

// Request asks for a private channel.
type Request struct {
	Guild     ref.GuildID
	Requester ref.UserID

	// InvokingChannel is where the request was made. The new channel is
	// placed in the same category.
	InvokingChannel ref.ChannelID

	// Threshold is the idle threshold in minutes. It must be one of the
	// manager's configured thresholds.
	Threshold int

	Invitees []ref.UserID
}

// Result describes a provisioned channel.
type Result struct {
	Label   string
	Group   ref.RoleID
	Channel ref.ChannelID
	// Members are the users granted access, requester first.
	Members []ref.UserID
}

// Provision creates a role and a private voice channel for the requester
// and invitees, starts tracking the pair, and arms its expiry timer.
//
// Errors are *ValidationError (nothing attempted), *CapabilityError (the
// bot lacks guild permissions; nothing created), or *ProvisioningError (a
// platform call failed partway through).
func (m *Manager) Provision(ctx context.Context, request Request) (*Result, error) {
	if err := m.validate(request); err != nil {
		m.metrics.Provisions.WithLabelValues(resultRejected).Inc()
		return nil, err
	}

	result, err := m.provision(ctx, request)
	switch err.(type) {
	case nil:
		m.metrics.Provisions.WithLabelValues(resultSuccess).Inc()
	case *CapabilityError:
		m.metrics.Provisions.WithLabelValues(resultCapability).Inc()
	default:
		m.metrics.Provisions.WithLabelValues(resultFailed).Inc()
	}
	return result, err
}

func (m *Manager) validate(request Request) error {
	if count := len(request.Invitees); count < 1 || count > m.maxInvitees {
		return &ValidationError{
			Field:  "invitees",
			Reason: fmt.Sprintf("got %d, want between 1 and %d", count, m.maxInvitees),
		}
	}
	if !slices.Contains(m.thresholds, request.Threshold) {
		return &ValidationError{
			Field:  "threshold",
			Reason: fmt.Sprintf("%d minutes is not one of %v", request.Threshold, m.thresholds),
		}
	}
	if request.Guild.IsZero() || request.Requester.IsZero() {
		return &ValidationError{Field: "request", Reason: "guild and requester are required"}
	}
	return nil
}

func (m *Manager) provision(ctx context.Context, request Request) (*Result, error) {
	missing, err := m.platform.MissingCapabilities(ctx, request.Guild, requiredCapabilities)
	if err != nil {
		return nil, &ProvisioningError{Step: StepCheckCapabilities, Err: err}
	}
	if len(missing) > 0 {
		return nil, &CapabilityError{Missing: missing}
	}

	members, err := m.resolveMembers(ctx, request)
	if err != nil {
		return nil, &ProvisioningError{Step: StepResolveMembers, Err: err}
	}

	label, err := generateLabel(m.random, m.labelPrefix, m.labelLength)
	if err != nil {
		return nil, &ProvisioningError{Step: StepGenerateLabel, Err: err}
	}

	top, err := m.platform.ActorTopPosition(ctx, request.Guild)
	if err != nil {
		return nil, &ProvisioningError{Step: StepCreateGroup, Err: err}
	}
	group, err := m.platform.CreateGroup(ctx, request.Guild, platform.GroupSpec{
		Name:        label,
		Position:    max(top-1, 1),
		Mentionable: false,
	})
	if err != nil {
		return nil, &ProvisioningError{Step: StepCreateGroup, Err: err}
	}

	if err := m.grant(ctx, request.Guild, group, members); err != nil {
		m.compensateFailure(ctx, request.Guild, group, StepGrantGroup)
		return nil, &ProvisioningError{Step: StepGrantGroup, Err: err}
	}

	parent := m.parentOf(ctx, request.InvokingChannel)
	channel, err := m.platform.CreateChannel(ctx, request.Guild, platform.ChannelSpec{
		Name:       label,
		Parent:     parent,
		Overwrites: m.overwrites(request.Guild, group, members),
	})
	if err != nil {
		m.compensateFailure(ctx, request.Guild, group, StepCreateChannel)
		return nil, &ProvisioningError{Step: StepCreateChannel, Err: err}
	}

	record := newRecord(request.Guild, group, channel, label,
		time.Duration(request.Threshold)*time.Minute, m.clock.Now())

	m.mu.Lock()
	if err := m.registry.Insert(record); err != nil {
		m.mu.Unlock()
		return nil, &ProvisioningError{Step: StepTrack, Err: err}
	}
	m.metrics.RecordsActive.Set(float64(m.registry.Len()))
	m.armLocked(record)
	m.mu.Unlock()

	m.logger.Info("provisioned private channel",
		"guild", request.Guild,
		"group", group,
		"channel", channel,
		"label", label,
		"members", len(members),
		"threshold_minutes", request.Threshold,
	)
	return &Result{Label: label, Group: group, Channel: channel, Members: members}, nil
}

// resolveMembers returns the requester followed by every invitee that is
// a guild member, without duplicates. Invitees that do not resolve are
// dropped.
func (m *Manager) resolveMembers(ctx context.Context, request Request) ([]ref.UserID, error) {
	candidates := make([]ref.UserID, 0, len(request.Invitees))
	for _, invitee := range request.Invitees {
		if invitee.IsZero() || invitee == request.Requester || slices.Contains(candidates, invitee) {
			continue
		}
		candidates = append(candidates, invitee)
	}

	members := []ref.UserID{request.Requester}
	if len(candidates) == 0 {
		return members, nil
	}
	resolved, err := m.platform.ResolveMembers(ctx, request.Guild, candidates)
	if err != nil {
		return nil, err
	}
	for _, user := range resolved {
		if !slices.Contains(members, user) {
			members = append(members, user)
		}
	}
	if dropped := len(candidates) - (len(members) - 1); dropped > 0 {
		m.logger.Debug("dropped unresolvable invitees", "guild", request.Guild, "dropped", dropped)
	}
	return members, nil
}

// grant adds every member to group concurrently.
func (m *Manager) grant(ctx context.Context, guild ref.GuildID, group ref.RoleID, members []ref.UserID) error {
	grants, grantCtx := errgroup.WithContext(ctx)
	for _, member := range members {
		grants.Go(func() error {
			if err := m.platform.GrantGroup(grantCtx, guild, member, group); err != nil {
				return fmt.Errorf("granting role %s to %s: %w", group, member, err)
			}
			return nil
		})
	}
	return grants.Wait()
}

// parentOf returns the category of the invoking channel. Any failure to
// find one places the new channel at the top level.
func (m *Manager) parentOf(ctx context.Context, invoking ref.ChannelID) ref.ChannelID {
	if invoking.IsZero() {
		return ref.ChannelID{}
	}
	parent, err := m.platform.ParentOf(ctx, invoking)
	if err != nil {
		m.logger.Warn("cannot determine category of invoking channel, creating at top level",
			"channel", invoking,
			"error", err,
		)
		return ref.ChannelID{}
	}
	return parent
}

// overwrites hides the channel from @everyone and opens it to the bot,
// each member individually, and the role.
func (m *Manager) overwrites(guild ref.GuildID, group ref.RoleID, members []ref.UserID) []platform.Overwrite {
	access := platform.PermissionViewChannel | platform.PermissionConnect
	actor := m.platform.ActorID()

	overwrites := make([]platform.Overwrite, 0, len(members)+3)
	overwrites = append(overwrites,
		platform.RoleOverwrite(ref.EveryoneRole(guild), 0, platform.PermissionViewChannel),
		platform.MemberOverwrite(actor, platform.PermissionViewChannel|platform.PermissionManageChannels, 0),
	)
	for _, member := range members {
		if member == actor {
			continue
		}
		overwrites = append(overwrites, platform.MemberOverwrite(member, access, 0))
	}
	return append(overwrites, platform.RoleOverwrite(group, access, 0))
}

// compensationTimeout bounds the role delete after a failed provisioning.
const compensationTimeout = 30 * time.Second

// compensateFailure deletes the role of a provisioning attempt that
// failed at step, when compensation is enabled. The delete outlives
// cancellation of ctx, which is often what made the step fail.
func (m *Manager) compensateFailure(ctx context.Context, guild ref.GuildID, group ref.RoleID, step Step) {
	if !m.compensate {
		m.logger.Warn("provisioning failed, leaving role in place",
			"guild", guild,
			"group", group,
			"step", step,
		)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	err := m.platform.DeleteGroup(ctx, guild, group)
	if err != nil && !platform.IsNotFound(err) {
		m.metrics.CleanupFailures.WithLabelValues("role").Inc()
		m.logger.Warn("deleting role of failed provisioning",
			"guild", guild,
			"group", group,
			"step", step,
			"error", err,
		)
		return
	}
	m.logger.Info("deleted role of failed provisioning", "guild", guild, "group", group, "step", step)
}
