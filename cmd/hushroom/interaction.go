// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/bureau-foundation/hushroom/lib/clock"
	"github.com/bureau-foundation/hushroom/lifecycle"
)

const (
	// interactionLifetime is how long Discord keeps an interaction
	// token valid. Deliveries older than this cannot be answered, so
	// the duplicate guard forgets them.
	interactionLifetime = 15 * time.Minute

	// provisionTimeout bounds one command from defer to final edit.
	provisionTimeout = 2 * time.Minute
)

type provisioner interface {
	Provision(ctx context.Context, request lifecycle.Request) (*lifecycle.Result, error)
}

// responder answers one interaction: Defer acknowledges it privately,
// Edit replaces the deferred placeholder with the final text.
type responder interface {
	Defer(ctx context.Context) error
	Edit(ctx context.Context, content string) error
}

// commandHandler runs the slash command. Each interaction is deferred
// once and edited exactly once, and a redelivered interaction ID is
// ignored.
type commandHandler struct {
	ctx         context.Context
	name        string
	provisioner provisioner
	clock       clock.Clock
	logger      *slog.Logger

	mu      sync.Mutex
	handled map[string]time.Time
}

func newCommandHandler(ctx context.Context, name string, provisioner provisioner, logger *slog.Logger) *commandHandler {
	return &commandHandler{
		ctx:         ctx,
		name:        name,
		provisioner: provisioner,
		clock:       clock.Real(),
		logger:      logger,
		handled:     make(map[string]time.Time),
	}
}

func (h *commandHandler) handle(interaction *discordgo.Interaction, responder responder) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if interaction.ApplicationCommandData().Name != h.name {
		return
	}
	if !h.claim(interaction.ID) {
		h.logger.Debug("ignoring redelivered interaction", "interaction", interaction.ID)
		return
	}

	logger := h.logger.With(
		"request_id", uuid.NewString(),
		"interaction", interaction.ID,
		"guild", interaction.GuildID,
	)
	ctx, cancel := context.WithTimeout(h.ctx, provisionTimeout)
	defer cancel()

	if err := responder.Defer(ctx); err != nil {
		logger.Error("deferring interaction reply", "error", err)
		return
	}

	request, err := parseRequest(interaction)
	var result *lifecycle.Result
	if err == nil {
		result, err = h.provisioner.Provision(ctx, request)
	}
	if err != nil {
		logger.Warn("private channel request failed", "error", err)
	}

	if editErr := responder.Edit(ctx, replyFor(result, err)); editErr != nil {
		logger.Error("editing interaction reply", "error", editErr)
	}
}

// claim records id as handled and reports whether it was new.
func (h *commandHandler) claim(id string) bool {
	now := h.clock.Now()
	h.mu.Lock()
	defer h.mu.Unlock()

	for seen, at := range h.handled {
		if now.Sub(at) > interactionLifetime {
			delete(h.handled, seen)
		}
	}
	if _, exists := h.handled[id]; exists {
		return false
	}
	h.handled[id] = now
	return true
}

// interactionResponder answers through the Discord interaction webhook.
type interactionResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

func (r *interactionResponder) Defer(ctx context.Context) error {
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
}

func (r *interactionResponder) Edit(ctx context.Context, content string) error {
	_, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{Content: &content},
		discordgo.WithContext(ctx))
	return err
}
