// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package discord implements platform.Platform on a discordgo session.
//
// Writes (roles, channels, grants, deletes) go through the REST API.
// Reads prefer the session's gateway state cache, which the gateway
// keeps current, and fall back to REST when the cache has not seen an
// entity yet. Voice occupancy is read only from the cache: it is the
// live view the gateway maintains, and REST has no equivalent.
//
// The session must be created with the Guilds and GuildVoiceStates
// intents and state tracking enabled (discordgo's defaults), or
// occupancy will always read as empty.
//
// [Subscribe] turns gateway events into occupancy-change and
// channel-deleted callbacks.
package discord
