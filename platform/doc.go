// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package platform defines the chat-platform operations the lifecycle
// manager consumes, independent of any client library.
//
// [Platform] is the full collaborator contract: capability checks for the
// bot, member resolution, role and channel creation and deletion, role
// grants, and the occupancy oracle. [Occupancy] answers "is this channel
// still there, and how many members are in it right now"; the answer is
// read at call time from the live gateway state, never memoized by the
// caller.
//
// Resources are described with plain value types: [GroupSpec] for the
// access-control role, [ChannelSpec] with its [Overwrite] list for the
// voice channel. Permission bits ([Permission]) and capabilities
// ([Capability]) are platform-neutral names; the discord subpackage maps
// them to Discord's bitfield.
//
// All API failures are returned as [*Error] carrying the platform's
// numeric JSON error code (50013 missing permissions, 10003 unknown
// channel, ...) and the HTTP status. [IsError] tests for a specific
// code; [IsNotFound] recognizes the "unknown entity" family, which
// cleanup treats as already deleted.
//
// Implementations: platform/discord (discordgo) for production and
// platform/platformtest (in-memory, call-recording) for tests.
package platform
