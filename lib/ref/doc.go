// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable identity references for
// the Discord entities hushroom works with: guilds, roles, channels, and
// users.
//
// Discord identifies every entity with a snowflake: an unsigned 64-bit
// integer rendered as a decimal string. The types here all wrap the same
// validated string form, but they are distinct types so that a role ID
// can never be passed where a channel ID is expected. Constructors
// validate their input; once constructed a ref is immutable.
//
// JSON marshaling uses the decimal string via encoding.TextMarshaler,
// which matches how Discord itself serializes snowflakes (as strings, to
// survive JavaScript's 53-bit integers).
package ref
