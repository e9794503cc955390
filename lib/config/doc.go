// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for hushroom.
//
// Configuration is loaded from a single file named by either the
// HUSHROOM_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no automatic file search.
//
// The file may carry environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. Development typically registers the
// slash command in a single test guild and logs at debug level.
//
// The bot token is never part of the file. [DiscordConfig] names where
// the token comes from (a file path or an environment variable) and the
// binary reads it into protected memory with lib/secret.
//
// Key exports:
//
//   - [Config] -- master struct with Discord, Lifecycle, HTTP, Log
//   - [Default] -- returns a Config with production-safe defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
package config
