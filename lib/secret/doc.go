// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds the bot token in memory that the garbage
// collector never sees.
//
// [Buffer] allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock, and excludes it from core dumps
// via madvise(MADV_DONTDUMP). Close zeroes, unlocks, and unmaps it.
//
// [ReadToken] loads the Discord bot token from a file, from stdin, or
// from an environment variable, trims it, and strips an optional
// "Bot " prefix so operators can paste either form.
//
// Depends on golang.org/x/sys/unix.
package secret
