// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for hushroom packages.
//
// [RequireReceive] and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls. Tests
// drive lifecycle timers with clock.Fake; these helpers are the only
// place real wall-clock timeouts appear, and only to stop a broken
// test from hanging.
//
// [Snowflake] returns a fresh decimal ID suitable for the ref parsers.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
