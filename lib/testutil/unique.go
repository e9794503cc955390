// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"strconv"
	"sync/atomic"
)

var uniqueCounter atomic.Uint64

// Snowflake returns a fresh decimal snowflake string. Values start well
// above the range of small hand-written test IDs so they never collide.
func Snowflake() string {
	return strconv.FormatUint(1_000_000_000_000+uniqueCounter.Add(1), 10)
}
