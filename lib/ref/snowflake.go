// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strconv"
	"time"
)

// discordEpoch is the first millisecond of 2015, the zero point of the
// timestamp encoded in the top 42 bits of every Discord snowflake.
const discordEpoch = 1420070400000

// parseSnowflake validates a decimal snowflake string. kind names the
// entity for error messages ("guild", "role", ...).
func parseSnowflake(kind, raw string) error {
	if raw == "" {
		return fmt.Errorf("empty %s ID", kind)
	}
	if len(raw) > 20 {
		return fmt.Errorf("%s ID too long (%d digits): %q", kind, len(raw), raw)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return fmt.Errorf("%s ID must be a decimal snowflake: %q", kind, raw)
		}
	}
	if _, err := strconv.ParseUint(raw, 10, 64); err != nil {
		return fmt.Errorf("%s ID out of range: %q", kind, raw)
	}
	return nil
}

// snowflakeTime extracts the creation timestamp embedded in a snowflake.
// The input must already be validated.
func snowflakeTime(raw string) time.Time {
	value, _ := strconv.ParseUint(raw, 10, 64)
	return time.UnixMilli(int64(value>>22) + discordEpoch).UTC()
}

// unmarshalSnowflake is the shared UnmarshalText body. An empty input
// produces the zero value.
func unmarshalSnowflake(kind string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	raw := string(data)
	if err := parseSnowflake(kind, raw); err != nil {
		return "", err
	}
	return raw, nil
}
