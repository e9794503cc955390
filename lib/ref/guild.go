// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"time"
)

// GuildID identifies a Discord guild (server). Roles and channels are
// always scoped to exactly one guild.
//
// GuildID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type GuildID struct {
	id string
}

// ParseGuildID validates and wraps a raw guild snowflake.
func ParseGuildID(raw string) (GuildID, error) {
	if err := parseSnowflake("guild", raw); err != nil {
		return GuildID{}, err
	}
	return GuildID{id: raw}, nil
}

// MustParseGuildID is like ParseGuildID but panics on error. Use in tests
// and static initialization where the input is known-valid.
func MustParseGuildID(raw string) GuildID {
	parsed, err := ParseGuildID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseGuildID(%q): %v", raw, err))
	}
	return parsed
}

// String returns the decimal snowflake.
func (r GuildID) String() string { return r.id }

// IsZero reports whether the GuildID is the zero value (uninitialized).
func (r GuildID) IsZero() bool { return r.id == "" }

// CreatedAt returns the creation time encoded in the snowflake. Returns
// the zero time for a zero-value GuildID.
func (r GuildID) CreatedAt() time.Time {
	if r.id == "" {
		return time.Time{}
	}
	return snowflakeTime(r.id)
}

// MarshalText implements encoding.TextMarshaler.
func (r GuildID) MarshalText() ([]byte, error) {
	if r.id == "" {
		return nil, nil
	}
	return []byte(r.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value.
func (r *GuildID) UnmarshalText(data []byte) error {
	raw, err := unmarshalSnowflake("guild", data)
	if err != nil {
		return err
	}
	*r = GuildID{id: raw}
	return nil
}
