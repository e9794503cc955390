// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"time"
)

// RoleID identifies a guild role. hushroom creates one role per private
// channel and uses it as the access-control group for that channel.
//
// A guild's @everyone role has the same snowflake as the guild itself;
// use [EveryoneRole] to obtain it.
type RoleID struct {
	id string
}

// ParseRoleID validates and wraps a raw role snowflake.
func ParseRoleID(raw string) (RoleID, error) {
	if err := parseSnowflake("role", raw); err != nil {
		return RoleID{}, err
	}
	return RoleID{id: raw}, nil
}

// MustParseRoleID is like ParseRoleID but panics on error. Use in tests
// and static initialization where the input is known-valid.
func MustParseRoleID(raw string) RoleID {
	parsed, err := ParseRoleID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseRoleID(%q): %v", raw, err))
	}
	return parsed
}

// String returns the decimal snowflake.
func (r RoleID) String() string { return r.id }

// IsZero reports whether the RoleID is the zero value (uninitialized).
func (r RoleID) IsZero() bool { return r.id == "" }

// CreatedAt returns the creation time encoded in the snowflake. Returns
// the zero time for a zero-value RoleID.
func (r RoleID) CreatedAt() time.Time {
	if r.id == "" {
		return time.Time{}
	}
	return snowflakeTime(r.id)
}

// MarshalText implements encoding.TextMarshaler.
func (r RoleID) MarshalText() ([]byte, error) {
	if r.id == "" {
		return nil, nil
	}
	return []byte(r.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value.
func (r *RoleID) UnmarshalText(data []byte) error {
	raw, err := unmarshalSnowflake("role", data)
	if err != nil {
		return err
	}
	*r = RoleID{id: raw}
	return nil
}

// EveryoneRole returns the @everyone role of a guild, which shares the
// guild's snowflake.
func EveryoneRole(guild GuildID) RoleID {
	return RoleID{id: guild.id}
}
