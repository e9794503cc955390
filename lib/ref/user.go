// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"time"
)

// UserID identifies a Discord user. Within a guild the same ID also
// identifies the user's guild member.
type UserID struct {
	id string
}

// ParseUserID validates and wraps a raw user snowflake.
func ParseUserID(raw string) (UserID, error) {
	if err := parseSnowflake("user", raw); err != nil {
		return UserID{}, err
	}
	return UserID{id: raw}, nil
}

// MustParseUserID is like ParseUserID but panics on error. Use in tests
// and static initialization where the input is known-valid.
func MustParseUserID(raw string) UserID {
	parsed, err := ParseUserID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseUserID(%q): %v", raw, err))
	}
	return parsed
}

// String returns the decimal snowflake.
func (r UserID) String() string { return r.id }

// IsZero reports whether the UserID is the zero value (uninitialized).
func (r UserID) IsZero() bool { return r.id == "" }

// CreatedAt returns the creation time encoded in the snowflake. Returns
// the zero time for a zero-value UserID.
func (r UserID) CreatedAt() time.Time {
	if r.id == "" {
		return time.Time{}
	}
	return snowflakeTime(r.id)
}

// MarshalText implements encoding.TextMarshaler.
func (r UserID) MarshalText() ([]byte, error) {
	if r.id == "" {
		return nil, nil
	}
	return []byte(r.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value.
func (r *UserID) UnmarshalText(data []byte) error {
	raw, err := unmarshalSnowflake("user", data)
	if err != nil {
		return err
	}
	*r = UserID{id: raw}
	return nil
}
