// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"time"
)

// ChannelID identifies a guild channel: a voice channel, a text channel,
// or a category. Channel IDs arrive from the gateway and from REST
// responses and are parsed into this type at the boundary.
//
// ChannelID is an immutable value type. The zero value is not valid;
// use IsZero to check. Optional channels (such as a missing parent
// category) are represented by the zero value.
type ChannelID struct {
	id string
}

// ParseChannelID validates and wraps a raw channel snowflake.
func ParseChannelID(raw string) (ChannelID, error) {
	if err := parseSnowflake("channel", raw); err != nil {
		return ChannelID{}, err
	}
	return ChannelID{id: raw}, nil
}

// MustParseChannelID is like ParseChannelID but panics on error. Use in tests
// and static initialization where the input is known-valid.
func MustParseChannelID(raw string) ChannelID {
	parsed, err := ParseChannelID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseChannelID(%q): %v", raw, err))
	}
	return parsed
}

// String returns the decimal snowflake.
func (r ChannelID) String() string { return r.id }

// IsZero reports whether the ChannelID is the zero value (uninitialized).
func (r ChannelID) IsZero() bool { return r.id == "" }

// CreatedAt returns the creation time encoded in the snowflake. Returns
// the zero time for a zero-value ChannelID.
func (r ChannelID) CreatedAt() time.Time {
	if r.id == "" {
		return time.Time{}
	}
	return snowflakeTime(r.id)
}

// MarshalText implements encoding.TextMarshaler.
func (r ChannelID) MarshalText() ([]byte, error) {
	if r.id == "" {
		return nil, nil
	}
	return []byte(r.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value.
func (r *ChannelID) UnmarshalText(data []byte) error {
	raw, err := unmarshalSnowflake("channel", data)
	if err != nil {
		return err
	}
	*r = ChannelID{id: raw}
	return nil
}
