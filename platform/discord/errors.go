// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/bureau-foundation/hushroom/platform"
)

// convertError maps a discordgo error onto *platform.Error, keeping the
// original as the wrapped cause.
func convertError(err error) error {
	if err == nil {
		return nil
	}
	converted := &platform.Error{Err: err}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Response != nil {
			converted.StatusCode = restErr.Response.StatusCode
		}
		if restErr.Message != nil {
			converted.Code = restErr.Message.Code
			converted.Message = restErr.Message.Message
		}
	}
	return converted
}
