// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"errors"
	"fmt"
)

// Error represents a structured error response from the platform API.
// Callers can use errors.As to extract the structured information:
//
//	var platformErr *platform.Error
//	if errors.As(err, &platformErr) {
//	    if platformErr.Code == platform.ErrCodeMissingPermissions { ... }
//	}
type Error struct {
	// Code is the Discord JSON error code (e.g., 50013). Zero when the
	// failure happened before a response was decoded.
	Code int
	// Message is the human-readable error description from the server.
	Message string
	// StatusCode is the HTTP status code of the response, or zero.
	StatusCode int
	// Err is the underlying transport or library error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Code == 0 && e.StatusCode == 0 && e.Err != nil {
		return fmt.Sprintf("platform: %v", e.Err)
	}
	return fmt.Sprintf("platform: %d (%d): %s", e.Code, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Discord JSON error codes hushroom reacts to.
const (
	ErrCodeUnknownChannel     = 10003
	ErrCodeUnknownGuild       = 10004
	ErrCodeUnknownMember      = 10007
	ErrCodeUnknownRole        = 10011
	ErrCodeUnknownUser        = 10013
	ErrCodeMissingAccess      = 50001
	ErrCodeMissingPermissions = 50013
)

// IsError checks whether err is a *Error with the given code.
func IsError(err error, code int) bool {
	var platformErr *Error
	if errors.As(err, &platformErr) {
		return platformErr.Code == code
	}
	return false
}

// IsNotFound reports whether err says the addressed entity does not
// exist. Deleting something that is already gone is success for
// cleanup purposes.
func IsNotFound(err error) bool {
	var platformErr *Error
	if !errors.As(err, &platformErr) {
		return false
	}
	switch platformErr.Code {
	case ErrCodeUnknownChannel, ErrCodeUnknownGuild, ErrCodeUnknownMember,
		ErrCodeUnknownRole, ErrCodeUnknownUser:
		return true
	}
	return platformErr.Code == 0 && platformErr.StatusCode == 404
}
