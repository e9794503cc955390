// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"fmt"

	"github.com/bureau-foundation/hushroom/lib/ref"
	"github.com/bureau-foundation/hushroom/platform"
)

// ValidationError rejects a request before any platform call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CapabilityError reports the guild permissions the bot lacks. No
// resources are created when it is returned.
type CapabilityError struct {
	Missing []platform.Capability
}

func (e *CapabilityError) Error() string {
	return "missing capabilities: " + platform.JoinCapabilities(e.Missing)
}

// Step names the provisioning stage that failed.
type Step string

const (
	StepCheckCapabilities Step = "check capabilities"
	StepResolveMembers    Step = "resolve members"
	StepGenerateLabel     Step = "generate label"
	StepCreateGroup       Step = "create role"
	StepGrantGroup        Step = "grant role"
	StepCreateChannel     Step = "create channel"
	StepTrack             Step = "track record"
)

// ProvisioningError reports a platform failure partway through
// provisioning. Err is usually a *platform.Error; use errors.As or
// platform.IsError to inspect it.
type ProvisioningError struct {
	Step Step
	Err  error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning failed at %s: %v", e.Step, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// CleanupError records a failed best-effort delete. Cleanup logs these
// and carries on; they never reach a requester.
type CleanupError struct {
	// Resource is "channel" or "role".
	Resource string
	ID       string
	Group    ref.RoleID
	Err      error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("deleting %s %s (role %s): %v", e.Resource, e.ID, e.Group, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }
