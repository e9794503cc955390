// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bureau-foundation/hushroom/lib/clock"
	"github.com/bureau-foundation/hushroom/platform"
)

// Config configures a Manager. Platform and Clock are required; the
// remaining fields fall back to the defaults noted on each.
type Config struct {
	Platform platform.Platform
	Clock    clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics defaults to an unregistered set.
	Metrics *Metrics

	// Thresholds is the set of idle thresholds, in minutes, a request
	// may choose from. Defaults to 0, 1, 5, 15, 30, 60.
	Thresholds []int

	// MinimumDelay is the shortest time a timer is armed for. A zero
	// threshold is armed for this long so the first reclaim check does
	// not race the tail of provisioning. Defaults to one second.
	MinimumDelay time.Duration

	// MaxInvitees caps the invitees per request. Defaults to 10.
	MaxInvitees int

	// LabelPrefix and LabelLength shape generated channel names.
	// Defaults are "hush-" and 6.
	LabelPrefix string
	LabelLength int

	// Compensate deletes the role created by a provisioning attempt
	// whose later steps fail. When false the role is left in place.
	Compensate bool

	// Random is the label entropy source. Defaults to crypto/rand.
	Random io.Reader
}

// Manager owns the lifecycle of every provisioned channel.
type Manager struct {
	platform     platform.Platform
	clock        clock.Clock
	logger       *slog.Logger
	metrics      *Metrics
	thresholds   []int
	minimumDelay time.Duration
	maxInvitees  int
	labelPrefix  string
	labelLength  int
	compensate   bool
	random       io.Reader

	// ctx is the context for work the manager starts itself (timer
	// callbacks). Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	// mu guards the registry's contents as a whole and every record's
	// expiry. Never held across a platform call.
	mu       sync.Mutex
	registry *Registry
	closed   bool
}

// New creates a Manager.
func New(config Config) (*Manager, error) {
	if config.Platform == nil {
		return nil, errors.New("lifecycle: Platform is required")
	}
	if config.Clock == nil {
		return nil, errors.New("lifecycle: Clock is required")
	}

	manager := &Manager{
		platform:     config.Platform,
		clock:        config.Clock,
		logger:       config.Logger,
		metrics:      config.Metrics,
		thresholds:   slices.Clone(config.Thresholds),
		minimumDelay: config.MinimumDelay,
		maxInvitees:  config.MaxInvitees,
		labelPrefix:  config.LabelPrefix,
		labelLength:  config.LabelLength,
		compensate:   config.Compensate,
		random:       config.Random,
		registry:     NewRegistry(),
	}
	if manager.logger == nil {
		manager.logger = slog.Default()
	}
	if manager.metrics == nil {
		manager.metrics = NewMetrics(nil)
	}
	if len(manager.thresholds) == 0 {
		manager.thresholds = []int{0, 1, 5, 15, 30, 60}
	}
	if manager.minimumDelay <= 0 {
		manager.minimumDelay = time.Second
	}
	if manager.maxInvitees <= 0 {
		manager.maxInvitees = 10
	}
	if manager.labelPrefix == "" {
		manager.labelPrefix = "hush-"
	}
	if manager.labelLength <= 0 {
		manager.labelLength = 6
	}
	if manager.random == nil {
		manager.random = rand.Reader
	}
	manager.ctx, manager.cancel = context.WithCancel(context.Background())
	return manager, nil
}

// Thresholds returns the idle thresholds, in minutes, a request may use.
func (m *Manager) Thresholds() []int { return slices.Clone(m.thresholds) }

// MaxInvitees returns the per-request invitee cap.
func (m *Manager) MaxInvitees() int { return m.maxInvitees }

// Len returns the number of tracked records.
func (m *Manager) Len() int { return m.registry.Len() }

// Status returns a view of every tracked record, oldest first.
func (m *Manager) Status() []RecordStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.registry.Snapshot()
	statuses := make([]RecordStatus, len(records))
	for i, record := range records {
		statuses[i] = RecordStatus{
			Guild:     record.Guild,
			Group:     record.Group,
			Channel:   record.Channel,
			Label:     record.Label,
			Threshold: record.Threshold.String(),
			CreatedAt: record.CreatedAt,
		}
		if record.expiry.timer != nil {
			deadline := record.expiry.deadline
			statuses[i].ExpiresAt = &deadline
		}
	}
	return statuses
}

// Close stops every pending timer and cancels in-flight timer work.
// Tracked channels and roles are left in place. Provisioning after
// Close still creates resources but arms no timers.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	for _, record := range m.registry.Snapshot() {
		m.cancelLocked(record)
	}
	m.mu.Unlock()
	m.cancel()
}
