// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provision outcomes for hushroom_provisions_total.
const (
	resultSuccess    = "success"
	resultRejected   = "rejected"
	resultCapability = "missing_capability"
	resultFailed     = "failed"
)

// Reclaim reasons for hushroom_reclaims_total.
const (
	reasonIdle           = "idle"
	reasonChannelDeleted = "channel_deleted"
	reasonChannelMissing = "channel_missing"
	reasonRequested      = "requested"
)

// Metrics holds the manager's Prometheus collectors.
type Metrics struct {
	RecordsActive   prometheus.Gauge
	Provisions      *prometheus.CounterVec
	Reclaims        *prometheus.CounterVec
	CleanupFailures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with registerer.
// A nil registerer leaves them unregistered, which is what tests that do
// not inspect metrics want.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		RecordsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hushroom_records_active",
			Help: "Private channels currently tracked for expiry.",
		}),
		Provisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hushroom_provisions_total",
			Help: "Provisioning requests by outcome.",
		}, []string{"result"}),
		Reclaims: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hushroom_reclaims_total",
			Help: "Records removed from tracking, by reason.",
		}, []string{"reason"}),
		CleanupFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hushroom_cleanup_failures_total",
			Help: "Best-effort deletes that failed, by resource.",
		}, []string{"resource"}),
	}
}
