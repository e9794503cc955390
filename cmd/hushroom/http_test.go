// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bureau-foundation/hushroom/lib/ref"
	"github.com/bureau-foundation/hushroom/lifecycle"
)

type staticConnection bool

func (c staticConnection) Connected() bool { return bool(c) }

type staticStatus []lifecycle.RecordStatus

func (s staticStatus) Status() []lifecycle.RecordStatus { return s }

func TestStatusRouterHealth(t *testing.T) {
	for _, connected := range []bool{true, false} {
		router := newStatusRouter(staticConnection(connected), staticStatus{}, prometheus.NewRegistry())
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		want := http.StatusOK
		if !connected {
			want = http.StatusServiceUnavailable
		}
		if recorder.Code != want {
			t.Errorf("connected=%v: /healthz = %d, want %d", connected, recorder.Code, want)
		}
	}
}

func TestStatusRouterMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	lifecycle.NewMetrics(registry).RecordsActive.Set(3)

	router := newStatusRouter(staticConnection(true), staticStatus{}, registry)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("/metrics = %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "hushroom_records_active 3") {
		t.Errorf("/metrics body missing records gauge:\n%s", recorder.Body.String())
	}
}

func TestStatusRouterRecords(t *testing.T) {
	expires := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
	records := staticStatus{{
		Guild:     ref.MustParseGuildID("100"),
		Group:     ref.MustParseRoleID("500"),
		Channel:   ref.MustParseChannelID("600"),
		Label:     "hush-AAAAAA",
		Threshold: "5m0s",
		CreatedAt: expires.Add(-5 * time.Minute),
		ExpiresAt: &expires,
	}}
	router := newStatusRouter(staticConnection(true), records, prometheus.NewRegistry())
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/debug/records", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("/debug/records = %d", recorder.Code)
	}
	var body struct {
		Records []lifecycle.RecordStatus `json:"records"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.Records) != 1 || body.Records[0].Label != "hush-AAAAAA" || body.Records[0].Group != records[0].Group {
		t.Errorf("records = %+v", body.Records)
	}
}
