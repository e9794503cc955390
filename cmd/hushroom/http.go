// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bureau-foundation/hushroom/lifecycle"
)

type connectionChecker interface {
	Connected() bool
}

type statusSource interface {
	Status() []lifecycle.RecordStatus
}

// newStatusRouter serves liveness, Prometheus metrics, and a JSON dump
// of tracked records.
func newStatusRouter(connection connectionChecker, records statusSource, gatherer prometheus.Gatherer) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !connection.Connected() {
			http.Error(w, "gateway disconnected", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok\n"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.Get("/debug/records", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		encoder.Encode(struct {
			Records []lifecycle.RecordStatus `json:"records"`
		}{Records: records.Status()})
	})
	return router
}
