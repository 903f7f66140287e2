// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics holds the Prometheus collectors for the session gate and
// the auth action layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gate decisions.
const (
	DecisionPublic   = "public"
	DecisionAllowed  = "allowed"
	DecisionRedirect = "redirect"
	DecisionError    = "provider_error"
)

// Action outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
	OutcomePanic       = "panic"
)

// Metrics contains the custom collectors. A nil *Metrics records nothing.
type Metrics struct {
	GateDecisions *prometheus.CounterVec
	AuthActions   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notesput_session_gate_decisions_total",
				Help: "Total number of session gate decisions by outcome",
			},
			[]string{"decision"},
		),
		AuthActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notesput_auth_actions_total",
				Help: "Total number of auth actions by action and outcome",
			},
			[]string{"action", "outcome"},
		),
	}

	reg.MustRegister(m.GateDecisions)
	reg.MustRegister(m.AuthActions)

	return m
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// RecordGateDecision increments the gate decision counter.
func (m *Metrics) RecordGateDecision(decision string) {
	if m == nil {
		return
	}
	m.GateDecisions.WithLabelValues(decision).Inc()
}

// RecordAuthAction increments the auth action counter.
func (m *Metrics) RecordAuthAction(action, outcome string) {
	if m == nil {
		return
	}
	m.AuthActions.WithLabelValues(action, outcome).Inc()
}
