// Copyright 2025 Meridian Protocol
//
// Prometheus Metrics Registry
// Queue-depth gauges and submit-outcome counters exposed on /metrics

// Package metrics exposes the bridge's queue-depth and submit-outcome
// counters on /metrics via prometheus/client_golang.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry groups every counter/gauge the voter and relayer pipelines
// update, registered against its own prometheus.Registry instance so tests
// can construct a fresh one per case.
type Registry struct {
	reg *prometheus.Registry

	QueueDepth    *prometheus.GaugeVec
	SubmitOutcome *prometheus.CounterVec
}

// NewRegistry builds a Registry with every metric registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		QueueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bridge_queue_depth",
			Help: "Number of entries currently held in a named queue.",
		}, []string{"queue"}),
		SubmitOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_submit_outcome_total",
			Help: "Count of sequencer/chain submit outcomes by pipeline stage and result class.",
		}, []string{"stage", "class"}),
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
