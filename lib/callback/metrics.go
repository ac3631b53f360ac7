// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package callback

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instrumentation for the callback
// endpoint. Construct with NewMetrics; the underlying registry is
// served on GET /metrics by Handler.Routes.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	authFailures    *prometheus.CounterVec
	rateLimited     prometheus.Counter
	dispatchSeconds *prometheus.HistogramVec
}

// NewMetrics creates a Metrics backed by a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowent_callback_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		),
		authFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowent_callback_auth_failures_total",
				Help: "Rejected requests by reason (missing_signature, bad_signature, missing_timestamp, stale_timestamp)",
			},
			[]string{"reason"},
		),
		rateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "flowent_callback_rate_limited_total",
				Help: "Requests rejected by the per-client rate limiter",
			},
		),
		dispatchSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flowent_callback_dispatch_duration_seconds",
				Help:    "Handler execution time by action and outcome",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action", "outcome"},
		),
	}
}

// Gatherer exposes the registry for the /metrics endpoint.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

func (m *Metrics) observeRequest(route string, status int) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) observeAuthFailure(reason string) {
	m.authFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) observeDispatch(actionName, outcome string, elapsed time.Duration) {
	m.dispatchSeconds.WithLabelValues(actionName, outcome).Observe(elapsed.Seconds())
}
