// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("aleutian.spyglass.discovery")

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	discoveryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spyglass",
		Subsystem: "discovery",
		Name:      "requests_total",
		Help:      "Discovery runs by result",
	}, []string{"result"})

	discoveryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "spyglass",
		Subsystem: "discovery",
		Name:      "latency_seconds",
		Help:      "Full discovery pipeline latency",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	llmCallTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spyglass",
		Subsystem: "llm",
		Name:      "calls_total",
		Help:      "LLM calls by purpose and outcome",
	}, []string{"purpose", "outcome"})

	llmCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "spyglass",
		Subsystem: "llm",
		Name:      "call_latency_seconds",
		Help:      "LLM call latency by purpose",
		Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"purpose"})
)
