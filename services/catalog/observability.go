// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	catalogSearchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spyglass",
		Subsystem: "catalog",
		Name:      "search_total",
		Help:      "Total catalog searches by outcome",
	}, []string{"outcome"})

	catalogSearchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "spyglass",
		Subsystem: "catalog",
		Name:      "search_latency_seconds",
		Help:      "End-to-end catalog search latency including fallback",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	catalogFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spyglass",
		Subsystem: "catalog",
		Name:      "fallback_total",
		Help:      "Times the table listing fallback was used",
	})

	catalogFilterDegradedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spyglass",
		Subsystem: "catalog",
		Name:      "filter_degraded_total",
		Help:      "Times the database filter was discarded to avoid emptying a result set",
	})
)
