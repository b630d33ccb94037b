// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spyglass",
		Subsystem: "orchestrator",
		Name:      "requests_total",
		Help:      "Orchestrated requests by terminal outcome",
	}, []string{"outcome"})

	requestLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "spyglass",
		Subsystem: "orchestrator",
		Name:      "request_latency_seconds",
		Help:      "End to end request latency including confirmation",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)
