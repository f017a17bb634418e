// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.
package vtree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	bogusKindUnreachable = "unreachable"
	bogusKindUnexplained = "unexplained"
)

var (
	repairCheckedVersions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vtree",
		Subsystem: "stale_keys_repair",
		Name:      "checked_versions_total",
		Help:      "Number of tree versions checked for bogus stale keys.",
	})
	repairRemovedKeys = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vtree",
		Subsystem: "stale_keys_repair",
		Name:      "removed_keys_total",
		Help:      "Number of bogus stale keys removed, by kind.",
	}, []string{"kind"})
	repairNextVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vtree",
		Subsystem: "stale_keys_repair",
		Name:      "next_version",
		Help:      "First tree version not checked for bogus stale keys yet.",
	})
	repairStepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vtree",
		Subsystem: "stale_keys_repair",
		Name:      "step_duration_seconds",
		Help:      "Duration of repair steps that made progress.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	})
)
