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
	"runtime"
	"time"
)

// StaleKeysRepairConfig configures a StaleKeysRepairTask.
type StaleKeysRepairConfig struct {
	// Parallelism is the number of versions checked concurrently in a single
	// step. Zero selects the number of usable CPUs.
	Parallelism uint64
	// PollInterval is the time to wait for new versions once all versions
	// are checked. Zero selects DefaultStaleKeysRepairPollInterval.
	PollInterval time.Duration
}

// DefaultStaleKeysRepairPollInterval is used if no poll interval is configured.
const DefaultStaleKeysRepairPollInterval = 60 * time.Second

// DefaultStaleKeysRepairConfig returns the configuration used if no
// parameters are overridden.
func DefaultStaleKeysRepairConfig() StaleKeysRepairConfig {
	return StaleKeysRepairConfig{
		Parallelism:  defaultParallelism(),
		PollInterval: DefaultStaleKeysRepairPollInterval,
	}
}

func (c StaleKeysRepairConfig) withDefaults() StaleKeysRepairConfig {
	if c.Parallelism == 0 {
		c.Parallelism = defaultParallelism()
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultStaleKeysRepairPollInterval
	}
	return c
}

func defaultParallelism() uint64 {
	return uint64(max(runtime.GOMAXPROCS(0), 1))
}
