// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.
package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/Fantom-foundation/vtree/common/interrupt"
	"github.com/Fantom-foundation/vtree/common/ticker"
	"github.com/Fantom-foundation/vtree/database/vtree"
)

var Repair = cli.Command{
	Action:    repair,
	Name:      "repair",
	Usage:     "removes bogus stale keys left behind by truncated versions, runs until interrupted",
	ArgsUsage: "<directory>",
	Flags: []cli.Flag{
		&parallelismFlag,
		&pollIntervalFlag,
		&progressIntervalFlag,
		&metricsAddrFlag,
	},
}

var (
	parallelismFlag = cli.Uint64Flag{
		Name:  "parallelism",
		Usage: "number of versions checked concurrently, 0 selects the number of CPUs",
	}
	pollIntervalFlag = cli.DurationFlag{
		Name:  "poll-interval",
		Usage: "time to wait for new versions once all versions are checked",
		Value: vtree.DefaultStaleKeysRepairPollInterval,
	}
	progressIntervalFlag = cli.DurationFlag{
		Name:  "progress-interval",
		Usage: "interval of progress reports",
		Value: 10 * time.Second,
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "address to serve Prometheus metrics on, e.g. localhost:6060, disabled if empty",
	}
)

func repair(context *cli.Context) error {
	return withDatabase(context, func(db *vtree.NodeDatabase) error {
		if addr := context.String(metricsAddrFlag.Name); addr != "" {
			server := startMetricsServer(addr)
			defer server.Close()
		}

		task, handle := vtree.NewStaleKeysRepairTask(db, vtree.StaleKeysRepairConfig{
			Parallelism:  context.Uint64(parallelismFlag.Name),
			PollInterval: context.Duration(pollIntervalFlag.Name),
		})

		stop := abortOnInterrupt(context.Context, handle.Abort)
		defer stop()

		reporter := newProgressReporter(db, ticker.NewTimeTicker(context.Duration(progressIntervalFlag.Name)), context.App.Writer)
		stopReporter := reporter.start()
		defer stopReporter()

		log.Info("Starting stale keys repair", "parallelism", context.Uint64(parallelismFlag.Name), "pollInterval", context.Duration(pollIntervalFlag.Name))
		return task.Run()
	})
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Serving metrics", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "err", err)
		}
	}()
	return server
}

// abortOnInterrupt calls abort once the process receives SIGINT or SIGTERM,
// letting the repair task finish its current step. The returned function
// stops listening for signals.
func abortOnInterrupt(parent context.Context, abort func()) (stop func()) {
	ctx, cancel := context.WithCancel(parent)
	release := interrupt.OnCancel(interrupt.Register(ctx), abort)
	return func() {
		release()
		cancel()
	}
}
