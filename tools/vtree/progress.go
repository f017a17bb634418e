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
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Fantom-foundation/vtree/common/ticker"
	"github.com/Fantom-foundation/vtree/database/vtree"
)

// progressSource provides the data reported by a progressReporter.
type progressSource interface {
	Manifest() (vtree.Manifest, bool, error)
	StaleKeysRepairData() (vtree.StaleKeysRepairData, bool, error)
}

// progressReporter periodically prints the progress of the stale keys repair.
type progressReporter struct {
	source  progressSource
	ticker  ticker.Ticker
	out     io.Writer
	started time.Time
}

func newProgressReporter(source progressSource, ticker ticker.Ticker, out io.Writer) *progressReporter {
	return &progressReporter{source: source, ticker: ticker, out: out}
}

// start begins reporting in the background. The returned function stops the
// reporting and waits until the last report is written.
func (r *progressReporter) start() (stop func()) {
	r.started = time.Now()
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case <-r.ticker.C():
				r.report()
			}
		}
	}()
	return func() {
		r.ticker.Stop()
		close(done)
		wg.Wait()
	}
}

func (r *progressReporter) report() {
	elapsed := uint64(time.Since(r.started).Seconds())
	header := fmt.Sprintf("%s [t=%4d:%02d] - ", time.Now().Format("15:04:05"), elapsed/60, elapsed%60)

	manifest, _, err := r.source.Manifest()
	if err != nil {
		fmt.Fprintf(r.out, "%sfailed to read manifest: %v\n", header, err)
		return
	}
	data, found, err := r.source.StaleKeysRepairData()
	if err != nil {
		fmt.Fprintf(r.out, "%sfailed to read repair progress: %v\n", header, err)
		return
	}
	if !found {
		fmt.Fprintf(r.out, "%sstale keys repair not started, %d versions to check\n", header, manifest.VersionCount)
		return
	}
	fmt.Fprintf(r.out, "%sstale keys checked up to version %d of %d\n", header, data.NextVersion, manifest.VersionCount)
}
