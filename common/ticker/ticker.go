// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.
package ticker

import "time"

// Ticker delivers periodic ticks on a channel. It is used by long running
// tools to report progress; tests replace it with a manually driven
// implementation to control when reports are produced.
type Ticker interface {
	// C returns the channel on which the ticks are delivered.
	C() <-chan time.Time

	// Stop turns off a ticker. After Stop, no more ticks will be sent.
	Stop()
}

// TimeTicker is a Ticker backed by time.Ticker.
type TimeTicker struct {
	ticker *time.Ticker
}

// NewTimeTicker creates a ticker firing in the given interval.
func NewTimeTicker(d time.Duration) TimeTicker {
	return TimeTicker{time.NewTicker(d)}
}

func (t TimeTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t TimeTicker) Stop() {
	t.ticker.Stop()
}

// ManualTicker is a Ticker producing ticks only when Tick is called.
type ManualTicker struct {
	c chan time.Time
}

// NewManualTicker creates a ticker with a buffer for the given number of
// pending ticks.
func NewManualTicker(buffer int) *ManualTicker {
	return &ManualTicker{c: make(chan time.Time, buffer)}
}

// Tick emits a tick with the current time. It blocks if the buffer is full.
func (t *ManualTicker) Tick() {
	t.c <- time.Now()
}

func (t *ManualTicker) C() <-chan time.Time {
	return t.c
}

func (t *ManualTicker) Stop() {}
