// This file is part of Gekko.
//
// Gekko is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gekko is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gekko.  If not, see <https://www.gnu.org/licenses/>.

// Package performance contains helpers for measuring the performance of
// the emulation on the host machine.
//
// Nothing in this package is ever used to drive emulation timing. The
// virtual clock advances only by executed emulated cycles; wall-clock time
// is strictly for reporting and host-side throttling.
package performance

import (
	"time"
)

// Timer measures a wall-clock duration.
type Timer struct {
	start   time.Time
	end     time.Time
	running bool
}

// Start the timer, discarding any previous measurement.
func (tmr *Timer) Start() {
	tmr.start = time.Now()
	tmr.end = time.Time{}
	tmr.running = true
}

// StartWithOffset starts the timer as though it had been started offset
// ago.
func (tmr *Timer) StartWithOffset(offset time.Duration) {
	tmr.Start()
	tmr.start = tmr.start.Add(-offset)
}

// Stop the timer. The measurement is available through Elapsed functions.
func (tmr *Timer) Stop() {
	tmr.end = time.Now()
	tmr.running = false
}

// Running returns true if the timer has been started and not yet stopped.
func (tmr *Timer) Running() bool {
	return tmr.running
}

// Elapsed returns the measured duration. For a running timer this is the
// time since Start(); for a stopped timer the time between Start() and
// Stop(). A timer that has never been started measures zero.
func (tmr *Timer) Elapsed() time.Duration {
	if tmr.start.IsZero() {
		return 0
	}
	if tmr.running {
		return time.Since(tmr.start)
	}
	if tmr.end.Before(tmr.start) {
		return 0
	}
	return tmr.end.Sub(tmr.start)
}

// ElapsedMs returns the measured duration in milliseconds.
func (tmr *Timer) ElapsedMs() uint64 {
	return uint64(tmr.Elapsed().Milliseconds())
}
