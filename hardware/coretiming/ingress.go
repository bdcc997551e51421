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

package coretiming

import (
	"sync"
)

// ingressQueue is the FIFO through which goroutines other than the CPU
// goroutine schedule events. Multiple producers are serialised by the crit
// lock; the single consumer is the CPU goroutine.
//
// Some callers (Shutdown() and DoState()) need to exclude producers for the
// duration of a larger critical section. They hold crit themselves and use
// the Locked variants of the queue functions.
type ingressQueue struct {
	crit   sync.Mutex
	events []event
}

func (q *ingressQueue) push(ev event) {
	q.crit.Lock()
	defer q.crit.Unlock()
	q.events = append(q.events, ev)
}

// drain removes and returns all staged events in FIFO order. The lock is
// held only long enough to swap out the backing slice.
func (q *ingressQueue) drain() []event {
	q.crit.Lock()
	defer q.crit.Unlock()
	return q.drainLocked()
}

// drainLocked is the same as drain() for callers already holding crit.
func (q *ingressQueue) drainLocked() []event {
	ev := q.events
	q.events = nil
	return ev
}
