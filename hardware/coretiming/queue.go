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
	"container/heap"
	"sort"
)

// eventHeap implements heap.Interface. Events are ordered by time, unless
// the times are the same, in which case they are ordered by the order they
// were added to the queue.
type eventHeap []event

func (h eventHeap) Len() int {
	return len(h)
}

func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].fifoOrder < h[j].fifoOrder
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	*h = old[:n-1]
	return ev
}

// pendingEvents is the queue of events waiting to be dispatched. We don't
// wrap the heap in anything cleverer because we need to be able to
// serialise and erase arbitrary events regardless of queue order; neither
// is accommodated by a pure priority queue interface.
type pendingEvents struct {
	heap eventHeap
}

func (p *pendingEvents) push(ev event) {
	heap.Push(&p.heap, ev)
}

func (p *pendingEvents) popMin() event {
	return heap.Pop(&p.heap).(event)
}

// peek must not be called on an empty queue.
func (p *pendingEvents) peek() event {
	return p.heap[0]
}

func (p *pendingEvents) empty() bool {
	return len(p.heap) == 0
}

func (p *pendingEvents) len() int {
	return len(p.heap)
}

func (p *pendingEvents) clear() {
	p.heap = p.heap[:0]
}

// append adds an event without maintaining the heap invariant. rebuild()
// must be called before the queue is next used for dispatch.
func (p *pendingEvents) append(ev event) {
	p.heap = append(p.heap, ev)
}

// rebuild re-establishes the heap invariant from scratch.
func (p *pendingEvents) rebuild() {
	heap.Init(&p.heap)
}

// retain keeps only the events for which the keep function returns true.
// Returns the number of events removed. Removing arbitrary events breaks
// the heap invariant so the queue is rebuilt if anything was removed.
func (p *pendingEvents) retain(keep func(event) bool) int {
	n := 0
	for _, ev := range p.heap {
		if keep(ev) {
			p.heap[n] = ev
			n++
		}
	}

	removed := len(p.heap) - n
	if removed > 0 {
		p.heap = p.heap[:n]
		p.rebuild()
	}

	return removed
}

// each calls the supplied function for every event in the queue, in raw
// heap order. The function must not alter the time or fifoOrder fields in
// any way that changes the relative order of events.
func (p *pendingEvents) each(f func(*event)) {
	for i := range p.heap {
		f(&p.heap[i])
	}
}

// snapshotSorted returns a copy of the queue sorted by dispatch order.
func (p *pendingEvents) snapshotSorted() []event {
	clone := make([]event, len(p.heap))
	copy(clone, p.heap)
	sort.Slice(clone, func(i, j int) bool {
		if clone[i].time != clone[j].time {
			return clone[i].time < clone[j].time
		}
		return clone[i].fifoOrder < clone[j].fifoOrder
	})
	return clone
}
