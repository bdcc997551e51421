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
	"fmt"
	"io"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/gekkoemu/gekko/logger"
)

// PendingEvent describes a single entry in the event queue. Used for
// diagnostic purposes only.
type PendingEvent struct {
	Time      int64
	FifoOrder uint64
	Userdata  uint64
	Type      string
}

// PendingEvents returns a copy of the event queue, sorted by dispatch
// order.
func (ct *CoreTiming) PendingEvents() []PendingEvent {
	snap := ct.queue.snapshotSorted()

	pending := make([]PendingEvent, 0, len(snap))
	for _, ev := range snap {
		pending = append(pending, PendingEvent{
			Time:      ev.time,
			FifoOrder: ev.fifoOrder,
			Userdata:  ev.userdata,
			Type:      ev.typ.name,
		})
	}

	return pending
}

// LogPendingEvents writes every pending event to the logger, in dispatch
// order.
func (ct *CoreTiming) LogPendingEvents() {
	for _, ev := range ct.PendingEvents() {
		logger.Logf(logger.Allow, "coretiming", "PENDING: Now: %d Pending: %d Type: %s",
			ct.globalTimer, ev.Time, ev.Type)
	}
}

// GetScheduledEventsSummary returns a string describing every pending
// event, in dispatch order. Intended for debugging displays.
func (ct *CoreTiming) GetScheduledEventsSummary() string {
	s := strings.Builder{}
	s.WriteString("Scheduled events\n")

	for _, ev := range ct.PendingEvents() {
		s.WriteString(fmt.Sprintf("%s : %d %016x\n", ev.Type, ev.Time, ev.Userdata))
	}

	return s.String()
}

// VisualiseQueue writes a graphviz dot representation of the pending event
// queue to the io.Writer. Render with, for example:
//
//	dot -Tpng -o queue.png queue.dot
func (ct *CoreTiming) VisualiseQueue(w io.Writer) {
	pending := ct.PendingEvents()
	memviz.Map(w, &pending)
}
