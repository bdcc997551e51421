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
	"github.com/gekkoemu/gekko/logger"
	"github.com/gekkoemu/gekko/savestate"
)

// DoState saves or restores the scheduler's contribution to a save state,
// including the entire pending event queue.
//
// An event is serialised with the name of its type, not the type itself,
// because event types might not be registered in the same order (or at all)
// in the emulation the state is restored into. An event whose type name is
// no longer registered on restore is rebound to a placeholder type with an
// empty callback; its time and userdata are preserved so the dispatch order
// of the remaining events is unaffected.
func (ct *CoreTiming) DoState(s *savestate.Buffer) error {
	// producers are excluded for the whole of the save/restore sequence
	ct.ingress.crit.Lock()
	defer ct.ingress.crit.Unlock()

	s.Int32(&ct.sliceLength)
	s.Int64(&ct.globalTimer)
	s.Int64(&ct.idledCycles)
	s.Uint32(&ct.fakeDecStartValue)
	s.Uint64(&ct.fakeDecStartTicks)
	s.Uint64(&ct.fakeTBStartValue)
	s.Uint64(&ct.fakeTBStartTicks)
	s.Float32(&ct.lastOCFactor)
	ct.lastOCFactorInv = 1.0 / ct.lastOCFactor
	s.Uint64(&ct.eventFifoID)

	if err := s.Marker("CoreTimingData"); err != nil {
		return err
	}

	ct.moveEvents(ct.ingress.drainLocked())

	count := uint32(ct.queue.len())
	s.Uint32(&count)

	if s.Reading() {
		ct.queue.clear()
		for i := uint32(0); i < count; i++ {
			var ev event
			var name string

			s.Int64(&ev.time)
			s.Uint64(&ev.fifoOrder)
			s.Uint64(&ev.userdata)
			s.String(&name)
			if s.Error() != nil {
				return s.Error()
			}

			typ, ok := ct.eventTypes[name]
			if !ok {
				logger.Logf(logger.Allow, "coretiming",
					"lost event from savestate because its type %q has not been registered", name)
				typ = ct.evLost
			}
			ev.typ = typ

			ct.queue.append(ev)
		}
	} else {
		ct.queue.each(func(ev *event) {
			name := ev.typ.name
			s.Int64(&ev.time)
			s.Uint64(&ev.fifoOrder)
			s.Uint64(&ev.userdata)
			s.String(&name)
		})
	}

	if err := s.Marker("CoreTimingEvents"); err != nil {
		return err
	}

	// the events were written in raw heap order, which depends on insertion
	// history. the invariant must be re-established from scratch on restore
	if s.Reading() {
		ct.queue.rebuild()
	}

	return s.Error()
}
