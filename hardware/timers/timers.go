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

// Package timers implements the decrementer and time base registers of the
// emulated CPU.
//
// Neither register is backed by a real counter. Both are expressed as
// linear functions of the scheduler's virtual clock: a start value and the
// tick count at which that value was set. Reading a register computes the
// current value from how far the clock has moved since the last write.
// The storage for the start values lives in the scheduler because it must
// be part of the timing save state.
package timers

import (
	"github.com/gekkoemu/gekko/hardware/clocks"
	"github.com/gekkoemu/gekko/hardware/coretiming"
)

// the value the decrementer wraps to when it passes zero
const decrementerWrap = 0xffffffff

// Timers implements the decrementer and time base registers.
type Timers struct {
	ct       *coretiming.CoreTiming
	decEvent *coretiming.EventType

	// called when the decrementer passes zero. the decrementer exception
	// is the concern of the interrupt handling outside this package
	onDecrementerZero func()
}

// NewTimers is the preferred method of initialisation for the Timers type.
//
// Must be called during initialisation of the emulation; the decrementer
// event type is registered with the scheduler here.
func NewTimers(ct *coretiming.CoreTiming, onDecrementerZero func()) *Timers {
	tmr := &Timers{
		ct:                ct,
		onDecrementerZero: onDecrementerZero,
	}

	tmr.decEvent = ct.RegisterEvent("Decrementer", tmr.decrementerZero)

	ct.SetFakeDecStartValue(decrementerWrap)
	ct.SetFakeDecStartTicks(ct.GetTicks())
	ct.SetFakeTBStartValue(0)
	ct.SetFakeTBStartTicks(ct.GetTicks())

	return tmr
}

func (tmr *Timers) decrementerZero(ct *coretiming.CoreTiming, _ uint64, cyclesLate int64) {
	if tmr.onDecrementerZero != nil {
		tmr.onDecrementerZero()
	}

	// the decrementer wraps and keeps counting down. the start point is
	// backdated by the dispatch lateness so that reads remain consistent
	ct.SetFakeDecStartValue(decrementerWrap)
	ct.SetFakeDecStartTicks(ct.GetTicks() - uint64(cyclesLate))
	ct.ScheduleEvent(int64(decrementerWrap)*clocks.TimerRatio-cyclesLate, tmr.decEvent, 0, coretiming.FromCPU)
}

// ReadDecrementer returns the current value of the decrementer register.
func (tmr *Timers) ReadDecrementer() uint32 {
	elapsed := (tmr.ct.GetTicks() - tmr.ct.GetFakeDecStartTicks()) / clocks.TimerRatio
	return tmr.ct.GetFakeDecStartValue() - uint32(elapsed)
}

// WriteDecrementer sets the decrementer register. The zero-crossing event
// is rescheduled accordingly.
func (tmr *Timers) WriteDecrementer(value uint32) {
	tmr.ct.SetFakeDecStartValue(value)
	tmr.ct.SetFakeDecStartTicks(tmr.ct.GetTicks())

	tmr.ct.RemoveAllEvents(tmr.decEvent)
	tmr.ct.ScheduleEvent(int64(value)*clocks.TimerRatio, tmr.decEvent, 0, coretiming.FromCPU)
}

// ReadTimeBase returns the current value of the time base register.
func (tmr *Timers) ReadTimeBase() uint64 {
	elapsed := (tmr.ct.GetTicks() - tmr.ct.GetFakeTBStartTicks()) / clocks.TimerRatio
	return tmr.ct.GetFakeTBStartValue() + elapsed
}

// WriteTimeBase sets the time base register.
func (tmr *Timers) WriteTimeBase(value uint64) {
	tmr.ct.SetFakeTBStartValue(value)
	tmr.ct.SetFakeTBStartTicks(tmr.ct.GetTicks())
}
