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

// TimedCallback is the function signature for all event callbacks. The
// cyclesLate argument is the number of cycles between the time the event was
// scheduled for and the time it was actually dispatched. It is never
// negative.
//
// Note that userdata is an integer and never a pointer. Pointers cannot
// survive a save state. Callers that need richer data should register
// distinct event types or encode an index.
type TimedCallback func(ct *CoreTiming, userdata uint64, cyclesLate int64)

// EventType is the identity of a callable scheduled unit. Values are
// created with RegisterEvent() and remain valid until
// UnregisterAllEvents().
type EventType struct {
	name     string
	callback TimedCallback
}

// Name returns the name the event type was registered with.
func (typ *EventType) Name() string {
	return typ.name
}

// event is a single scheduled occurrence of an EventType.
type event struct {
	// the deadline for the event on the global timer axis
	time int64

	// tiebreaker for events scheduled for the same time. assigned when the
	// event enters the event queue proper; events in the ingress queue have
	// a provisional fifoOrder of zero
	fifoOrder uint64

	userdata uint64
	typ      *EventType
}

// FromThread describes the relationship between the goroutine calling
// ScheduleEvent() and the goroutine running the emulated CPU.
type FromThread int

// Valid values for the FromThread type. FromAny asks the scheduler to
// detect the calling goroutine itself.
const (
	FromCPU FromThread = iota
	FromNonCPU
	FromAny
)
