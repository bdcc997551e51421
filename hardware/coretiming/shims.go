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

// The decrementer and time base registers of the emulated CPU are
// implemented as linear functions of the global timer: a start value and
// the tick count at which the value was set. The scheduler owns the storage
// because the four values must be part of the timing save state; the
// register semantics live in the timers package.

// GetFakeDecStartValue returns the decrementer value at the point it was
// last written.
func (ct *CoreTiming) GetFakeDecStartValue() uint32 {
	return ct.fakeDecStartValue
}

// SetFakeDecStartValue records the decrementer value at the point it is
// written.
func (ct *CoreTiming) SetFakeDecStartValue(val uint32) {
	ct.fakeDecStartValue = val
}

// GetFakeDecStartTicks returns the tick count at which the decrementer was
// last written.
func (ct *CoreTiming) GetFakeDecStartTicks() uint64 {
	return ct.fakeDecStartTicks
}

// SetFakeDecStartTicks records the tick count at which the decrementer is
// written.
func (ct *CoreTiming) SetFakeDecStartTicks(val uint64) {
	ct.fakeDecStartTicks = val
}

// GetFakeTBStartValue returns the time base value at the point it was last
// written.
func (ct *CoreTiming) GetFakeTBStartValue() uint64 {
	return ct.fakeTBStartValue
}

// SetFakeTBStartValue records the time base value at the point it is
// written.
func (ct *CoreTiming) SetFakeTBStartValue(val uint64) {
	ct.fakeTBStartValue = val
}

// GetFakeTBStartTicks returns the tick count at which the time base was
// last written.
func (ct *CoreTiming) GetFakeTBStartTicks() uint64 {
	return ct.fakeTBStartTicks
}

// SetFakeTBStartTicks records the tick count at which the time base is
// written.
func (ct *CoreTiming) SetFakeTBStartTicks(val uint64) {
	ct.fakeTBStartTicks = val
}
