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

// Package coretiming coordinates the emulated CPU with the peripheral
// sub-systems of the console (video interface, audio DMA, interrupt
// controllers, etc.) by scheduling callbacks at precise cycle counts
// relative to the emulated CPU clock.
//
// The scheduler maintains a virtual clock that only ever advances by the
// number of cycles the CPU reports as executed; wall-clock time plays no
// part. The CPU runs uninterrupted for a "slice" of cycles, decrementing
// the downcount register as it goes, and yields to the Advance() function
// when the register reaches zero. Advance() accounts the executed cycles,
// fires every event that has become due and computes the length of the next
// slice from the earliest pending event.
//
// Events are totally ordered by scheduled time, with ties broken by the
// order in which the events entered the queue. Sub-systems rely on this
// ordering being observable and stable.
//
// All scheduler state is mutated only on the goroutine running the emulated
// CPU. Other goroutines interact exclusively through ScheduleEvent() with
// the FromNonCPU (or FromAny) argument, which stages the event in a
// lock-guarded ingress queue until the CPU goroutine next drains it.
package coretiming
