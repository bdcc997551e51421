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

// Package clocks defines the constant values that define the speed of the
// main clocks in the emulated console.
//
// The console family has two operating modes with different core clock
// rates. Changing mode at runtime requires rescaling of any pending timing
// events (see the coretiming package).
package clocks

// Core clock rates in Hz for the two operating modes of the console.
const (
	CubeCore       = uint32(486000000)
	RevolutionCore = uint32(729000000)
)

// The time base and decrementer registers tick once for every TimerRatio
// cycles of the core clock.
const TimerRatio = 8
