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

// Package cpu defines the parts of the emulated CPU core that the timing
// system interacts with. The interpreter/JIT that executes instructions is
// outside the scope of this module; it only needs to decrement the Downcount
// register as it works and to yield when the register reaches zero.
package cpu

// CPU registers shared with the timing system.
type CPU struct {
	// Downcount is decremented by the interpreter/JIT for every unit of work
	// performed. When it reaches zero the execution loop must yield to the
	// scheduler's Advance() function.
	//
	// Note that the downcount is measured in work units, not cycles. The two
	// differ when the overclock factor is not 1.0. Conversion is handled by
	// the coretiming package.
	Downcount int32

	// Monitor accumulates performance counters for the running emulation.
	Monitor PerformanceMonitor
}

// PerformanceMonitor is the CPU side of the emulated performance monitor
// registers.
type PerformanceMonitor struct {
	Cycles         uint64
	LoadStores     uint64
	FPInstructions uint64
}

// NewCPU is the preferred method of initialisation for the CPU type.
func NewCPU() *CPU {
	return &CPU{}
}

// UpdatePerformanceMonitor adds to the performance monitor counters.
func (mc *CPU) UpdatePerformanceMonitor(cycles int32, loadStores int, fpInstructions int) {
	if cycles > 0 {
		mc.Monitor.Cycles += uint64(cycles)
	}
	mc.Monitor.LoadStores += uint64(loadStores)
	mc.Monitor.FPInstructions += uint64(fpInstructions)
}
