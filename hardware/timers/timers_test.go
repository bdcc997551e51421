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

package timers_test

import (
	"testing"

	"github.com/gekkoemu/gekko/environment"
	"github.com/gekkoemu/gekko/hardware/clocks"
	"github.com/gekkoemu/gekko/hardware/coretiming"
	"github.com/gekkoemu/gekko/hardware/cpu"
	"github.com/gekkoemu/gekko/hardware/timers"
	"github.com/gekkoemu/gekko/test"
)

func newTestScheduler(t *testing.T) (*coretiming.CoreTiming, *cpu.CPU) {
	t.Helper()

	env, err := environment.NewEnvironment(environment.MainEmulation, nil)
	test.DemandSuccess(t, err)
	env.Normalise()

	mc := cpu.NewCPU()
	ct, err := coretiming.NewCoreTiming(env, mc, coretiming.Hooks{})
	test.DemandSuccess(t, err)

	return ct, mc
}

// run the scheduler as the CPU execution loop would for the given number of
// cycles
func runCycles(ct *coretiming.CoreTiming, mc *cpu.CPU, cycles int64) {
	ct.Advance()
	for cycles > 0 {
		if mc.Downcount <= 0 {
			ct.Advance()
			continue
		}
		step := int64(mc.Downcount)
		if step > cycles {
			step = cycles
		}
		mc.Downcount -= int32(step)
		cycles -= step
		if mc.Downcount <= 0 {
			ct.Advance()
		}
	}
}

func TestTimeBase(t *testing.T) {
	ct, mc := newTestScheduler(t)
	tmr := timers.NewTimers(ct, nil)

	test.ExpectEquality(t, tmr.ReadTimeBase(), uint64(0))

	// the time base ticks once for every TimerRatio cycles
	runCycles(ct, mc, 80)
	test.ExpectEquality(t, tmr.ReadTimeBase(), uint64(80/clocks.TimerRatio))

	// writes rebase the register without affecting the virtual clock
	tmr.WriteTimeBase(1000)
	test.ExpectEquality(t, tmr.ReadTimeBase(), uint64(1000))
	test.ExpectEquality(t, ct.GetTicks(), uint64(80))

	runCycles(ct, mc, 160)
	test.ExpectEquality(t, tmr.ReadTimeBase(), uint64(1000+160/clocks.TimerRatio))
}

func TestDecrementer(t *testing.T) {
	ct, mc := newTestScheduler(t)

	var zeroed int
	tmr := timers.NewTimers(ct, func() {
		zeroed++
	})

	tmr.WriteDecrementer(100)
	test.ExpectEquality(t, tmr.ReadDecrementer(), uint32(100))

	// half way to the zero crossing
	runCycles(ct, mc, 50*clocks.TimerRatio)
	test.ExpectEquality(t, tmr.ReadDecrementer(), uint32(50))
	test.ExpectEquality(t, zeroed, 0)

	// the rest of the way
	runCycles(ct, mc, 50*clocks.TimerRatio)
	test.ExpectEquality(t, zeroed, 1)

	// the decrementer has wrapped and keeps counting down
	runCycles(ct, mc, 10*clocks.TimerRatio)
	test.ExpectEquality(t, tmr.ReadDecrementer(), uint32(0xffffffff-10))
	test.ExpectEquality(t, zeroed, 1)
}

// writing the decrementer discards the previously scheduled zero-crossing
func TestDecrementerRewrite(t *testing.T) {
	ct, mc := newTestScheduler(t)

	var zeroed int
	tmr := timers.NewTimers(ct, func() {
		zeroed++
	})

	tmr.WriteDecrementer(10)
	tmr.WriteDecrementer(1000)

	// past the point the first write would have crossed zero
	runCycles(ct, mc, 100*clocks.TimerRatio)
	test.ExpectEquality(t, zeroed, 0)
	test.ExpectEquality(t, tmr.ReadDecrementer(), uint32(900))

	runCycles(ct, mc, 900*clocks.TimerRatio)
	test.ExpectEquality(t, zeroed, 1)
}
