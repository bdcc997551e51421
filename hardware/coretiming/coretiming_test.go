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

package coretiming_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gekkoemu/gekko/environment"
	"github.com/gekkoemu/gekko/hardware/coretiming"
	"github.com/gekkoemu/gekko/hardware/cpu"
	"github.com/gekkoemu/gekko/test"
)

// fixture collects everything needed to drive the scheduler as the CPU
// execution loop would.
type fixture struct {
	env *environment.Environment
	ct  *coretiming.CoreTiming
	mc  *cpu.CPU

	// the value returned by the IsCPUThread hook. tests that exercise the
	// off-thread path clear the flag for the duration of the off-thread
	// calls
	onCPU atomic.Bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	env, err := environment.NewEnvironment(environment.MainEmulation, nil)
	test.DemandSuccess(t, err)
	env.Normalise()

	fx := &fixture{
		env: env,
		mc:  cpu.NewCPU(),
	}
	fx.onCPU.Store(true)

	fx.ct, err = coretiming.NewCoreTiming(env, fx.mc, coretiming.Hooks{
		IsCPUThread: func() bool { return fx.onCPU.Load() },
	})
	test.DemandSuccess(t, err)

	return fx
}

// run the scheduler as the CPU execution loop would for the given number of
// downcount units. at an overclock factor of 1.0 a downcount unit is
// exactly one cycle.
func (fx *fixture) run(units int64) {
	// prepare the slice length and downcount for the first slice
	fx.ct.Advance()

	for units > 0 {
		if fx.mc.Downcount <= 0 {
			fx.ct.Advance()
			continue
		}

		step := int64(fx.mc.Downcount)
		if step > units {
			step = units
		}
		fx.mc.Downcount -= int32(step)
		units -= step

		if fx.mc.Downcount <= 0 {
			fx.ct.Advance()
		}
	}
}

// a record of a single dispatched event, as seen by the test callbacks
type firing struct {
	name     string
	userdata uint64
	late     int64
	ticks    uint64
}

func TestBasicFire(t *testing.T) {
	fx := newFixture(t)

	var trace []firing
	evA := fx.ct.RegisterEvent("A", func(ct *coretiming.CoreTiming, userdata uint64, late int64) {
		trace = append(trace, firing{"A", userdata, late, ct.GetTicks()})
	})
	test.ExpectEquality(t, evA.Name(), "A")

	fx.ct.ScheduleEvent(1000, evA, 0xdead, coretiming.FromCPU)
	fx.run(1000)

	test.DemandEquality(t, len(trace), 1)
	test.ExpectEquality(t, trace[0].userdata, uint64(0xdead))
	test.ExpectEquality(t, trace[0].late, int64(0))
	test.ExpectEquality(t, trace[0].ticks, uint64(1000))
	test.ExpectEquality(t, fx.ct.GetTicks(), uint64(1000))

	// the queue is empty so the next slice is the maximum length
	test.ExpectEquality(t, len(fx.ct.PendingEvents()), 0)
	test.ExpectEquality(t, fx.mc.Downcount, int32(coretiming.MaxSliceLength))
}

func TestFIFOTiebreak(t *testing.T) {
	fx := newFixture(t)

	var trace []firing
	record := func(name string) coretiming.TimedCallback {
		return func(_ *coretiming.CoreTiming, userdata uint64, late int64) {
			trace = append(trace, firing{name: name, userdata: userdata, late: late})
		}
	}

	evA := fx.ct.RegisterEvent("A", record("A"))
	evB := fx.ct.RegisterEvent("B", record("B"))

	fx.ct.ScheduleEvent(500, evA, 0, coretiming.FromCPU)
	fx.ct.ScheduleEvent(500, evB, 0, coretiming.FromCPU)
	fx.run(500)

	test.DemandEquality(t, len(trace), 2)
	test.ExpectEquality(t, trace[0].name, "A")
	test.ExpectEquality(t, trace[1].name, "B")
}

func TestMidSliceScheduleShortensSlice(t *testing.T) {
	fx := newFixture(t)

	var trace []firing
	evT := fx.ct.RegisterEvent("T", func(_ *coretiming.CoreTiming, userdata uint64, late int64) {
		trace = append(trace, firing{name: "T", late: late})
	})

	// arm the first slice. no events are pending so the slice is the
	// maximum length
	fx.ct.Advance()
	test.DemandEquality(t, fx.mc.Downcount, int32(coretiming.MaxSliceLength))

	// the CPU executes half the slice
	fx.mc.Downcount = 10000
	test.ExpectEquality(t, fx.ct.GetTicks(), uint64(10000))

	// scheduling an event that is due before the end of the current slice
	// must shorten the slice so the CPU yields in time
	fx.ct.ScheduleEvent(100, evT, 0, coretiming.FromCPU)
	test.ExpectEquality(t, fx.mc.Downcount, int32(100))

	// the CPU executes the rest of the shortened slice
	fx.mc.Downcount = 0
	fx.ct.Advance()

	test.DemandEquality(t, len(trace), 1)
	test.ExpectEquality(t, trace[0].late, int64(0))
	test.ExpectEquality(t, fx.ct.GetTicks(), uint64(10100))
}

func TestOffThreadSchedule(t *testing.T) {
	fx := newFixture(t)

	var trace []firing
	evT := fx.ct.RegisterEvent("T", func(_ *coretiming.CoreTiming, userdata uint64, late int64) {
		trace = append(trace, firing{name: "T", userdata: userdata})
	})

	// schedule from another goroutine. the scheduler is not otherwise
	// touched until the goroutine has finished
	fx.onCPU.Store(false)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fx.ct.ScheduleEvent(2000, evT, 42, coretiming.FromNonCPU)
	}()
	wg.Wait()
	fx.onCPU.Store(true)

	fx.run(3000)

	test.DemandEquality(t, len(trace), 1)
	test.ExpectEquality(t, trace[0].userdata, uint64(42))
}

// two events staged by the same goroutine drain in the order they were
// pushed, even when scheduled for the same time
func TestOffThreadOrdering(t *testing.T) {
	fx := newFixture(t)

	var trace []firing
	record := func(name string) coretiming.TimedCallback {
		return func(_ *coretiming.CoreTiming, _ uint64, _ int64) {
			trace = append(trace, firing{name: name})
		}
	}

	evA := fx.ct.RegisterEvent("A", record("A"))
	evB := fx.ct.RegisterEvent("B", record("B"))
	evC := fx.ct.RegisterEvent("C", record("C"))

	fx.onCPU.Store(false)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fx.ct.ScheduleEvent(100, evA, 0, coretiming.FromNonCPU)
		fx.ct.ScheduleEvent(100, evB, 0, coretiming.FromNonCPU)
		fx.ct.ScheduleEvent(100, evC, 0, coretiming.FromNonCPU)
	}()
	wg.Wait()
	fx.onCPU.Store(true)

	fx.run(100)

	test.DemandEquality(t, len(trace), 3)
	test.ExpectEquality(t, trace[0].name, "A")
	test.ExpectEquality(t, trace[1].name, "B")
	test.ExpectEquality(t, trace[2].name, "C")
}

// an event already in the queue keeps its earlier fifo order relative to a
// staged event that drains later
func TestFifoOrderAcrossIngress(t *testing.T) {
	fx := newFixture(t)

	var trace []firing
	record := func(name string) coretiming.TimedCallback {
		return func(_ *coretiming.CoreTiming, _ uint64, _ int64) {
			trace = append(trace, firing{name: name})
		}
	}

	evX := fx.ct.RegisterEvent("X", record("X"))
	evY := fx.ct.RegisterEvent("Y", record("Y"))
	evZ := fx.ct.RegisterEvent("Z", record("Z"))

	// X goes straight into the queue
	fx.ct.ScheduleEvent(500, evX, 0, coretiming.FromCPU)

	// Y is staged and then drained; it is assigned the next fifo order
	fx.onCPU.Store(false)
	fx.ct.ScheduleEvent(500, evY, 0, coretiming.FromNonCPU)
	fx.onCPU.Store(true)
	fx.ct.MoveEvents()

	// Z is scheduled after the drain
	fx.ct.ScheduleEvent(500, evZ, 0, coretiming.FromCPU)

	fx.run(500)

	test.DemandEquality(t, len(trace), 3)
	test.ExpectEquality(t, trace[0].name, "X")
	test.ExpectEquality(t, trace[1].name, "Y")
	test.ExpectEquality(t, trace[2].name, "Z")
}

func TestIdleFastForward(t *testing.T) {
	fx := newFixture(t)

	var trace []firing
	evA := fx.ct.RegisterEvent("A", func(ct *coretiming.CoreTiming, _ uint64, late int64) {
		trace = append(trace, firing{name: "A", late: late, ticks: ct.GetTicks()})
	})

	fx.ct.ScheduleEvent(50000, evA, 0, coretiming.FromCPU)

	// arm the first slice
	fx.ct.Advance()
	test.DemandEquality(t, fx.mc.Downcount, int32(coretiming.MaxSliceLength))

	// idle the whole slice. the downcount is zeroed and the skipped cycles
	// are accounted as idle
	fx.ct.Idle()
	test.ExpectEquality(t, fx.mc.Downcount, int32(0))
	test.ExpectEquality(t, fx.ct.GetIdleTicks(), uint64(20000))

	// keep idling until the event fires
	for len(trace) == 0 {
		fx.ct.Advance()
		if len(trace) == 0 {
			fx.ct.Idle()
		}
	}

	test.DemandEquality(t, len(trace), 1)
	test.ExpectEquality(t, trace[0].ticks, uint64(50000))
	test.ExpectEquality(t, fx.ct.GetIdleTicks(), uint64(50000))
}

func TestRemoveAllEvents(t *testing.T) {
	fx := newFixture(t)

	var trace []firing
	record := func(name string) coretiming.TimedCallback {
		return func(_ *coretiming.CoreTiming, _ uint64, _ int64) {
			trace = append(trace, firing{name: name})
		}
	}

	evT := fx.ct.RegisterEvent("T", record("T"))
	evU := fx.ct.RegisterEvent("U", record("U"))

	// several pending occurrences of T, both in the queue and staged in the
	// ingress queue
	fx.ct.ScheduleEvent(100, evT, 0, coretiming.FromCPU)
	fx.ct.ScheduleEvent(200, evT, 0, coretiming.FromCPU)
	fx.ct.ScheduleEvent(150, evU, 0, coretiming.FromCPU)

	fx.onCPU.Store(false)
	fx.ct.ScheduleEvent(300, evT, 0, coretiming.FromNonCPU)
	fx.onCPU.Store(true)

	fx.ct.RemoveAllEvents(evT)

	// no pending event of type T remains anywhere
	for _, ev := range fx.ct.PendingEvents() {
		test.ExpectInequality(t, ev.Type, "T")
	}

	fx.run(1000)

	test.DemandEquality(t, len(trace), 1)
	test.ExpectEquality(t, trace[0].name, "U")

	// removing events of a type with no pending events is a silent no-op
	fx.ct.RemoveAllEvents(evT)
}

func TestScheduleNow(t *testing.T) {
	fx := newFixture(t)

	var trace []firing
	evA := fx.ct.RegisterEvent("A", func(_ *coretiming.CoreTiming, _ uint64, late int64) {
		trace = append(trace, firing{name: "A", late: late})
	})

	// a non-positive value means "as soon as possible"
	fx.ct.ScheduleEvent(0, evA, 0, coretiming.FromCPU)
	fx.ct.Advance()

	test.DemandEquality(t, len(trace), 1)
	test.ExpectEquality(t, trace[0].late, int64(0))
}

func TestRegisterPanics(t *testing.T) {
	fx := newFixture(t)
	fx.ct.RegisterEvent("A", nil)

	defer test.ExpectPanic(t)
	fx.ct.RegisterEvent("A", nil)
}

func TestSchedulePanicsOnNilType(t *testing.T) {
	fx := newFixture(t)

	defer test.ExpectPanic(t)
	fx.ct.ScheduleEvent(100, nil, 0, coretiming.FromCPU)
}

func TestSchedulePanicsOnWrongThread(t *testing.T) {
	fx := newFixture(t)
	evA := fx.ct.RegisterEvent("A", nil)

	// the IsCPUThread hook says we are the CPU goroutine
	defer test.ExpectPanic(t)
	fx.ct.ScheduleEvent(100, evA, 0, coretiming.FromNonCPU)
}

func TestUnregisterPanicsWithPendingEvents(t *testing.T) {
	fx := newFixture(t)
	evA := fx.ct.RegisterEvent("A", func(_ *coretiming.CoreTiming, _ uint64, _ int64) {})
	fx.ct.ScheduleEvent(100, evA, 0, coretiming.FromCPU)

	defer test.ExpectPanic(t)
	fx.ct.UnregisterAllEvents()
}
