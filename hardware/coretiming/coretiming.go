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

	"github.com/gekkoemu/gekko/environment"
	"github.com/gekkoemu/gekko/hardware/cpu"
	"github.com/gekkoemu/gekko/logger"
)

// MaxSliceLength is the maximum number of cycles the CPU will run before
// yielding to Advance(), regardless of how far away the next event is.
const MaxSliceLength = 20000

// the name of the event type that serialised events are rebound to when
// their own type is no longer registered
const lostEventName = "_lost_event"

// Hooks collects the functions the scheduler needs from the rest of the
// system. Any member left as nil is replaced with a default suitable for a
// single goroutine emulation.
type Hooks struct {
	// IsCPUThread returns true if the calling goroutine is the one running
	// the emulated CPU. The default always returns true.
	IsCPUThread func() bool

	// WantsDeterminism returns true if the emulation must be deterministic,
	// for example during netplay or movie play/record. The default always
	// returns false.
	WantsDeterminism func() bool

	// RunAsCPUThread runs the supplied function on the CPU goroutine. The
	// default runs it immediately on the calling goroutine.
	RunAsCPUThread func(f func())

	// FlushGpu blocks until the video FIFO has been processed. Called by
	// Idle() when the sync-on-skip-idle preference is enabled. The default
	// does nothing.
	FlushGpu func()

	// CheckExternalExceptions gives the CPU the opportunity to service any
	// exceptions raised by dispatched events. Called at the end of
	// Advance(). The default does nothing.
	CheckExternalExceptions func()
}

func (h *Hooks) setDefaults() {
	if h.IsCPUThread == nil {
		h.IsCPUThread = func() bool { return true }
	}
	if h.WantsDeterminism == nil {
		h.WantsDeterminism = func() bool { return false }
	}
	if h.RunAsCPUThread == nil {
		h.RunAsCPUThread = func(f func()) { f() }
	}
	if h.FlushGpu == nil {
		h.FlushGpu = func() {}
	}
	if h.CheckExternalExceptions == nil {
		h.CheckExternalExceptions = func() {}
	}
}

// CoreTiming is the scheduler at the centre of the emulation's execution
// loop. All functions must be called from the goroutine running the
// emulated CPU unless documented otherwise.
type CoreTiming struct {
	env   *environment.Environment
	mc    *cpu.CPU
	hooks Hooks

	eventTypes map[string]*EventType
	evLost     *EventType

	queue       pendingEvents
	eventFifoID uint64
	ingress     ingressQueue

	// the virtual clock. globalTimer is the number of emulated cycles
	// elapsed up to the most recent slice boundary
	globalTimer int64
	sliceLength int32
	idledCycles int64

	// true when globalTimer is the authoritative current time; false while
	// the CPU is mid-slice, in which case GetTicks() interpolates
	isGlobalTimerSane bool

	// the overclock factor pair in effect for the current slice. the
	// inverse is kept in sync to avoid a division on the hot path
	lastOCFactor    float32
	lastOCFactorInv float32

	// the most recently configured overclock values. copied to the last*
	// pair at the next slice boundary
	configOCFactor       float32
	configOCInvFactor    float32
	configSyncOnSkipIdle bool
	configCallbackID     int

	// storage for the decrementer and time base shims. see shims.go
	fakeDecStartValue uint32
	fakeDecStartTicks uint64
	fakeTBStartValue  uint64
	fakeTBStartTicks  uint64
}

// NewCoreTiming is the preferred method of initialisation for the
// CoreTiming type.
func NewCoreTiming(env *environment.Environment, mc *cpu.CPU, hooks Hooks) (*CoreTiming, error) {
	hooks.setDefaults()

	ct := &CoreTiming{
		env:        env,
		mc:         mc,
		hooks:      hooks,
		eventTypes: make(map[string]*EventType),
	}

	ct.configCallbackID = env.Prefs.AddChangeCallback(func() {
		ct.hooks.RunAsCPUThread(ct.RefreshConfig)
	})
	ct.RefreshConfig()

	ct.lastOCFactor = ct.configOCFactor
	ct.lastOCFactorInv = ct.configOCInvFactor
	ct.mc.Downcount = ct.cyclesToDowncount(MaxSliceLength)
	ct.sliceLength = MaxSliceLength
	ct.globalTimer = 0
	ct.idledCycles = 0

	// the time between the scheduler being created and the first call to
	// Advance() is considered the slice boundary between slice -1 and slice
	// 0. execution loops must call Advance() before executing the first
	// cycle of each slice to prepare the slice length and downcount for
	// that slice
	ct.isGlobalTimerSane = true

	ct.eventFifoID = 0
	ct.evLost = ct.RegisterEvent(lostEventName, func(_ *CoreTiming, _ uint64, _ int64) {})

	return ct, nil
}

// Shutdown the scheduler. Pending and staged events are dropped and all
// event types are unregistered.
func (ct *CoreTiming) Shutdown() {
	// producers are excluded for the whole of the teardown sequence
	ct.ingress.crit.Lock()
	defer ct.ingress.crit.Unlock()

	ct.moveEvents(ct.ingress.drainLocked())
	ct.ClearPendingEvents()
	ct.UnregisterAllEvents()
	ct.env.Prefs.RemoveChangeCallback(ct.configCallbackID)
}

// RefreshConfig copies the current preference values into the scheduler.
// The overclock factor pair takes effect at the next slice boundary, never
// mid-slice.
//
// This function is called automatically when a preference value changes.
func (ct *CoreTiming) RefreshConfig() {
	oc := float32(1.0)
	if enabled, ok := ct.env.Prefs.Live.OverclockEnable.Load().(bool); ok && enabled {
		if f, ok := ct.env.Prefs.Live.Overclock.Load().(float64); ok {
			oc = float32(f)
		}
	}

	ct.configOCFactor = oc
	ct.configOCInvFactor = 1.0 / oc

	if sync, ok := ct.env.Prefs.Live.SyncOnSkipIdle.Load().(bool); ok {
		ct.configSyncOnSkipIdle = sync
	}
}

// Changing the CPU speed isn't done by changing the emulated clock rate but
// by changing the amount of work done in a particular amount of time. Games
// can't directly observe that the clock rate has changed and anything based
// on waiting a specific number of cycles still works.
func (ct *CoreTiming) downcountToCycles(downcount int32) int32 {
	return int32(float32(downcount) * ct.lastOCFactorInv)
}

func (ct *CoreTiming) cyclesToDowncount(cycles int32) int32 {
	return int32(float32(cycles) * ct.lastOCFactor)
}

// RegisterEvent creates a new event type keyed by a unique name. The name
// is the serialisation identity of the event type so registration should
// only happen during initialisation; registering an event type after a
// save state has been created risks the save state referencing an
// unregistered name.
//
// Registering a name twice is a programming error and the function panics.
func (ct *CoreTiming) RegisterEvent(name string, callback TimedCallback) *EventType {
	if _, ok := ct.eventTypes[name]; ok {
		panic(fmt.Sprintf("coretiming: event %q is already registered. events should only be registered during initialisation to avoid breaking save states", name))
	}

	typ := &EventType{
		name:     name,
		callback: callback,
	}
	ct.eventTypes[name] = typ

	return typ
}

// UnregisterAllEvents drops all event types. It is a programming error to
// call this function while events are pending and the function panics if
// any are.
func (ct *CoreTiming) UnregisterAllEvents() {
	if !ct.queue.empty() {
		panic("coretiming: cannot unregister events with events pending")
	}
	clear(ct.eventTypes)
	ct.evLost = nil
}

// ScheduleEvent adds an occurrence of the supplied event type to the queue,
// to fire cyclesIntoFuture cycles from now. A zero or negative value means
// "as soon as possible"; the event fires on the next Advance().
//
// The from argument must describe the calling goroutine truthfully; use
// FromAny to let the scheduler work it out. This is the only scheduler
// function that may be called from a goroutine other than the CPU
// goroutine.
func (ct *CoreTiming) ScheduleEvent(cyclesIntoFuture int64, typ *EventType, userdata uint64, from FromThread) {
	if typ == nil {
		panic("coretiming: cannot schedule an event with a nil event type")
	}

	var fromCPU bool
	if from == FromAny {
		fromCPU = ct.hooks.IsCPUThread()
	} else {
		fromCPU = from == FromCPU
		if fromCPU != ct.hooks.IsCPUThread() {
			panic(fmt.Sprintf("coretiming: a %q event was scheduled from the wrong goroutine", typ.name))
		}
	}

	if fromCPU {
		deadline := int64(ct.GetTicks()) + cyclesIntoFuture

		// if this event needs to fire before the end of the current slice,
		// shorten the slice so that the CPU yields in time
		if !ct.isGlobalTimerSane {
			ct.ForceExceptionCheck(cyclesIntoFuture)
		}

		ct.queue.push(event{
			time:      deadline,
			fifoOrder: ct.eventFifoID,
			userdata:  userdata,
			typ:       typ,
		})
		ct.eventFifoID++
	} else {
		if ct.hooks.WantsDeterminism() {
			logger.Logf(logger.Allow, "coretiming",
				"an off-thread %q event was scheduled while determinism was wanted. this is likely to cause a desync", typ.name)
		}

		// the deadline is computed from the global timer at the most recent
		// slice boundary, not the interpolated mid-slice time. off-thread
		// callers cannot observe mid-slice time
		ct.ingress.push(event{
			time:     ct.globalTimer + cyclesIntoFuture,
			userdata: userdata,
			typ:      typ,
		})
	}
}

// RemoveEvent removes every pending occurrence of the supplied event type
// from the event queue. Events of that type staged in the ingress queue are
// not affected; use RemoveAllEvents() to catch those too.
func (ct *CoreTiming) RemoveEvent(typ *EventType) {
	ct.queue.retain(func(ev event) bool {
		return ev.typ != typ
	})
}

// RemoveAllEvents drains the ingress queue and then removes every pending
// occurrence of the supplied event type.
func (ct *CoreTiming) RemoveAllEvents(typ *EventType) {
	ct.MoveEvents()
	ct.RemoveEvent(typ)
}

// ClearPendingEvents drops every event in the event queue.
func (ct *CoreTiming) ClearPendingEvents() {
	ct.queue.clear()
}

// MoveEvents drains the ingress queue into the event queue. Each drained
// event is assigned its definitive fifo order at this point.
func (ct *CoreTiming) MoveEvents() {
	ct.moveEvents(ct.ingress.drain())
}

func (ct *CoreTiming) moveEvents(staged []event) {
	for _, ev := range staged {
		ev.fifoOrder = ct.eventFifoID
		ct.eventFifoID++
		ct.queue.push(ev)
	}
}

// Advance the virtual clock by the number of cycles executed in the slice
// just ended and dispatch every event that has become due. Called by the
// CPU execution loop whenever the downcount register reaches zero.
func (ct *CoreTiming) Advance() {
	ct.MoveEvents()

	// cyclesExecuted can be more than the slice length if a callback forced
	// the downcount negative, or less if the slice was shortened
	cyclesExecuted := ct.sliceLength - ct.downcountToCycles(ct.mc.Downcount)
	ct.globalTimer += int64(cyclesExecuted)

	// a changed overclock factor takes effect here, on the slice boundary
	ct.lastOCFactor = ct.configOCFactor
	ct.lastOCFactorInv = ct.configOCInvFactor
	ct.sliceLength = MaxSliceLength

	ct.isGlobalTimerSane = true

	for !ct.queue.empty() && ct.queue.peek().time <= ct.globalTimer {
		ev := ct.queue.popMin()
		ev.typ.callback(ct, ev.userdata, ct.globalTimer-ev.time)
	}

	ct.isGlobalTimerSane = false

	// still events left (scheduled in the future)
	if !ct.queue.empty() {
		s := ct.queue.peek().time - ct.globalTimer
		if s > MaxSliceLength {
			s = MaxSliceLength
		}
		ct.sliceLength = int32(s)
	}

	ct.mc.Downcount = ct.cyclesToDowncount(ct.sliceLength)

	// check for external exceptions after processing events, not before.
	// otherwise an exception raised by a dispatched event would be delayed
	// until the next slice, which some hardware cannot tolerate
	ct.hooks.CheckExternalExceptions()
}

// ForceExceptionCheck shortens the current slice so that the CPU yields to
// Advance() within the supplied number of cycles.
func (ct *CoreTiming) ForceExceptionCheck(cycles int64) {
	if cycles < 0 {
		cycles = 0
	}

	if int64(ct.downcountToCycles(ct.mc.Downcount)) > cycles {
		// the downcount is always (much) smaller than the maximum int32
		// value so the conversion of cycles is safe. account for cycles
		// already executed by adjusting the slice length
		ct.sliceLength -= ct.downcountToCycles(ct.mc.Downcount) - int32(cycles)
		ct.mc.Downcount = ct.cyclesToDowncount(int32(cycles))
	}
}

// GetTicks returns the current virtual time in emulated cycles. This is the
// only way to read the virtual clock from inside a running CPU slice.
func (ct *CoreTiming) GetTicks() uint64 {
	ticks := uint64(ct.globalTimer)
	if !ct.isGlobalTimerSane {
		ticks += uint64(ct.sliceLength - ct.downcountToCycles(ct.mc.Downcount))
	}
	return ticks
}

// GetIdleTicks returns the total number of cycles skipped by Idle().
func (ct *CoreTiming) GetIdleTicks() uint64 {
	return uint64(ct.idledCycles)
}

// Idle fast-forwards the remainder of the current slice. The downcount is
// zeroed, causing the execution loop to fall through to Advance() on its
// next check; the skipped cycles still advance the virtual clock, carrying
// it towards the next scheduled event.
func (ct *CoreTiming) Idle() {
	if ct.configSyncOnSkipIdle {
		// when the video FIFO is processing data we must not advance or the
		// video interface will desynchronise. wait for the FIFO to finish
		// before skipping ahead
		ct.hooks.FlushGpu()
	}

	ct.mc.UpdatePerformanceMonitor(ct.mc.Downcount, 0, 0)
	ct.idledCycles += int64(ct.downcountToCycles(ct.mc.Downcount))
	ct.mc.Downcount = 0
}

// AdjustEventQueueTimes linearly rescales the deadline of every pending
// event after a change of the emulated CPU clock. Must only be called from
// the CPU goroutine, between slices.
func (ct *CoreTiming) AdjustEventQueueTimes(newClock uint32, oldClock uint32) {
	// the transform is monotone so the relative order of events, and
	// therefore the heap invariant, is preserved
	ct.queue.each(func(ev *event) {
		ticks := (ev.time - ct.globalTimer) * int64(newClock) / int64(oldClock)
		ev.time = ct.globalTimer + ticks
	})
}
