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

// Package audio implements the sample pacing of the console's audio
// interface. Samples are produced at a fixed rate relative to the emulated
// CPU clock, not the host clock, by rescheduling a sample event with the
// scheduler each time it fires.
package audio

import (
	"github.com/gekkoemu/gekko/hardware/coretiming"
	"github.com/gekkoemu/gekko/logger"
)

// SampleFreq is the sample frequency of the audio interface in Hz.
const SampleFreq = 32000

// Mixer implementations consume the audio stream produced by the audio
// interface.
type Mixer interface {
	SetAudio(samples []int16) error
	EndMixing() error
}

// Audio implements the sample pacing of the audio interface.
type Audio struct {
	ct    *coretiming.CoreTiming
	mixer Mixer

	sampleEvent     *coretiming.EventType
	cyclesPerSample int64

	// source produces the next sample when the sample event fires. nil
	// produces silence
	source func() int16

	running bool
}

// NewAudio is the preferred method of initialisation for the Audio type.
//
// Must be called during initialisation of the emulation; the sample event
// type is registered with the scheduler here. The clock argument is the
// emulated core clock in Hz.
func NewAudio(ct *coretiming.CoreTiming, clock uint32, mixer Mixer) *Audio {
	ai := &Audio{
		ct:              ct,
		mixer:           mixer,
		cyclesPerSample: int64(clock) / SampleFreq,
	}

	ai.sampleEvent = ct.RegisterEvent("AISample", ai.sample)

	return ai
}

// SetSource sets the function used to produce samples. A nil source
// produces silence.
func (ai *Audio) SetSource(source func() int16) {
	ai.source = source
}

// Start sample production. A no-op if samples are already being produced.
func (ai *Audio) Start() {
	if ai.running {
		return
	}
	ai.running = true
	ai.ct.ScheduleEvent(ai.cyclesPerSample, ai.sampleEvent, 0, coretiming.FromCPU)
}

// Stop sample production. Any pending sample event is removed.
func (ai *Audio) Stop() {
	ai.running = false
	ai.ct.RemoveAllEvents(ai.sampleEvent)
}

func (ai *Audio) sample(ct *coretiming.CoreTiming, _ uint64, cyclesLate int64) {
	if !ai.running {
		return
	}

	var s int16
	if ai.source != nil {
		s = ai.source()
	}

	if ai.mixer != nil {
		if err := ai.mixer.SetAudio([]int16{s}); err != nil {
			logger.Logf(logger.Allow, "audio", "mixer: %v", err)
		}
	}

	// subtracting the dispatch lateness keeps the long-run sample cadence
	// exactly on the emulated clock
	ct.ScheduleEvent(ai.cyclesPerSample-cyclesLate, ai.sampleEvent, 0, coretiming.FromCPU)
}
