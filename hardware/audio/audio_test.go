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

package audio_test

import (
	"testing"

	"github.com/gekkoemu/gekko/environment"
	"github.com/gekkoemu/gekko/hardware/audio"
	"github.com/gekkoemu/gekko/hardware/clocks"
	"github.com/gekkoemu/gekko/hardware/coretiming"
	"github.com/gekkoemu/gekko/hardware/cpu"
	"github.com/gekkoemu/gekko/test"
)

// mixer implementation that accumulates every sample it is given
type captureMixer struct {
	samples []int16
	ended   bool
}

func (m *captureMixer) SetAudio(samples []int16) error {
	m.samples = append(m.samples, samples...)
	return nil
}

func (m *captureMixer) EndMixing() error {
	m.ended = true
	return nil
}

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

func TestSamplePacing(t *testing.T) {
	ct, mc := newTestScheduler(t)

	mixer := &captureMixer{}
	ai := audio.NewAudio(ct, clocks.CubeCore, mixer)

	// a simple ramp makes the sample values predictable
	var ramp int16
	ai.SetSource(func() int16 {
		ramp++
		return ramp
	})

	ai.Start()

	// the core clock produces one sample every clock/SampleFreq cycles
	cyclesPerSample := int64(clocks.CubeCore) / audio.SampleFreq
	runCycles(ct, mc, 4*cyclesPerSample)

	test.DemandEquality(t, len(mixer.samples), 4)
	for i, s := range mixer.samples {
		test.ExpectEquality(t, s, int16(i+1))
	}
}

func TestStop(t *testing.T) {
	ct, mc := newTestScheduler(t)

	mixer := &captureMixer{}
	ai := audio.NewAudio(ct, clocks.CubeCore, mixer)
	ai.Start()

	cyclesPerSample := int64(clocks.CubeCore) / audio.SampleFreq
	runCycles(ct, mc, 2*cyclesPerSample)
	test.DemandEquality(t, len(mixer.samples), 2)

	// no samples arrive after Stop(); the pending sample event has been
	// removed from the queue
	ai.Stop()
	test.ExpectEquality(t, len(ct.PendingEvents()), 0)

	runCycles(ct, mc, 4*cyclesPerSample)
	test.ExpectEquality(t, len(mixer.samples), 2)

	// starting again resumes sample production
	ai.Start()
	runCycles(ct, mc, 2*cyclesPerSample)
	test.ExpectEquality(t, len(mixer.samples), 4)
}
