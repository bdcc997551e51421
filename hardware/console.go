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

package hardware

import (
	"github.com/gekkoemu/gekko/environment"
	"github.com/gekkoemu/gekko/hardware/audio"
	"github.com/gekkoemu/gekko/hardware/clocks"
	"github.com/gekkoemu/gekko/hardware/coretiming"
	"github.com/gekkoemu/gekko/hardware/cpu"
	"github.com/gekkoemu/gekko/hardware/timers"
	"github.com/gekkoemu/gekko/savestate"
)

// Console is the main container for the timing components of the emulated
// console.
type Console struct {
	Env *environment.Environment

	CPU    *cpu.CPU
	Timing *coretiming.CoreTiming
	Timers *timers.Timers
	Audio  *audio.Audio
}

// NewConsole creates a new Console and everything associated with the
// hardware.
//
// The mixer argument can be nil, in which case audio samples are
// discarded. The onDecrementerZero argument can also be nil.
func NewConsole(env *environment.Environment, hooks coretiming.Hooks, mixer audio.Mixer, onDecrementerZero func()) (*Console, error) {
	con := &Console{
		Env: env,
		CPU: cpu.NewCPU(),
	}

	var err error

	con.Timing, err = coretiming.NewCoreTiming(env, con.CPU, hooks)
	if err != nil {
		return nil, err
	}

	con.Timers = timers.NewTimers(con.Timing, onDecrementerZero)
	con.Audio = audio.NewAudio(con.Timing, clocks.CubeCore, mixer)

	return con, nil
}

// DoState saves or restores the console's timing state, including the CPU
// registers shared with the scheduler.
func (con *Console) DoState(s *savestate.Buffer) error {
	s.Int32(&con.CPU.Downcount)
	return con.Timing.DoState(s)
}
