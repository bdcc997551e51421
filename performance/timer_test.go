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

package performance_test

import (
	"testing"
	"time"

	"github.com/gekkoemu/gekko/performance"
	"github.com/gekkoemu/gekko/test"
)

func TestTimer(t *testing.T) {
	var tmr performance.Timer

	// a timer that has never been started measures zero
	test.ExpectEquality(t, tmr.Running(), false)
	test.ExpectEquality(t, tmr.ElapsedMs(), uint64(0))

	tmr.Start()
	test.ExpectEquality(t, tmr.Running(), true)
	tmr.Stop()
	test.ExpectEquality(t, tmr.Running(), false)
}

func TestTimerWithOffset(t *testing.T) {
	var tmr performance.Timer

	tmr.StartWithOffset(50 * time.Millisecond)
	test.ExpectSuccess(t, tmr.ElapsedMs() >= 50)

	tmr.Stop()
	elapsed := tmr.ElapsedMs()
	test.ExpectSuccess(t, elapsed >= 50)

	// a stopped timer does not keep measuring
	test.ExpectEquality(t, tmr.ElapsedMs(), elapsed)
}
