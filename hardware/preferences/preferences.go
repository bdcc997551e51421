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

package preferences

import (
	"sync"
	"sync/atomic"

	"github.com/gekkoemu/gekko/curated"
	"github.com/gekkoemu/gekko/prefs"
	"github.com/gekkoemu/gekko/resources"
)

// LiveTimingPreferences encapsulates the current (live) timing values.
//
// For performance critical situations these values should be preferred to
// the prefs values in Preferences. They are updated automatically when the
// corresponding prefs field is updated.
type LiveTimingPreferences struct {
	OverclockEnable atomic.Value // bool
	Overclock       atomic.Value // float64
	SyncOnSkipIdle  atomic.Value // bool
}

// Preferences defines and collates all the preference values used by the
// emulated hardware.
type Preferences struct {
	dsk *prefs.Disk

	// Prefer live values in performance critical code
	Live LiveTimingPreferences

	// Disk copies of preferences
	OverclockEnable prefs.Bool
	Overclock       prefs.Float
	SyncOnSkipIdle  prefs.Bool

	crit           sync.Mutex
	onChange       map[int]func()
	nextCallbackID int
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type.
func NewPreferences() (*Preferences, error) {
	p := &Preferences{
		onChange: make(map[int]func()),
	}

	// register callbacks to update the "live" values from the disk value and
	// to notify any registered change callbacks
	p.OverclockEnable.SetHookPost(func(v prefs.Value) error {
		p.Live.OverclockEnable.Store(v.(bool))
		p.notify()
		return nil
	})
	p.Overclock.SetHookPost(func(v prefs.Value) error {
		p.Live.Overclock.Store(v.(float64))
		p.notify()
		return nil
	})
	p.SyncOnSkipIdle.SetHookPost(func(v prefs.Value) error {
		p.Live.SyncOnSkipIdle.Store(v.(bool))
		p.notify()
		return nil
	})

	p.SetDefaults()

	pth, err := resources.JoinPath(prefs.DefaultPrefsFile)
	if err != nil {
		return nil, curated.Errorf("preferences: %v", err)
	}

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, curated.Errorf("preferences: %v", err)
	}

	err = p.dsk.Add("timing.overclock.enabled", &p.OverclockEnable)
	if err != nil {
		return nil, curated.Errorf("preferences: %v", err)
	}

	err = p.dsk.Add("timing.overclock.factor", &p.Overclock)
	if err != nil {
		return nil, curated.Errorf("preferences: %v", err)
	}

	err = p.dsk.Add("timing.synconskipidle", &p.SyncOnSkipIdle)
	if err != nil {
		return nil, curated.Errorf("preferences: %v", err)
	}

	err = p.dsk.Load(true)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all settings to default values.
func (p *Preferences) SetDefaults() {
	p.OverclockEnable.Set(false)
	p.Overclock.Set(1.0)
	p.SyncOnSkipIdle.Set(true)
}

// AddChangeCallback registers a function to be run whenever a preference
// value changes. The returned id can be used to remove the callback with
// RemoveChangeCallback().
//
// The callback is run on the goroutine that changed the preference value.
func (p *Preferences) AddChangeCallback(f func()) int {
	p.crit.Lock()
	defer p.crit.Unlock()

	id := p.nextCallbackID
	p.nextCallbackID++
	p.onChange[id] = f
	return id
}

// RemoveChangeCallback removes a callback previously registered with
// AddChangeCallback().
func (p *Preferences) RemoveChangeCallback(id int) {
	p.crit.Lock()
	defer p.crit.Unlock()
	delete(p.onChange, id)
}

func (p *Preferences) notify() {
	p.crit.Lock()
	callbacks := make([]func(), 0, len(p.onChange))
	for _, f := range p.onChange {
		callbacks = append(callbacks, f)
	}
	p.crit.Unlock()

	// run callbacks outside of the critical section. a callback may want to
	// read a preference value, which would deadlock otherwise
	for _, f := range callbacks {
		f()
	}
}

// Load current hardware preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save current hardware preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

// Reset all hardware preferences to the default values.
func (p *Preferences) Reset() error {
	p.SetDefaults()
	return p.dsk.Save()
}
