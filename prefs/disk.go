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

package prefs

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gekkoemu/gekko/curated"
	"github.com/gekkoemu/gekko/logger"
)

// DefaultPrefsFile is the default filename of the global preferences file.
const DefaultPrefsFile = "gekko.prefs"

// the first line of a prefs file
const prefsHeader = "*** gekko preferences file ***"

// the string that separates the key from the value in a prefs file entry
const keySep = " :: "

// NoPrefsFile is a sentinel error pattern returned by Load() when the prefs
// file does not exist.
const NoPrefsFile = "prefs: no prefs file (%s)"

// Disk represents preference values as stored on disk. Every preference
// value is registered with the Add() function, keyed by a unique name.
type Disk struct {
	path    string
	entries map[string]pref
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	return &Disk{
		path:    path,
		entries: make(map[string]pref),
	}, nil
}

// Add preference value to list of values to save/load from disk. The key
// should be unique for the Disk instance.
func (dsk *Disk) Add(key string, p pref) error {
	if strings.Contains(key, keySep) {
		return curated.Errorf("prefs: illegal key (%s)", key)
	}

	if _, ok := dsk.entries[key]; ok {
		return curated.Errorf("prefs: duplicate key (%s)", key)
	}

	dsk.entries[key] = p
	return nil
}

// sorted list of registered keys. output and comparison is deterministic.
func (dsk *Disk) keys() []string {
	keys := make([]string, 0, len(dsk.entries))
	for key := range dsk.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (dsk *Disk) String() string {
	s := strings.Builder{}
	for _, key := range dsk.keys() {
		s.WriteString(fmt.Sprintf("%s%s%s\n", key, keySep, dsk.entries[key].String()))
	}
	return s.String()
}

// Load preference values from disk. The suppressNoPrefsFile argument
// controls whether a missing prefs file is an error. Values registered with
// this Disk instance but not present in the file are left untouched; keys
// in the file not registered with this instance are ignored (they may
// belong to another Disk instance sharing the file).
func (dsk *Disk) Load(suppressNoPrefsFile bool) error {
	f, err := os.Open(dsk.path)
	if err != nil {
		if os.IsNotExist(err) {
			if suppressNoPrefsFile {
				return nil
			}
			return curated.Errorf(NoPrefsFile, dsk.path)
		}
		return curated.Errorf("prefs: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	// check header
	if !scanner.Scan() || scanner.Text() != prefsHeader {
		return curated.Errorf("prefs: not a valid prefs file (%s)", dsk.path)
	}

	for scanner.Scan() {
		kv := strings.SplitN(scanner.Text(), keySep, 2)
		if len(kv) != 2 {
			continue
		}

		if p, ok := dsk.entries[kv[0]]; ok {
			if err := p.Set(kv[1]); err != nil {
				logger.Logf(logger.Allow, "prefs", "error setting %s: %v", kv[0], err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	return nil
}

// Save current preference values to disk. Entries in the file belonging to
// other Disk instances are preserved.
func (dsk *Disk) Save() error {
	// load any existing entries from the file that aren't registered with
	// this instance
	other := make(map[string]string)

	if f, err := os.Open(dsk.path); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			kv := strings.SplitN(scanner.Text(), keySep, 2)
			if len(kv) != 2 {
				continue
			}
			if _, ok := dsk.entries[kv[0]]; !ok {
				other[kv[0]] = kv[1]
			}
		}
		f.Close()
	}

	f, err := os.Create(dsk.path)
	if err != nil {
		return curated.Errorf("prefs: %v", err)
	}
	defer f.Close()

	s := strings.Builder{}
	s.WriteString(prefsHeader)
	s.WriteString("\n")

	keys := make([]string, 0, len(dsk.entries)+len(other))
	for key := range other {
		keys = append(keys, key)
	}
	keys = append(keys, dsk.keys()...)
	sort.Strings(keys)

	for _, key := range keys {
		if p, ok := dsk.entries[key]; ok {
			s.WriteString(fmt.Sprintf("%s%s%s\n", key, keySep, p.String()))
		} else {
			s.WriteString(fmt.Sprintf("%s%s%s\n", key, keySep, other[key]))
		}
	}

	if _, err := f.WriteString(s.String()); err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	return nil
}

// Reset all registered preference values to their zero state and save to
// disk.
func (dsk *Disk) Reset() error {
	for _, p := range dsk.entries {
		if err := p.Reset(); err != nil {
			return curated.Errorf("prefs: %v", err)
		}
	}
	return dsk.Save()
}
