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

package curated_test

import (
	"errors"
	"testing"

	"github.com/gekkoemu/gekko/curated"
	"github.com/gekkoemu/gekko/test"
)

func TestIs(t *testing.T) {
	e := curated.Errorf("test: %d", 10)
	test.ExpectEquality(t, e.Error(), "test: 10")
	test.ExpectSuccess(t, curated.Is(e, "test: %d"))
	test.ExpectFailure(t, curated.Is(e, "test: %s"))

	// uncurated errors are never matched
	f := errors.New("test: 10")
	test.ExpectFailure(t, curated.Is(f, "test: %d"))
	test.ExpectFailure(t, curated.IsAny(f))
	test.ExpectSuccess(t, curated.IsAny(e))
}

func TestHas(t *testing.T) {
	e := curated.Errorf("inner: %d", 10)
	f := curated.Errorf("outer: %v", e)

	test.ExpectSuccess(t, curated.Has(f, "inner: %d"))
	test.ExpectSuccess(t, curated.Has(f, "outer: %v"))

	// Is() only matches the outermost pattern
	test.ExpectFailure(t, curated.Is(f, "inner: %d"))
	test.ExpectSuccess(t, curated.Is(f, "outer: %v"))
}

func TestNormalisation(t *testing.T) {
	// duplicate adjacent message parts are removed
	e := curated.Errorf("test: %v", errors.New("test: inner"))
	test.ExpectEquality(t, e.Error(), "test: inner")
}
