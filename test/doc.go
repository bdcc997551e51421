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

// Package test contains helper functions to remove common boilerplate in
// test functions.
//
// The Expect functions record a test error on failure but allow the test to
// continue. The Demand functions end the test immediately; useful when the
// tested values are used in further tests and so must be correct.
//
// Both sets of functions accept optional tags which are printed as part of
// any failure message. Useful when the same expectation appears more than
// once in a test function.
package test
