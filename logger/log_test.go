// This file is part of nrfemu.
//
// nrfemu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// nrfemu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with nrfemu.  If not, see <https://www.gnu.org/licenses/>.

package logger_test

import (
	"testing"

	"github.com/nrfemu/nrfemu/logger"
	"github.com/nrfemu/nrfemu/test"
)

// the package level functions work through a single central logger so the
// log must be cleared at the start of the test
func TestPackageLevelLogger(t *testing.T) {
	logger.Clear()

	tw := &test.Writer{}

	logger.Write(tw)
	test.ExpectEquality(t, tw.Compare(""), true)

	logger.Log("test", "this is a test")
	logger.Write(tw)
	test.ExpectEquality(t, tw.Compare("test: this is a test\n"), true)

	// clear the test.Writer buffer before continuing, makes comparisons
	// easier to manage
	tw.Clear()

	logger.Logf("test2", "this is %s test", "another")
	logger.Write(tw)
	test.ExpectEquality(t, tw.Compare("test: this is a test\ntest2: this is another test\n"), true)

	tw.Clear()
	logger.Tail(tw, 1)
	test.ExpectEquality(t, tw.Compare("test2: this is another test\n"), true)
}

func TestWriteRecent(t *testing.T) {
	logger.Clear()

	tw := &test.Writer{}

	logger.Log("test", "older entry")
	logger.WriteRecent(tw)
	test.ExpectEquality(t, tw.Compare("test: older entry\n"), true)

	// the entry has been consumed by the previous WriteRecent()
	tw.Clear()
	logger.WriteRecent(tw)
	test.ExpectEquality(t, tw.Compare(""), true)

	tw.Clear()
	logger.Log("test", "newer entry")
	logger.WriteRecent(tw)
	test.ExpectEquality(t, tw.Compare("test: newer entry\n"), true)
}
