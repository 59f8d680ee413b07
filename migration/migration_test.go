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

package migration_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nrfemu/nrfemu/migration"
	"github.com/nrfemu/nrfemu/test"
)

type section struct {
	Counter uint32
	Flags   [4]bool
}

func TestRoundTrip(t *testing.T) {
	b := &bytes.Buffer{}

	enc := migration.NewEncoder(b)
	test.ExpectSuccess(t, enc.Encode("first", 1, section{Counter: 42, Flags: [4]bool{true, false, true, false}}))
	test.ExpectSuccess(t, enc.Encode("second", 1, section{Counter: 100}))

	dec := migration.NewDecoder(b)

	var s section
	test.ExpectSuccess(t, dec.Decode("first", 1, &s))
	test.ExpectEquality(t, s.Counter, uint32(42))
	test.ExpectEquality(t, s.Flags, [4]bool{true, false, true, false})

	test.ExpectSuccess(t, dec.Decode("second", 1, &s))
	test.ExpectEquality(t, s.Counter, uint32(100))
}

func TestWrongSection(t *testing.T) {
	b := &bytes.Buffer{}
	test.ExpectSuccess(t, migration.NewEncoder(b).Encode("first", 1, section{}))

	var s section
	err := migration.NewDecoder(b).Decode("other", 1, &s)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, errors.Is(err, migration.ErrWrongSection))
}

func TestWrongVersion(t *testing.T) {
	b := &bytes.Buffer{}
	test.ExpectSuccess(t, migration.NewEncoder(b).Encode("first", 2, section{}))

	var s section
	err := migration.NewDecoder(b).Decode("first", 1, &s)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, errors.Is(err, migration.ErrWrongVersion))
}

func TestTruncatedStream(t *testing.T) {
	var s section
	err := migration.NewDecoder(&bytes.Buffer{}).Decode("first", 1, &s)
	test.ExpectFailure(t, err)
}
