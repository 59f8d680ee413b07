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

package vclock_test

import (
	"testing"

	"github.com/nrfemu/nrfemu/hardware/vclock"
	"github.com/nrfemu/nrfemu/test"
)

func TestAdvance(t *testing.T) {
	clk := vclock.NewClock()
	test.ExpectEquality(t, clk.Nanoseconds(), int64(0))

	clk.Advance(100)
	test.ExpectEquality(t, clk.Nanoseconds(), int64(100))

	clk.Advance(0)
	test.ExpectEquality(t, clk.Nanoseconds(), int64(100))
}

func TestOneShot(t *testing.T) {
	clk := vclock.NewClock()

	var fired int
	var firedAt int64

	tmr := clk.NewTimer("test", func() {
		fired++
		firedAt = clk.Nanoseconds()
	})

	// an unarmed timer never fires
	clk.Advance(1000)
	test.ExpectEquality(t, fired, 0)

	tmr.ModNS(1500)
	test.ExpectEquality(t, tmr.Armed(), true)

	// deadline not yet reached
	clk.Advance(400)
	test.ExpectEquality(t, fired, 0)

	// the upcall sees the clock at the deadline, not at the end of the
	// advanced period
	clk.Advance(1000)
	test.ExpectEquality(t, fired, 1)
	test.ExpectEquality(t, firedAt, int64(1500))
	test.ExpectEquality(t, clk.Nanoseconds(), int64(2400))

	// one-shot: no refire without rearming
	clk.Advance(1000)
	test.ExpectEquality(t, fired, 1)
}

func TestDel(t *testing.T) {
	clk := vclock.NewClock()

	var fired int
	tmr := clk.NewTimer("test", func() {
		fired++
	})

	tmr.ModNS(100)
	tmr.Del()
	clk.Advance(1000)
	test.ExpectEquality(t, fired, 0)

	// deleting an unarmed timer is a no-op
	tmr.Del()
}

func TestRearmDuringUpcall(t *testing.T) {
	clk := vclock.NewClock()

	var fires []int64
	var tmr *vclock.Timer
	tmr = clk.NewTimer("test", func() {
		fires = append(fires, clk.Nanoseconds())
		tmr.ModNS(clk.Nanoseconds() + 100)
	})

	tmr.ModNS(100)
	clk.Advance(350)

	test.ExpectEquality(t, len(fires), 3)
	test.ExpectEquality(t, fires[0], int64(100))
	test.ExpectEquality(t, fires[1], int64(200))
	test.ExpectEquality(t, fires[2], int64(300))
	test.ExpectEquality(t, tmr.Armed(), true)
	test.ExpectEquality(t, tmr.Deadline(), int64(400))
}

func TestDeadlineOrder(t *testing.T) {
	clk := vclock.NewClock()

	var order []string
	a := clk.NewTimer("a", func() { order = append(order, "a") })
	b := clk.NewTimer("b", func() { order = append(order, "b") })

	// registration order is b, a but deadline order is a, b
	b.ModNS(200)
	a.ModNS(100)
	clk.Advance(1000)

	test.ExpectEquality(t, len(order), 2)
	test.ExpectEquality(t, order[0], "a")
	test.ExpectEquality(t, order[1], "b")
}
