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

package timer_test

import (
	"bytes"
	"testing"

	"github.com/nrfemu/nrfemu/hardware/peripherals/timer"
	"github.com/nrfemu/nrfemu/hardware/vclock"
	"github.com/nrfemu/nrfemu/migration"
	"github.com/nrfemu/nrfemu/test"
)

// register offsets used by the tests.
const (
	taskStart     = 0x000
	taskStop      = 0x004
	taskCount     = 0x008
	taskClear     = 0x00c
	taskShutdown  = 0x010
	taskCapture0  = 0x040
	eventCompare0 = 0x140
	regShorts     = 0x200
	regIntenset   = 0x304
	regIntenclr   = 0x308
	regMode       = 0x504
	regBitmode    = 0x508
	regPrescaler  = 0x510
	regCC0        = 0x540
)

const (
	microsecond = 1000
	millisecond = 1000000
)

func newTimer() (*timer.Timer, *vclock.Clock) {
	clk := vclock.NewClock()
	t := timer.NewTimer(0, clk)
	t.Reset()
	return t, clk
}

func poke(t *timer.Timer, offset uint64, value uint64) {
	t.MMIO().Write(offset, value, 4)
}

func peek(t *timer.Timer, offset uint64) uint64 {
	return t.MMIO().Read(offset, 4)
}

// a one-shot compare at 1ms with a 4MHz tick
func TestOneShot(t *testing.T) {
	tmr, clk := newTimer()

	poke(tmr, regPrescaler, 4) // 64MHz >> 4 = 4MHz
	poke(tmr, regBitmode, 3)   // 32-bit
	poke(tmr, regCC0, 4000)    // 4000 ticks = 1ms
	poke(tmr, regIntenset, 0x10000)
	poke(tmr, taskStart, 1)

	test.ExpectEquality(t, tmr.Running(), true)

	// just before the deadline nothing has happened
	clk.Advance(1*millisecond - 1)
	test.ExpectEquality(t, peek(tmr, eventCompare0), uint64(0))
	test.ExpectEquality(t, tmr.IRQ.Level(), false)

	clk.Advance(1)
	test.ExpectEquality(t, peek(tmr, eventCompare0), uint64(1))
	test.ExpectEquality(t, tmr.IRQ.Level(), true)

	// clearing the event deasserts the interrupt
	poke(tmr, eventCompare0, 0)
	test.ExpectEquality(t, peek(tmr, eventCompare0), uint64(0))
	test.ExpectEquality(t, tmr.IRQ.Level(), false)
}

// an event without the corresponding interrupt enable bit never asserts the
// line
func TestInterruptEnable(t *testing.T) {
	tmr, clk := newTimer()

	poke(tmr, regPrescaler, 6) // 1MHz, 1 tick per microsecond
	poke(tmr, regBitmode, 3)
	poke(tmr, regCC0, 100)
	poke(tmr, taskStart, 1)

	clk.Advance(200 * microsecond)
	test.ExpectEquality(t, peek(tmr, eventCompare0), uint64(1))
	test.ExpectEquality(t, tmr.IRQ.Level(), false)

	// enabling the interrupt with the event already set asserts the line
	// immediately
	poke(tmr, regIntenset, 0x10000)
	test.ExpectEquality(t, tmr.IRQ.Level(), true)

	poke(tmr, regIntenclr, 0x10000)
	test.ExpectEquality(t, tmr.IRQ.Level(), false)
	test.ExpectEquality(t, peek(tmr, regIntenset), uint64(0))
}

// the shortcut clears the counter when CC1 matches
func TestShortcutClear(t *testing.T) {
	tmr, clk := newTimer()

	poke(tmr, regPrescaler, 6) // 1MHz
	poke(tmr, regBitmode, 3)
	poke(tmr, regCC0+4, 100)
	poke(tmr, regShorts, 0x2)
	poke(tmr, taskStart, 1)

	clk.Advance(150 * microsecond)

	test.ExpectEquality(t, peek(tmr, eventCompare0+4), uint64(1))

	// the counter wrapped through the shortcut clear at 100 ticks
	test.ExpectEquality(t, tmr.Counter(), uint32(50))
	test.ExpectEquality(t, tmr.Running(), true)
}

// the shortcut stops the timer when CC2 matches
func TestShortcutStop(t *testing.T) {
	tmr, clk := newTimer()

	poke(tmr, regPrescaler, 6) // 1MHz
	poke(tmr, regBitmode, 3)
	poke(tmr, regCC0+8, 1000)
	poke(tmr, regShorts, 0x400)
	poke(tmr, taskStart, 1)

	clk.Advance(1500 * microsecond)

	test.ExpectEquality(t, peek(tmr, eventCompare0+8), uint64(1))
	test.ExpectEquality(t, tmr.Running(), false)

	// the counter froze when the timer stopped
	test.ExpectEquality(t, tmr.Counter(), uint32(1000))

	// and stays frozen
	clk.Advance(1000 * microsecond)
	test.ExpectEquality(t, tmr.Counter(), uint32(1000))
}

// a CC equal to the current counter is a full counter wrap away
func TestFullWrapDistance(t *testing.T) {
	tmr, clk := newTimer()

	poke(tmr, regPrescaler, 6) // 1MHz
	poke(tmr, regBitmode, 0)   // 16-bit
	poke(tmr, regCC0, 0)
	poke(tmr, regIntenset, 0x10000)
	poke(tmr, taskStart, 1)

	// 2^16 microseconds to the wrap
	clk.Advance(65536*microsecond - 1)
	test.ExpectEquality(t, peek(tmr, eventCompare0), uint64(0))

	clk.Advance(1)
	test.ExpectEquality(t, peek(tmr, eventCompare0), uint64(1))
}

// BITMODE selects bit widths out of numeric order: 0 is 16-bit, 1 is 8-bit
func TestCCModulo(t *testing.T) {
	tmr, _ := newTimer()

	poke(tmr, regBitmode, 1) // 8-bit
	poke(tmr, regCC0, 0x1ff)
	test.ExpectEquality(t, peek(tmr, regCC0), uint64(0xff))

	poke(tmr, regBitmode, 0) // 16-bit
	poke(tmr, regCC0, 0x12345)
	test.ExpectEquality(t, peek(tmr, regCC0), uint64(0x2345))
}

func TestCounterMode(t *testing.T) {
	tmr, clk := newTimer()

	poke(tmr, regMode, 1) // counter mode
	poke(tmr, regBitmode, 1)
	poke(tmr, regCC0, 3)
	poke(tmr, regIntenset, 0x10000)

	// START is ignored in counter mode
	poke(tmr, taskStart, 1)
	test.ExpectEquality(t, tmr.Running(), false)

	// the virtual clock does not advance the counter in counter mode
	clk.Advance(1 * millisecond)
	test.ExpectEquality(t, tmr.Counter(), uint32(0))

	poke(tmr, taskCount, 1)
	poke(tmr, taskCount, 1)
	test.ExpectEquality(t, tmr.Counter(), uint32(2))
	test.ExpectEquality(t, peek(tmr, eventCompare0), uint64(0))

	poke(tmr, taskCount, 1)
	test.ExpectEquality(t, peek(tmr, eventCompare0), uint64(1))
	test.ExpectEquality(t, tmr.IRQ.Level(), true)

	// the 8-bit counter wraps
	for i := 0; i < 253; i++ {
		poke(tmr, taskCount, 1)
	}
	test.ExpectEquality(t, tmr.Counter(), uint32(0))
}

func TestClear(t *testing.T) {
	tmr, clk := newTimer()

	poke(tmr, regPrescaler, 6)
	poke(tmr, regBitmode, 3)
	poke(tmr, regCC0, 1000)
	poke(tmr, taskStart, 1)

	clk.Advance(400 * microsecond)
	test.ExpectEquality(t, tmr.Counter(), uint32(400))

	poke(tmr, taskClear, 1)
	test.ExpectEquality(t, tmr.Counter(), uint32(0))

	// counting resumes from zero
	clk.Advance(100 * microsecond)
	test.ExpectEquality(t, tmr.Counter(), uint32(100))
}

func TestCapture(t *testing.T) {
	tmr, clk := newTimer()

	poke(tmr, regPrescaler, 6)
	poke(tmr, regBitmode, 3)
	poke(tmr, taskStart, 1)

	clk.Advance(123 * microsecond)
	poke(tmr, taskCapture0+4, 1)
	test.ExpectEquality(t, peek(tmr, regCC0+4), uint64(123))
}

// two successive STOPs are equivalent to one
func TestStopIdempotence(t *testing.T) {
	tmr, clk := newTimer()

	poke(tmr, regPrescaler, 6)
	poke(tmr, regBitmode, 3)
	poke(tmr, taskStart, 1)

	clk.Advance(100 * microsecond)
	poke(tmr, taskStop, 1)
	test.ExpectEquality(t, tmr.Running(), false)
	c := tmr.Counter()

	poke(tmr, taskStop, 1)
	test.ExpectEquality(t, tmr.Running(), false)
	test.ExpectEquality(t, tmr.Counter(), c)

	// SHUTDOWN behaves like STOP
	poke(tmr, taskShutdown, 1)
	test.ExpectEquality(t, tmr.Running(), false)
}

// PRESCALER changes while running are logged but applied
func TestPrescalerWhileRunning(t *testing.T) {
	tmr, _ := newTimer()

	poke(tmr, regPrescaler, 4)
	poke(tmr, taskStart, 1)
	poke(tmr, regPrescaler, 2)
	test.ExpectEquality(t, peek(tmr, regPrescaler), uint64(2))
}

// misaligned and undersized accesses never reach the model
func TestAccessEnforcement(t *testing.T) {
	tmr, _ := newTimer()

	tmr.MMIO().Write(regPrescaler, 4, 1)
	test.ExpectEquality(t, peek(tmr, regPrescaler), uint64(0))

	tmr.MMIO().Write(regPrescaler+1, 4, 4)
	test.ExpectEquality(t, peek(tmr, regPrescaler), uint64(0))

	test.ExpectEquality(t, tmr.MMIO().Read(regPrescaler, 2), uint64(0))
}

func TestMigration(t *testing.T) {
	tmr, clk := newTimer()

	poke(tmr, regPrescaler, 6)
	poke(tmr, regBitmode, 3)
	poke(tmr, regCC0, 1000)
	poke(tmr, regIntenset, 0x10000)
	poke(tmr, taskStart, 1)
	clk.Advance(400 * microsecond)

	b := &bytes.Buffer{}
	enc := migration.NewEncoder(b)
	test.ExpectSuccess(t, tmr.Save(enc))

	// restore into a second instance attached to the same virtual clock
	restored := timer.NewTimer(0, clk)
	restored.Reset()
	dec := migration.NewDecoder(b)
	test.ExpectSuccess(t, restored.Load(dec))

	test.ExpectEquality(t, restored.Running(), true)
	test.ExpectEquality(t, restored.Counter(), uint32(400))
	test.ExpectEquality(t, peek(restored, regCC0), uint64(1000))
	test.ExpectEquality(t, peek(restored, regIntenset), uint64(0x10000))

	// the restored instance continues to the compare deadline
	clk.Advance(600 * microsecond)
	test.ExpectEquality(t, peek(restored, eventCompare0), uint64(1))
	test.ExpectEquality(t, restored.IRQ.Level(), true)
}
