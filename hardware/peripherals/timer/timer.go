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

// Package timer implements the TIMER peripheral of the nRF52840. The
// operation of the peripheral is described in the nRF52840 product
// specification, section 6.30.
//
// The counter is not ticked cycle by cycle. It free-runs against the
// virtual clock and is reconciled on demand: whenever the guest touches a
// register that depends on the counter, and whenever the one-shot host
// timer expires at the next compare deadline.
package timer

import (
	"fmt"
	"math/bits"

	"github.com/nrfemu/nrfemu/hardware/clocks"
	"github.com/nrfemu/nrfemu/hardware/irq"
	"github.com/nrfemu/nrfemu/hardware/memory"
	"github.com/nrfemu/nrfemu/hardware/memorymap"
	"github.com/nrfemu/nrfemu/hardware/peripherals"
	"github.com/nrfemu/nrfemu/hardware/vclock"
	"github.com/nrfemu/nrfemu/logger"
)

// register offsets in the TIMER window.
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
	shortsMask    = 0x0f0f
	intenMask     = 0x000f0000
	bitmodeMask   = 0x3
	prescalerMask = 0xf
)

// values for the MODE register.
const (
	modeTimer   = 0
	modeCounter = 1
)

// NumCC is the number of compare/capture registers in each TIMER instance.
const NumCC = 4

// the BITMODE field does not select bit widths in numeric order. the
// mapping is taken from the product specification
var bitwidths = [4]uint{16, 8, 24, 32}

// Timer is a single instance of the TIMER peripheral.
type Timer struct {
	id  int
	tag string

	clk *vclock.Clock
	tmr *vclock.Timer

	// the outgoing interrupt line, wired to the CPU by the SoC
	IRQ *irq.Line

	mmio *memory.Region

	// the virtual time at which the timer was last started and at which the
	// counter was last reconciled
	timerStartNS    int64
	updateCounterNS int64

	counter uint32
	running bool

	eventsCompare [NumCC]bool
	cc            [NumCC]uint32
	shorts        uint32
	inten         uint32
	mode          uint32
	bitmode       uint32
	prescaler     uint32
}

// NewTimer is the preferred method of initialisation for the Timer type.
// The id is the instance number, 0 to 2.
func NewTimer(id int, clk *vclock.Clock) *Timer {
	t := &Timer{
		id:  id,
		tag: fmt.Sprintf("TIMER%d", id),
		clk: clk,
	}
	t.tmr = clk.NewTimer(t.tag, t.expire)
	t.IRQ = irq.NewLine(t.tag)
	t.mmio = memory.NewIO(t.tag, memorymap.PeripheralSize, t, 4, 4)
	return t
}

// ID returns the instance number of the timer.
func (t *Timer) ID() int {
	return t.id
}

// MMIO returns the register window of the timer, for mapping by the SoC.
func (t *Timer) MMIO() *memory.Region {
	return t.mmio
}

// Reset the timer to its power-on state.
func (t *Timer) Reset() {
	t.tmr.Del()
	t.timerStartNS = 0
	t.updateCounterNS = 0
	t.counter = 0
	t.running = false
	t.eventsCompare = [NumCC]bool{}
	t.cc = [NumCC]uint32{}
	t.shorts = 0
	t.inten = 0
	t.mode = 0
	t.bitmode = 0
	t.prescaler = 0
	t.IRQ.Set(false)
}

// the modulus of the counter for the current BITMODE.
func (t *Timer) modulus() uint64 {
	return uint64(1) << bitwidths[t.bitmode]
}

func (t *Timer) freq() uint64 {
	return clocks.HFCLK >> t.prescaler
}

func (t *Timer) nsToTicks(ns int64) uint64 {
	return muldiv64(uint64(ns), t.freq(), clocks.NanosecondsPerSecond)
}

func (t *Timer) ticksToNS(ticks uint64) int64 {
	return int64(muldiv64(ticks, clocks.NanosecondsPerSecond, t.freq()))
}

// updateCounter reconciles the counter with the virtual clock, returning
// the number of ticks since the last reconciliation.
func (t *Timer) updateCounter(now int64) uint64 {
	ticks := t.nsToTicks(now - t.updateCounterNS)
	t.counter = uint32((uint64(t.counter) + ticks) % t.modulus())
	t.updateCounterNS = now
	return ticks
}

// rearm schedules the host timer for the nearest compare register whose
// event has not yet fired. Assumes the counter is up to date. A CC equal to
// the current counter is a full counter wrap away.
func (t *Timer) rearm(now int64) {
	const maxInt64 = int64(^uint64(0) >> 1)
	minNS := maxInt64

	for i := 0; i < NumCC; i++ {
		if t.eventsCompare[i] {
			// already expired, ignore it for now
			continue
		}

		var deltaNS int64
		if t.cc[i] <= t.counter {
			deltaNS = t.ticksToNS(t.modulus() - uint64(t.counter) + uint64(t.cc[i]))
		} else {
			deltaNS = t.ticksToNS(uint64(t.cc[i]) - uint64(t.counter))
		}

		if deltaNS < minNS {
			minNS = deltaNS
		}
	}

	if minNS != maxInt64 {
		t.tmr.ModNS(now + minNS)
	}
}

func (t *Timer) updateIRQ() {
	flag := false
	for i := 0; i < NumCC; i++ {
		flag = flag || (t.eventsCompare[i] && t.inten&(1<<(16+i)) != 0)
	}
	t.IRQ.Set(flag)
}

// expire reconciles the counter and fires the compare events that the
// advancing counter has passed. It is the upcall of the host timer and is
// also called directly wherever a register access needs the counter and
// event state to be up to date.
func (t *Timer) expire() {
	now := t.clk.Nanoseconds()

	// distance to each compare value before the counter advances
	var ccRemaining [NumCC]uint64
	for i := 0; i < NumCC; i++ {
		if t.cc[i] > t.counter {
			ccRemaining[i] = uint64(t.cc[i]) - uint64(t.counter)
		} else {
			ccRemaining[i] = t.modulus() - uint64(t.counter) + uint64(t.cc[i])
		}
	}

	ticks := t.updateCounter(now)

	shouldStop := false
	for i := 0; i < NumCC; i++ {
		if ccRemaining[i] <= ticks {
			t.eventsCompare[i] = true

			if t.shorts&(1<<i) != 0 {
				t.timerStartNS = now
				t.updateCounterNS = now
				t.counter = 0
			}

			shouldStop = shouldStop || t.shorts&(1<<(i+8)) != 0
		}
	}

	t.updateIRQ()

	if shouldStop {
		t.running = false
		t.tmr.Del()
	} else {
		t.rearm(now)
	}
}

// counterCompare scans the compare registers after a COUNT task in counter
// mode.
func (t *Timer) counterCompare() {
	counter := t.counter
	for i := 0; i < NumCC; i++ {
		if counter == t.cc[i] {
			t.eventsCompare[i] = true

			if t.shorts&(1<<i) != 0 {
				t.counter = 0
			}
		}
	}
}

// Read implements the memory.Handler interface.
func (t *Timer) Read(offset uint32, size int) uint64 {
	var r uint64

	switch {
	case offset >= eventCompare0 && offset < eventCompare0+4*NumCC:
		if t.eventsCompare[(offset-eventCompare0)/4] {
			r = 1
		}
	case offset == regShorts:
		r = uint64(t.shorts)
	case offset == regIntenset:
		r = uint64(t.inten)
	case offset == regIntenclr:
		r = uint64(t.inten)
	case offset == regMode:
		r = uint64(t.mode)
	case offset == regBitmode:
		r = uint64(t.bitmode)
	case offset == regPrescaler:
		r = uint64(t.prescaler)
	case offset >= regCC0 && offset < regCC0+4*NumCC:
		r = uint64(t.cc[(offset-regCC0)/4])
	default:
		logger.Logf(t.tag, "bad read offset %#03x", offset)
	}

	return r
}

// Write implements the memory.Handler interface.
func (t *Timer) Write(offset uint32, value uint64, size int) {
	now := t.clk.Nanoseconds()

	switch {
	case offset == taskStart:
		if value == peripherals.TriggerTask && t.mode == modeTimer {
			t.running = true
			t.timerStartNS = now - t.ticksToNS(uint64(t.counter))
			t.updateCounterNS = now
			t.rearm(now)
		}

	case offset == taskStop || offset == taskShutdown:
		if value == peripherals.TriggerTask {
			t.running = false
			t.tmr.Del()
		}

	case offset == taskCount:
		if value == peripherals.TriggerTask && t.mode == modeCounter {
			t.counter = uint32((uint64(t.counter) + 1) % t.modulus())
			t.counterCompare()
		}

	case offset == taskClear:
		if value == peripherals.TriggerTask {
			t.timerStartNS = now
			t.updateCounterNS = now
			t.counter = 0
			if t.running {
				t.rearm(now)
			}
		}

	case offset >= taskCapture0 && offset < taskCapture0+4*NumCC:
		if value == peripherals.TriggerTask {
			if t.running {
				// update counter and all state
				t.expire()
			}
			t.cc[(offset-taskCapture0)/4] = t.counter
		}

	case offset >= eventCompare0 && offset < eventCompare0+4*NumCC:
		if value == peripherals.EventClear {
			t.eventsCompare[(offset-eventCompare0)/4] = false
			if t.running {
				// update counter and all state
				t.expire()
			}
		}

	case offset == regShorts:
		t.shorts = uint32(value) & shortsMask

	case offset == regIntenset:
		t.inten |= uint32(value) & intenMask

	case offset == regIntenclr:
		t.inten &^= uint32(value) & intenMask

	case offset == regMode:
		t.mode = uint32(value)

	case offset == regBitmode:
		if t.mode == modeTimer && t.running {
			logger.Logf(t.tag, "erroneous change of BITMODE while timer is running")
		}
		t.bitmode = uint32(value) & bitmodeMask

	case offset == regPrescaler:
		if t.mode == modeTimer && t.running {
			logger.Logf(t.tag, "erroneous change of PRESCALER while timer is running")
		}
		t.prescaler = uint32(value) & prescalerMask

	case offset >= regCC0 && offset < regCC0+4*NumCC:
		if t.running {
			// update counter
			t.expire()
		}

		t.cc[(offset-regCC0)/4] = uint32(value % t.modulus())

		if t.running {
			t.rearm(now)
		}

	default:
		logger.Logf(t.tag, "bad write offset %#03x", offset)
	}

	t.updateIRQ()
}

// Running returns true if the timer is counting.
func (t *Timer) Running() bool {
	return t.running
}

// Counter reconciles the counter with the virtual clock and returns it. The
// TIMER has no counter register; this is the equivalent of a CAPTURE task
// without disturbing the CC registers.
func (t *Timer) Counter() uint32 {
	if t.running {
		t.expire()
	}
	return t.counter
}

// muldiv64 computes (a*b)/c without losing precision in the intermediate
// multiplication.
func muldiv64(a uint64, b uint64, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	q, _ := bits.Div64(hi, lo, c)
	return q
}
