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

// Package rtc implements the RTC peripheral of the nRF52840: a 24-bit
// counter running from the 32.768kHz low frequency clock. The structure of
// the model follows the TIMER peripheral but without the mode, bitmode,
// shortcut and capture features.
//
// The TICK and OVRFLW events are not modeled. Their interrupt enable bits
// are accepted and stored but the events never generate.
package rtc

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

// register offsets in the RTC window.
const (
	taskStart      = 0x000
	taskStop       = 0x004
	taskClear      = 0x008
	taskTrigOvrflw = 0x00c
	eventCompare0  = 0x140
	regIntenset    = 0x304
	regIntenclr    = 0x308
	regEvten       = 0x340
	regEvtenset    = 0x344
	regEvtenclr    = 0x348
	regCounter     = 0x504
	regPrescaler   = 0x508
	regCC0         = 0x540
)

const (
	intenMask     = 0x000f0003
	evtenMask     = 0x000f0003
	prescalerMask = 0xfff
)

// the counter is always 24 bits wide.
const counterBitwidth = 24

// NumCC is the number of compare registers in each RTC instance.
const NumCC = 4

// RTC is a single instance of the RTC peripheral.
type RTC struct {
	id  int
	tag string

	clk *vclock.Clock
	tmr *vclock.Timer

	// the outgoing interrupt line, wired to the CPU by the SoC
	IRQ *irq.Line

	mmio *memory.Region

	updateCounterNS int64
	counter         uint32
	running         bool

	eventsCompare [NumCC]bool
	cc            [NumCC]uint32
	inten         uint32
	evten         uint32
	prescaler     uint32
}

// NewRTC is the preferred method of initialisation for the RTC type. The id
// is the instance number, 0 to 2.
func NewRTC(id int, clk *vclock.Clock) *RTC {
	r := &RTC{
		id:  id,
		tag: fmt.Sprintf("RTC%d", id),
		clk: clk,
	}
	r.tmr = clk.NewTimer(r.tag, r.expire)
	r.IRQ = irq.NewLine(r.tag)
	r.mmio = memory.NewIO(r.tag, memorymap.PeripheralSize, r, 4, 4)
	return r
}

// ID returns the instance number of the RTC.
func (r *RTC) ID() int {
	return r.id
}

// MMIO returns the register window of the RTC, for mapping by the SoC.
func (r *RTC) MMIO() *memory.Region {
	return r.mmio
}

// Reset the RTC to its power-on state.
func (r *RTC) Reset() {
	r.tmr.Del()
	r.updateCounterNS = 0
	r.counter = 0
	r.running = false
	r.eventsCompare = [NumCC]bool{}
	r.cc = [NumCC]uint32{}
	r.inten = 0
	r.evten = 0
	r.prescaler = 0
	r.IRQ.Set(false)
}

func (r *RTC) modulus() uint64 {
	return uint64(1) << counterBitwidth
}

func (r *RTC) freq() uint64 {
	f := uint64(clocks.LFCLK) >> r.prescaler
	if f == 0 {
		// the 12-bit prescaler field can shift the reference frequency all
		// the way to zero. clamp rather than divide by zero
		f = 1
	}
	return f
}

func (r *RTC) nsToTicks(ns int64) uint64 {
	return muldiv64(uint64(ns), r.freq(), clocks.NanosecondsPerSecond)
}

func (r *RTC) ticksToNS(ticks uint64) int64 {
	return int64(muldiv64(ticks, clocks.NanosecondsPerSecond, r.freq()))
}

// updateCounter reconciles the counter with the virtual clock, returning
// the number of ticks since the last reconciliation.
func (r *RTC) updateCounter(now int64) uint64 {
	ticks := r.nsToTicks(now - r.updateCounterNS)
	r.counter = uint32((uint64(r.counter) + ticks) % r.modulus())
	r.updateCounterNS = now
	return ticks
}

// rearm schedules the host timer for the nearest compare register whose
// event has not yet fired. Assumes the counter is up to date.
func (r *RTC) rearm(now int64) {
	const maxInt64 = int64(^uint64(0) >> 1)
	minNS := maxInt64

	for i := 0; i < NumCC; i++ {
		if r.eventsCompare[i] {
			// already expired, ignore it for now
			continue
		}

		var deltaNS int64
		if r.cc[i] <= r.counter {
			deltaNS = r.ticksToNS(r.modulus() - uint64(r.counter) + uint64(r.cc[i]))
		} else {
			deltaNS = r.ticksToNS(uint64(r.cc[i]) - uint64(r.counter))
		}

		if deltaNS < minNS {
			minNS = deltaNS
		}
	}

	if minNS != maxInt64 {
		r.tmr.ModNS(now + minNS)
	}
}

func (r *RTC) updateIRQ() {
	flag := false
	for i := 0; i < NumCC; i++ {
		flag = flag || (r.eventsCompare[i] && r.inten&(1<<(16+i)) != 0)
	}
	r.IRQ.Set(flag)
}

// expire reconciles the counter and fires the compare events that the
// advancing counter has passed.
func (r *RTC) expire() {
	now := r.clk.Nanoseconds()

	var ccRemaining [NumCC]uint64
	for i := 0; i < NumCC; i++ {
		if r.cc[i] > r.counter {
			ccRemaining[i] = uint64(r.cc[i]) - uint64(r.counter)
		} else {
			ccRemaining[i] = r.modulus() - uint64(r.counter) + uint64(r.cc[i])
		}
	}

	ticks := r.updateCounter(now)

	for i := 0; i < NumCC; i++ {
		if ccRemaining[i] <= ticks {
			r.eventsCompare[i] = true
		}
	}

	r.updateIRQ()
	r.rearm(now)
}

// Read implements the memory.Handler interface.
func (r *RTC) Read(offset uint32, size int) uint64 {
	var v uint64

	switch {
	case offset >= eventCompare0 && offset < eventCompare0+4*NumCC:
		if r.eventsCompare[(offset-eventCompare0)/4] {
			v = 1
		}
	case offset == regIntenset || offset == regIntenclr:
		v = uint64(r.inten)
	case offset == regEvten || offset == regEvtenset || offset == regEvtenclr:
		v = uint64(r.evten)
	case offset == regCounter:
		// reading the counter forces a reconciliation
		if r.running {
			r.expire()
		}
		v = uint64(r.counter)
	case offset == regPrescaler:
		v = uint64(r.prescaler)
	case offset >= regCC0 && offset < regCC0+4*NumCC:
		v = uint64(r.cc[(offset-regCC0)/4])
	default:
		logger.Logf(r.tag, "bad read offset %#03x", offset)
	}

	return v
}

// Write implements the memory.Handler interface.
func (r *RTC) Write(offset uint32, value uint64, size int) {
	now := r.clk.Nanoseconds()

	switch {
	case offset == taskStart:
		if value == peripherals.TriggerTask {
			r.running = true
			r.updateCounterNS = now
			r.rearm(now)
		}

	case offset == taskStop:
		if value == peripherals.TriggerTask {
			r.running = false
			r.tmr.Del()
		}

	case offset == taskClear:
		if value == peripherals.TriggerTask {
			r.updateCounterNS = now
			r.counter = 0
			if r.running {
				r.rearm(now)
			}
		}

	case offset == taskTrigOvrflw:
		if value == peripherals.TriggerTask {
			logger.Logf(r.tag, "TRIGOVRFLW task not implemented")
		}

	case offset >= eventCompare0 && offset < eventCompare0+4*NumCC:
		if value == peripherals.EventClear {
			r.eventsCompare[(offset-eventCompare0)/4] = false
			if r.running {
				// update counter and all state
				r.expire()
			}
		}

	case offset == regIntenset:
		r.inten |= uint32(value) & intenMask

	case offset == regIntenclr:
		r.inten &^= uint32(value) & intenMask

	case offset == regEvten:
		r.evten = uint32(value) & evtenMask

	case offset == regEvtenset:
		r.evten |= uint32(value) & evtenMask

	case offset == regEvtenclr:
		r.evten &^= uint32(value) & evtenMask

	case offset == regPrescaler:
		if r.running {
			logger.Logf(r.tag, "erroneous change of PRESCALER while RTC is running")
		}
		r.prescaler = uint32(value) & prescalerMask

	case offset >= regCC0 && offset < regCC0+4*NumCC:
		if r.running {
			// update counter
			r.expire()
		}

		r.cc[(offset-regCC0)/4] = uint32(value % r.modulus())

		if r.running {
			r.rearm(now)
		}

	default:
		logger.Logf(r.tag, "bad write offset %#03x", offset)
	}

	r.updateIRQ()
}

// Running returns true if the RTC is counting.
func (r *RTC) Running() bool {
	return r.running
}

// Counter reconciles the counter with the virtual clock and returns it.
func (r *RTC) Counter() uint32 {
	if r.running {
		r.expire()
	}
	return r.counter
}

// muldiv64 computes (a*b)/c without losing precision in the intermediate
// multiplication.
func muldiv64(a uint64, b uint64, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	q, _ := bits.Div64(hi, lo, c)
	return q
}
