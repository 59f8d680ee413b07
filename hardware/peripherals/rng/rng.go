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

// Package rng implements the random number generator of the nRF52840.
// Generation of a value takes the average generation time stated in the
// product specification, paced by the virtual clock. The stochastic
// properties of the real entropy source are not modeled; values come from a
// deterministic pseudo random sequence, which also keeps emulation runs
// reproducible.
package rng

import (
	"math/rand"

	"github.com/nrfemu/nrfemu/hardware/irq"
	"github.com/nrfemu/nrfemu/hardware/memory"
	"github.com/nrfemu/nrfemu/hardware/memorymap"
	"github.com/nrfemu/nrfemu/hardware/peripherals"
	"github.com/nrfemu/nrfemu/hardware/vclock"
	"github.com/nrfemu/nrfemu/logger"
)

// register offsets in the RNG window.
const (
	taskStart   = 0x000
	taskStop    = 0x004
	eventValrdy = 0x100
	regShorts   = 0x200
	regInten    = 0x300
	regIntenset = 0x304
	regIntenclr = 0x308
	regConfig   = 0x504
	regValue    = 0x508
)

const (
	// bit 0 of SHORTS stops generation once a value is ready
	shortValrdyStop = 0x1

	// bit 0 of INTEN enables the VALRDY interrupt
	intenValrdy = 0x1

	// bit 0 of CONFIG enables the bias correction filter
	configDercen = 0x1
)

// default generation periods in microseconds, from the product
// specification.
const (
	DefaultPeriodUnfilteredUS = 167
	DefaultPeriodFilteredUS   = 660
)

// Config is the set of per-instance options for the RNG type.
type Config struct {
	// time between two biased values, in microseconds
	PeriodUnfilteredUS uint16

	// time between two unbiased values, in microseconds
	PeriodFilteredUS uint16
}

// RNG is the random number generator peripheral.
type RNG struct {
	conf Config

	clk *vclock.Clock
	tmr *vclock.Timer

	// the outgoing interrupt line, wired to the CPU by the SoC
	IRQ *irq.Line

	mmio *memory.Region

	prng *rand.Rand

	value         uint8
	active        bool
	eventGen      bool
	shortcutStop  bool
	intenEnabled  bool
	filterEnabled bool
}

// NewRNG is the preferred method of initialisation for the RNG type. Zero
// values in the config select the defaults.
func NewRNG(conf Config, clk *vclock.Clock) *RNG {
	if conf.PeriodUnfilteredUS == 0 {
		conf.PeriodUnfilteredUS = DefaultPeriodUnfilteredUS
	}
	if conf.PeriodFilteredUS == 0 {
		conf.PeriodFilteredUS = DefaultPeriodFilteredUS
	}

	r := &RNG{
		conf: conf,
		clk:  clk,
		prng: rand.New(rand.NewSource(1)),
	}
	r.tmr = clk.NewTimer("RNG", r.expire)
	r.IRQ = irq.NewLine("RNG")
	r.mmio = memory.NewIO("RNG", memorymap.PeripheralSize, r, 4, 4)
	return r
}

// MMIO returns the register window of the RNG, for mapping by the SoC.
func (r *RNG) MMIO() *memory.Region {
	return r.mmio
}

// Reset the RNG to its power-on state.
func (r *RNG) Reset() {
	r.tmr.Del()
	r.value = 0
	r.active = false
	r.eventGen = false
	r.shortcutStop = false
	r.intenEnabled = false
	r.filterEnabled = false
	r.IRQ.Set(false)
}

func (r *RNG) periodNS() int64 {
	if r.filterEnabled {
		return int64(r.conf.PeriodFilteredUS) * 1000
	}
	return int64(r.conf.PeriodUnfilteredUS) * 1000
}

func (r *RNG) updateIRQ() {
	r.IRQ.Set(r.eventGen && r.intenEnabled)
}

func (r *RNG) expire() {
	r.value = uint8(r.prng.Intn(256))
	r.eventGen = true
	r.updateIRQ()

	if r.shortcutStop {
		r.active = false
		return
	}

	r.tmr.ModNS(r.clk.Nanoseconds() + r.periodNS())
}

// Read implements the memory.Handler interface.
func (r *RNG) Read(offset uint32, size int) uint64 {
	var v uint64

	switch offset {
	case eventValrdy:
		if r.eventGen {
			v = 1
		}
	case regShorts:
		if r.shortcutStop {
			v = shortValrdyStop
		}
	case regInten, regIntenset, regIntenclr:
		if r.intenEnabled {
			v = intenValrdy
		}
	case regConfig:
		if r.filterEnabled {
			v = configDercen
		}
	case regValue:
		v = uint64(r.value)
	default:
		logger.Logf("RNG", "bad read offset %#03x", offset)
	}

	return v
}

// Write implements the memory.Handler interface.
func (r *RNG) Write(offset uint32, value uint64, size int) {
	switch offset {
	case taskStart:
		if value == peripherals.TriggerTask && !r.active {
			r.active = true
			r.tmr.ModNS(r.clk.Nanoseconds() + r.periodNS())
		}
	case taskStop:
		if value == peripherals.TriggerTask {
			r.active = false
			r.tmr.Del()
		}
	case eventValrdy:
		if value == peripherals.EventClear {
			r.eventGen = false
		}
	case regShorts:
		r.shortcutStop = value&shortValrdyStop != 0
	case regIntenset:
		if value&intenValrdy != 0 {
			r.intenEnabled = true
		}
	case regIntenclr:
		if value&intenValrdy != 0 {
			r.intenEnabled = false
		}
	case regConfig:
		r.filterEnabled = value&configDercen != 0
	default:
		logger.Logf("RNG", "bad write offset %#03x", offset)
	}

	r.updateIRQ()
}
