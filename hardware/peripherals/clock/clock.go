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

// Package clock implements the CLOCK controller of the nRF52840. The start
// tasks succeed immediately: there is no oscillator settling time in the
// emulation, the started event is raised in the same store that triggered
// the task.
//
// Only the start tasks, started events and the interrupt plumbing are
// modeled. Everything else lands in a raw register backing store so that
// guest read-back of unmodeled fields behaves sensibly.
package clock

import (
	"github.com/nrfemu/nrfemu/hardware/irq"
	"github.com/nrfemu/nrfemu/hardware/memory"
	"github.com/nrfemu/nrfemu/hardware/memorymap"
	"github.com/nrfemu/nrfemu/hardware/peripherals"
)

// register offsets in the CLOCK window.
const (
	taskHfclkStart    = 0x000
	taskLfclkStart    = 0x008
	eventHfclkStarted = 0x100
	eventLfclkStarted = 0x104
	regIntenset       = 0x304
	regIntenclr       = 0x308
	regHfclkStat      = 0x40c
	regLfclkStat      = 0x418
	regLfclkSrc       = 0x518
)

const (
	// the GENERATED bit of the event registers
	eventGeneratedMask = 0x1

	// interrupt enable bits for the two started events
	intenHfclkStarted = 0x1
	intenLfclkStarted = 0x2

	// the STATE bit of the status registers
	statState = 1 << 16

	// the source field of LFCLKSRC
	lfclkSrcMask = 0x3
)

// number of words in the raw register backing store, covering the whole
// window.
const numRegisters = memorymap.PeripheralSize / 4

// CLOCK is the clock controller peripheral.
type CLOCK struct {
	// the outgoing interrupt line, wired to the CPU by the SoC
	IRQ *irq.Line

	mmio *memory.Region

	hfclkStarted bool
	lfclkStarted bool

	hfclkEventEnabled   bool
	hfclkEventGenerated bool
	lfclkEventEnabled   bool
	lfclkEventGenerated bool

	lfclkSource uint32

	// raw backing store for unmodeled reads and writes
	reg [numRegisters]uint32
}

// NewCLOCK is the preferred method of initialisation for the CLOCK type.
func NewCLOCK() *CLOCK {
	c := &CLOCK{}
	c.IRQ = irq.NewLine("CLOCK")

	// the window accepts any access size
	c.mmio = memory.NewIO("CLOCK", memorymap.PeripheralSize, c, 0, 0)

	return c
}

// MMIO returns the register window of the clock controller, for mapping by
// the SoC.
func (c *CLOCK) MMIO() *memory.Region {
	return c.mmio
}

// Reset the clock controller to its power-on state.
func (c *CLOCK) Reset() {
	c.reg = [numRegisters]uint32{}
	c.hfclkStarted = false
	c.lfclkStarted = false
	c.hfclkEventEnabled = false
	c.hfclkEventGenerated = false
	c.lfclkEventEnabled = false
	c.lfclkEventGenerated = false
	c.lfclkSource = 0
	c.updateIRQ()
}

// HFCLKStarted returns true once the HFCLKSTART task has been triggered.
func (c *CLOCK) HFCLKStarted() bool {
	return c.hfclkStarted
}

// LFCLKStarted returns true once the LFCLKSTART task has been triggered.
func (c *CLOCK) LFCLKStarted() bool {
	return c.lfclkStarted
}

func (c *CLOCK) updateIRQ() {
	flag := c.hfclkEventEnabled && c.hfclkEventGenerated
	flag = flag || (c.lfclkEventEnabled && c.lfclkEventGenerated)
	c.IRQ.Set(flag)
}

// Read implements the memory.Handler interface.
func (c *CLOCK) Read(offset uint32, size int) uint64 {
	var r uint64

	switch offset {
	case eventHfclkStarted:
		if c.hfclkEventGenerated {
			r = 1
		}
	case eventLfclkStarted:
		if c.lfclkEventGenerated {
			r = 1
		}
	case regHfclkStat:
		r = uint64(c.reg[regHfclkStat/4])
		if c.hfclkStarted {
			r |= statState
		}
	case regLfclkStat:
		// TODO: compose LFCLKSTAT from the stored register, the started
		// flag and the LFCLKSRC field instead of this fixed "running from
		// crystal" answer
		r = 0x00010001
	default:
		r = uint64(c.reg[offset/4])
	}

	return r
}

// Write implements the memory.Handler interface.
func (c *CLOCK) Write(offset uint32, value uint64, size int) {
	switch offset {
	case taskHfclkStart:
		if value == peripherals.TriggerTask {
			c.hfclkStarted = true
			c.hfclkEventGenerated = true
		}
		c.reg[offset/4] = uint32(value)

	case taskLfclkStart:
		if value == peripherals.TriggerTask {
			c.lfclkStarted = true
			c.lfclkEventGenerated = true
		}
		c.reg[offset/4] = uint32(value)

	case eventHfclkStarted:
		c.hfclkEventGenerated = value&eventGeneratedMask != 0
		c.reg[offset/4] = uint32(value)

	case eventLfclkStarted:
		c.lfclkEventGenerated = value&eventGeneratedMask != 0
		c.reg[offset/4] = uint32(value)

	case regIntenset:
		if value&intenHfclkStarted != 0 {
			c.hfclkEventEnabled = true
		}
		if value&intenLfclkStarted != 0 {
			c.lfclkEventEnabled = true
		}

	case regIntenclr:
		if value&intenHfclkStarted != 0 {
			c.hfclkEventEnabled = false
		}
		if value&intenLfclkStarted != 0 {
			c.lfclkEventEnabled = false
		}

	case regLfclkSrc:
		c.lfclkSource = uint32(value) & lfclkSrcMask
		c.reg[offset/4] = uint32(value)

	default:
		c.reg[offset/4] = uint32(value)
	}

	c.updateIRQ()
}
