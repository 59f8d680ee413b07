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

// Package uart implements the serial port of the nRF52840, to the depth
// that boot firmware needs: transmit and receive data registers, the ready
// events and the interrupt plumbing. Flow control, DMA (the EasyDMA lists
// of the real UARTE) and error conditions are not modeled.
package uart

import (
	"github.com/nrfemu/nrfemu/chardev"
	"github.com/nrfemu/nrfemu/hardware/irq"
	"github.com/nrfemu/nrfemu/hardware/memory"
	"github.com/nrfemu/nrfemu/hardware/memorymap"
	"github.com/nrfemu/nrfemu/hardware/peripherals"
	"github.com/nrfemu/nrfemu/logger"
)

// register offsets in the UART window.
const (
	taskStartRX = 0x000
	taskStopRX  = 0x004
	taskStartTX = 0x008
	taskStopTX  = 0x00c
	eventRXDRDY = 0x108
	eventTXDRDY = 0x11c
	regIntenset = 0x304
	regIntenclr = 0x308
	regEnable   = 0x500
	regRXD      = 0x518
	regTXD      = 0x51c
	regBaudrate = 0x524
)

// interrupt enable bits.
const (
	intenRXDRDY = 1 << 2
	intenTXDRDY = 1 << 7
	intenMask   = intenRXDRDY | intenTXDRDY
)

// UART is the serial port peripheral.
type UART struct {
	// the outgoing interrupt line, wired to the CPU by the SoC
	IRQ *irq.Line

	mmio *memory.Region

	backend chardev.Backend

	enable    uint32
	baudrate  uint32
	inten     uint32
	txEnabled bool
	rxEnabled bool

	rxd         uint8
	eventRxdrdy bool
	eventTxdrdy bool
}

// NewUART is the preferred method of initialisation for the UART type. The
// UART is created unbound; without an Attach() it transmits into nothing.
func NewUART() *UART {
	u := &UART{
		backend: chardev.Null{},
	}
	u.IRQ = irq.NewLine("UART")
	u.mmio = memory.NewIO("UART", memorymap.PeripheralSize, u, 4, 4)
	return u
}

// Attach binds the UART to a character device backend.
func (u *UART) Attach(backend chardev.Backend) {
	if backend == nil {
		backend = chardev.Null{}
	}
	u.backend = backend
}

// MMIO returns the register window of the UART, for mapping by the SoC.
func (u *UART) MMIO() *memory.Region {
	return u.mmio
}

// Reset the UART to its power-on state.
func (u *UART) Reset() {
	u.enable = 0
	u.baudrate = 0
	u.inten = 0
	u.txEnabled = false
	u.rxEnabled = false
	u.rxd = 0
	u.eventRxdrdy = false
	u.eventTxdrdy = false
	u.IRQ.Set(false)
}

// Service moves pending input from the backend into the receiver. It must
// be called from the emulation thread, typically once per run loop
// iteration.
func (u *UART) Service() {
	if !u.rxEnabled || u.eventRxdrdy {
		return
	}

	b, ok := u.backend.Poll()
	if !ok {
		return
	}

	u.rxd = b
	u.eventRxdrdy = true
	u.updateIRQ()
}

func (u *UART) updateIRQ() {
	flag := u.eventRxdrdy && u.inten&intenRXDRDY != 0
	flag = flag || (u.eventTxdrdy && u.inten&intenTXDRDY != 0)
	u.IRQ.Set(flag)
}

// Read implements the memory.Handler interface.
func (u *UART) Read(offset uint32, size int) uint64 {
	var r uint64

	switch offset {
	case eventRXDRDY:
		if u.eventRxdrdy {
			r = 1
		}
	case eventTXDRDY:
		if u.eventTxdrdy {
			r = 1
		}
	case regIntenset, regIntenclr:
		r = uint64(u.inten)
	case regEnable:
		r = uint64(u.enable)
	case regRXD:
		r = uint64(u.rxd)
		u.eventRxdrdy = false
		u.updateIRQ()
	case regBaudrate:
		r = uint64(u.baudrate)
	default:
		logger.Logf("UART", "bad read offset %#03x", offset)
	}

	return r
}

// Write implements the memory.Handler interface.
func (u *UART) Write(offset uint32, value uint64, size int) {
	switch offset {
	case taskStartRX:
		if value == peripherals.TriggerTask {
			u.rxEnabled = true
		}
	case taskStopRX:
		if value == peripherals.TriggerTask {
			u.rxEnabled = false
		}
	case taskStartTX:
		if value == peripherals.TriggerTask {
			u.txEnabled = true
		}
	case taskStopTX:
		if value == peripherals.TriggerTask {
			u.txEnabled = false
		}
	case eventRXDRDY:
		if value == peripherals.EventClear {
			u.eventRxdrdy = false
		}
	case eventTXDRDY:
		if value == peripherals.EventClear {
			u.eventTxdrdy = false
		}
	case regIntenset:
		u.inten |= uint32(value) & intenMask
	case regIntenclr:
		u.inten &^= uint32(value) & intenMask
	case regEnable:
		u.enable = uint32(value)
	case regTXD:
		if u.txEnabled {
			err := u.backend.WriteByte(uint8(value))
			if err != nil {
				logger.Logf("UART", "backend write: %v", err)
			}
			u.eventTxdrdy = true
		}
	case regBaudrate:
		u.baudrate = uint32(value)
	default:
		logger.Logf("UART", "bad write offset %#03x", offset)
	}

	u.updateIRQ()
}
