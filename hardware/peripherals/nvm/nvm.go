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

// Package nvm implements the non-volatile memory subsystem of the
// nRF52840: the NVMC controller, the read-only FICR fixture, the writable
// UICR fixture and the flash array itself.
//
// The flash is exposed as a ROM device region: guest reads go straight to
// the backing array without entering the model, stores trap into the write
// handler. Stores follow NOR semantics, they can only clear bits. Erasing,
// through the NVMC erase registers, is the only way to set bits.
//
// Code region protection (the MPU configuration of the real part) is
// disregarded.
package nvm

import (
	"encoding/binary"

	"github.com/nrfemu/nrfemu/hardware/memory"
	"github.com/nrfemu/nrfemu/hardware/memorymap"
	"github.com/nrfemu/nrfemu/hardware/peripherals"
	"github.com/nrfemu/nrfemu/logger"
)

// sizes of the information fixtures, in 32-bit words.
const (
	FICRWords = 776
	UICRWords = 352
)

// register offsets in the NVMC window.
const (
	regReady     = 0x400
	regConfig    = 0x504
	regErasePCR1 = 0x508
	regEraseAll  = 0x50c
	regErasePCR0 = 0x510
	regEraseUICR = 0x514
)

// the READY register always reads as ready.
const readyReady = 0x01

// bits of the CONFIG register. WEN gates flash stores, EEN gates erases.
// The bits are independent.
const (
	configWEN  = 0x01
	configEEN  = 0x02
	configMask = 0x03
)

// UICR offsets that always read as zero.
const (
	uicrPselReset0 = 0x200
	uicrPselReset1 = 0x204
)

// DefaultFlashSize is the flash size used when the NVM is instantiated
// standalone, without the SoC supplying a size.
const DefaultFlashSize = 0x40000

// NVM is the non-volatile memory subsystem.
type NVM struct {
	flashSize uint32

	config uint32
	ficr   [FICRWords]uint32
	uicr   [UICRWords]uint32

	mmio  *memory.Region
	ficrR *memory.Region
	uicrR *memory.Region
	flash *memory.Region

	// the backing array of the flash region
	storage []byte
}

// NewNVM is the preferred method of initialisation for the NVM type. A
// flashSize of zero selects the standalone default. The flash is created
// fully erased.
func NewNVM(flashSize uint32) *NVM {
	if flashSize == 0 {
		flashSize = DefaultFlashSize
	}

	n := &NVM{
		flashSize: flashSize,
	}

	n.mmio = memory.NewIO("NVMC", memorymap.PeripheralSize, n, 4, 4)
	n.ficrR = memory.NewIO("FICR", FICRWords*4, &ficrRegisters{nvm: n}, 4, 4)
	n.uicrR = memory.NewIO("UICR", UICRWords*4, &uicrRegisters{nvm: n}, 4, 4)
	n.flash = memory.NewROMDevice("FLASH", uint64(flashSize), n.flashWrite)

	n.storage = n.flash.Data()
	for i := range n.storage {
		n.storage[i] = 0xff
	}

	return n
}

// MMIO returns the NVMC register window, for mapping by the SoC.
func (n *NVM) MMIO() *memory.Region {
	return n.mmio
}

// FICR returns the factory information region, for mapping by the SoC.
func (n *NVM) FICR() *memory.Region {
	return n.ficrR
}

// UICR returns the user information region, for mapping by the SoC.
func (n *NVM) UICR() *memory.Region {
	return n.uicrR
}

// Flash returns the flash region, for mapping by the SoC. The backing
// array is reachable through the region's Data() function, which is also
// how a kernel image is placed into flash.
func (n *NVM) Flash() *memory.Region {
	return n.flash
}

// FlashSize returns the size of the flash array in bytes.
func (n *NVM) FlashSize() uint32 {
	return n.flashSize
}

// Reset the NVM to its power-on state. The flash array is non-volatile and
// is not touched by a reset.
func (n *NVM) Reset() {
	n.config = 0
	for i := range n.ficr {
		n.ficr[i] = 0xffffffff
	}
	for i := range n.uicr {
		n.uicr[i] = 0xffffffff
	}
}

// flashWrite is the store trap of the flash ROM device.
func (n *NVM) flashWrite(offset uint32, value uint64, size int) {
	if size != 4 {
		logger.Logf("FLASH", "bad write of %d bytes at %#08x", size, offset)
		return
	}

	if n.config&configWEN == 0 {
		logger.Logf("FLASH", "write at %#08x while flash not writable", offset)
		return
	}

	// NOR flash only allows bits to be flipped from ones to zeroes
	old := binary.LittleEndian.Uint32(n.storage[offset:])
	old &= uint32(value)
	binary.LittleEndian.PutUint32(n.storage[offset:], old)

	n.flash.Flush(uint64(offset), uint64(size))
}

// erasePage sets an aligned flash page back to the erased state.
func (n *NVM) erasePage(value uint64) {
	if n.config&configEEN == 0 {
		logger.Logf("NVMC", "flash erase at %#08x while flash not erasable", value)
		return
	}

	// mask in-page sub address
	page := uint32(value) &^ (memorymap.PageSize - 1)

	if page <= n.flashSize-memorymap.PageSize {
		for i := page; i < page+memorymap.PageSize; i++ {
			n.storage[i] = 0xff
		}
		n.flash.Flush(uint64(page), memorymap.PageSize)
	}
}

func (n *NVM) eraseUICR() {
	for i := range n.uicr {
		n.uicr[i] = 0xffffffff
	}
}

// Read implements the memory.Handler interface for the NVMC window.
func (n *NVM) Read(offset uint32, size int) uint64 {
	switch offset {
	case regReady:
		return readyReady
	case regConfig:
		return uint64(n.config)
	}

	logger.Logf("NVMC", "bad read offset %#03x", offset)
	return 0
}

// Write implements the memory.Handler interface for the NVMC window.
func (n *NVM) Write(offset uint32, value uint64, size int) {
	switch offset {
	case regConfig:
		n.config = uint32(value) & configMask

	case regErasePCR0, regErasePCR1:
		n.erasePage(value)

	case regEraseAll:
		if value == peripherals.TriggerTask {
			if n.config&configEEN == 0 {
				logger.Logf("NVMC", "flash not erasable")
				return
			}
			for i := range n.storage {
				n.storage[i] = 0xff
			}
			n.flash.Flush(0, uint64(n.flashSize))
			n.eraseUICR()
		}

	case regEraseUICR:
		if value == peripherals.TriggerTask {
			n.eraseUICR()
		}

	default:
		logger.Logf("NVMC", "bad write offset %#03x", offset)
	}
}

// ficrRegisters is the handler for the factory information region. Writes
// are intentionally discarded.
type ficrRegisters struct {
	nvm *NVM
}

func (f *ficrRegisters) Read(offset uint32, size int) uint64 {
	return uint64(f.nvm.ficr[offset/4])
}

func (f *ficrRegisters) Write(offset uint32, value uint64, size int) {
	// intentionally do nothing
}

// uicrRegisters is the handler for the user information region.
type uicrRegisters struct {
	nvm *NVM
}

func (u *uicrRegisters) Read(offset uint32, size int) uint64 {
	switch offset {
	case uicrPselReset0, uicrPselReset1:
		return 0
	}
	return uint64(u.nvm.uicr[offset/4])
}

func (u *uicrRegisters) Write(offset uint32, value uint64, size int) {
	u.nvm.uicr[offset/4] = uint32(value)
}
