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

// Package memorymap defines the fixed address map of the nRF52840. Each
// peripheral owns a 4KiB window. The base address of a window encodes the
// peripheral's interrupt number in bits 16 to 12, which is why the map must
// never be changed casually.
package memorymap

import (
	"fmt"
	"sort"
	"strings"
)

const (
	FlashBase  = 0x00000000
	FICRBase   = 0x10000000
	UICRBase   = 0x10001000
	SRAMBase   = 0x20000000
	ClockBase  = 0x40000000
	UARTBase   = 0x40002000
	Timer0Base = 0x40008000
	Timer1Base = 0x40009000
	Timer2Base = 0x4000a000
	RTC0Base   = 0x4000b000
	RNGBase    = 0x4000d000
	RTC1Base   = 0x40011000
	NVMCBase   = 0x4001e000
	RTC2Base   = 0x40024000
)

// the unmapped areas of the address space that are covered by stub regions.
const (
	IOMemBase   = 0x40000000
	IOMemSize   = 0x10000000
	PrivateBase = 0xf0000000
	PrivateSize = 0x10000000
)

const (
	// every peripheral register window is 4KiB
	PeripheralSize = 0x1000

	// flash pages are 4KiB on the nRF52840
	PageSize = 0x1000
)

const (
	NumTimers = 3
	NumRTCs   = 3
)

// default sizes for the memory regions of the SoC.
const (
	DefaultSRAMSize  = 16 * PageSize
	DefaultFlashSize = 256 * PageSize
)

// IRQ returns the CPU interrupt input for the peripheral with the given base
// address. The interrupt number is a pure function of the base address.
func IRQ(base uint64) int {
	return int((base >> 12) & 0x1f)
}

// TimerBase returns the base address for the numbered TIMER instance.
func TimerBase(id int) uint64 {
	return Timer0Base + uint64(id)*PeripheralSize
}

// RTCBase returns the base address for the numbered RTC instance. The RTC
// windows are not contiguous.
func RTCBase(id int) uint64 {
	switch id {
	case 0:
		return RTC0Base
	case 1:
		return RTC1Base
	case 2:
		return RTC2Base
	}
	panic(fmt.Sprintf("memorymap: bad RTC number %d", id))
}

// Summary returns a table of the peripheral windows in base address order.
func Summary() string {
	type entry struct {
		base uint64
		name string
	}

	entries := []entry{
		{FlashBase, "FLASH"},
		{FICRBase, "FICR"},
		{UICRBase, "UICR"},
		{SRAMBase, "SRAM"},
		{ClockBase, "CLOCK"},
		{UARTBase, "UART"},
		{Timer0Base, "TIMER0"},
		{Timer1Base, "TIMER1"},
		{Timer2Base, "TIMER2"},
		{RTC0Base, "RTC0"},
		{RNGBase, "RNG"},
		{RTC1Base, "RTC1"},
		{NVMCBase, "NVMC"},
		{RTC2Base, "RTC2"},
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].base < entries[j].base
	})

	s := strings.Builder{}
	for _, e := range entries {
		s.WriteString(fmt.Sprintf("%08x\t%s\n", e.base, e.name))
	}

	return s.String()
}
