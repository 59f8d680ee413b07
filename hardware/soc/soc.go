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

// Package soc composes the peripherals of the nRF52840 into a single
// addressable machine: it instantiates every peripheral, maps the register
// windows at their documented base addresses and wires the interrupt
// outputs to the CPU interrupt inputs derived from those addresses.
package soc

import (
	"errors"
	"fmt"

	"github.com/nrfemu/nrfemu/hardware/cpu"
	"github.com/nrfemu/nrfemu/hardware/irq"
	"github.com/nrfemu/nrfemu/hardware/memory"
	"github.com/nrfemu/nrfemu/hardware/memorymap"
	"github.com/nrfemu/nrfemu/hardware/peripherals/clock"
	"github.com/nrfemu/nrfemu/hardware/peripherals/nvm"
	"github.com/nrfemu/nrfemu/hardware/peripherals/rng"
	"github.com/nrfemu/nrfemu/hardware/peripherals/rtc"
	"github.com/nrfemu/nrfemu/hardware/peripherals/timer"
	"github.com/nrfemu/nrfemu/hardware/peripherals/uart"
	"github.com/nrfemu/nrfemu/hardware/vclock"
	"github.com/nrfemu/nrfemu/migration"
)

// ErrMemoryLink is returned by Realise() if the Memory field has not been
// set.
var ErrMemoryLink = errors.New("memory property was not set")

// InterruptReceiver is the view the SoC has of the CPU: a set of numbered
// interrupt inputs. The cpu package provides the stock implementation.
type InterruptReceiver interface {
	SetInput(input int, level bool)
}

// Config is the set of per-instance options for the NRF52840 type. Zero
// values select the defaults.
type Config struct {
	// size of the SRAM region, default 64KiB
	SRAMSize uint32

	// size of the flash array, default 1MiB
	FlashSize uint32

	// options forwarded to the RNG peripheral
	RNG rng.Config
}

// NRF52840 is the SoC.
type NRF52840 struct {
	conf Config
	clk  *vclock.Clock

	// Memory is the board memory, overlapped underneath everything the SoC
	// maps itself. It must be set before Realise()
	Memory *memory.Region

	// CPU receives the interrupt lines of the peripherals. If it is not
	// set before Realise() a stock cpu.Interrupts is used
	CPU InterruptReceiver

	// Container is the address space of the machine, populated by
	// Realise()
	Container *memory.Region

	SRAM *memory.Region

	UART  *uart.UART
	RNG   *rng.RNG
	NVM   *nvm.NVM
	Timer [memorymap.NumTimers]*timer.Timer
	RTC   [memorymap.NumRTCs]*rtc.RTC
	Clock *clock.CLOCK

	realised bool
}

// NewNRF52840 is the preferred method of initialisation for the NRF52840
// type. The SoC is not usable until Realise() has succeeded.
func NewNRF52840(clk *vclock.Clock, conf Config) *NRF52840 {
	if conf.SRAMSize == 0 {
		conf.SRAMSize = memorymap.DefaultSRAMSize
	}
	if conf.FlashSize == 0 {
		conf.FlashSize = memorymap.DefaultFlashSize
	}

	s := &NRF52840{
		conf: conf,
		clk:  clk,
	}

	s.UART = uart.NewUART()
	s.RNG = rng.NewRNG(conf.RNG, clk)
	s.NVM = nvm.NewNVM(conf.FlashSize)
	for i := 0; i < memorymap.NumTimers; i++ {
		s.Timer[i] = timer.NewTimer(i, clk)
	}
	for i := 0; i < memorymap.NumRTCs; i++ {
		s.RTC[i] = rtc.NewRTC(i, clk)
	}
	s.Clock = clock.NewCLOCK()

	return s
}

// wire connects a peripheral interrupt line to the CPU input derived from
// the peripheral's base address.
func (s *NRF52840) wire(line *irq.Line, base uint64) {
	input := memorymap.IRQ(base)
	line.Connect(func(level bool) {
		s.CPU.SetInput(input, level)
	})
}

// Realise builds the address space of the machine and wires the interrupt
// lines. It fails if the Memory field has not been set.
func (s *NRF52840) Realise() error {
	if s.realised {
		return fmt.Errorf("soc: already realised")
	}
	if s.Memory == nil {
		return fmt.Errorf("soc: %w", ErrMemoryLink)
	}

	if s.CPU == nil {
		s.CPU = &cpu.Interrupts{}
	}

	s.Container = memory.NewContainer("nrf52840", memory.MaxSize)
	s.Container.AddOverlap(0, s.Memory, -1)

	s.SRAM = memory.NewRAM("SRAM", uint64(s.conf.SRAMSize))
	s.Container.Add(memorymap.SRAMBase, s.SRAM)

	// UART
	s.Container.Add(memorymap.UARTBase, s.UART.MMIO())
	s.wire(s.UART.IRQ, memorymap.UARTBase)

	// RNG
	s.Container.Add(memorymap.RNGBase, s.RNG.MMIO())
	s.wire(s.RNG.IRQ, memorymap.RNGBase)

	// UICR, FICR, NVMC, FLASH
	s.Container.Add(memorymap.NVMCBase, s.NVM.MMIO())
	s.Container.Add(memorymap.FICRBase, s.NVM.FICR())
	s.Container.Add(memorymap.UICRBase, s.NVM.UICR())
	s.Container.Add(memorymap.FlashBase, s.NVM.Flash())

	// RTC
	for i := 0; i < memorymap.NumRTCs; i++ {
		base := memorymap.RTCBase(i)
		s.Container.Add(base, s.RTC[i].MMIO())
		s.wire(s.RTC[i].IRQ, base)
	}

	// TIMER
	for i := 0; i < memorymap.NumTimers; i++ {
		base := memorymap.TimerBase(i)
		s.Container.Add(base, s.Timer[i].MMIO())
		s.wire(s.Timer[i].IRQ, base)
	}

	// CLOCK
	s.Container.Add(memorymap.ClockBase, s.Clock.MMIO())
	s.wire(s.Clock.IRQ, memorymap.ClockBase)

	// stub regions underneath the mapped peripherals, covering the
	// unimplemented areas of the peripheral and private address ranges
	s.Container.AddOverlap(memorymap.IOMemBase,
		memory.NewStub("nrf52840.io", memorymap.IOMemSize), -2)
	s.Container.AddOverlap(memorymap.PrivateBase,
		memory.NewStub("nrf52840.private", memorymap.PrivateSize), -2)

	s.realised = true
	return nil
}

// Reset every peripheral to its power-on state. Memory content is not
// affected.
func (s *NRF52840) Reset() {
	s.UART.Reset()
	s.RNG.Reset()
	s.NVM.Reset()
	for i := 0; i < memorymap.NumTimers; i++ {
		s.Timer[i].Reset()
	}
	for i := 0; i < memorymap.NumRTCs; i++ {
		s.RTC[i].Reset()
	}
	s.Clock.Reset()
}

// Read performs a load from the address space of the machine, as the vCPU
// would.
func (s *NRF52840) Read(addr uint64, size int) uint64 {
	return s.Container.Read(addr, size)
}

// Write performs a store into the address space of the machine, as the
// vCPU would.
func (s *NRF52840) Write(addr uint64, value uint64, size int) {
	s.Container.Write(addr, value, size)
}

// Service gives the peripherals that exchange data with the host a chance
// to move that data. It must be called from the emulation thread.
func (s *NRF52840) Service() {
	s.UART.Service()
}

// Save writes the state of every peripheral with a migration schema to the
// stream.
func (s *NRF52840) Save(enc *migration.Encoder) error {
	for i := 0; i < memorymap.NumTimers; i++ {
		if err := s.Timer[i].Save(enc); err != nil {
			return err
		}
	}
	for i := 0; i < memorymap.NumRTCs; i++ {
		if err := s.RTC[i].Save(enc); err != nil {
			return err
		}
	}
	if err := s.NVM.Save(enc); err != nil {
		return err
	}
	return s.Clock.Save(enc)
}

// Load reads the state of every peripheral with a migration schema from
// the stream, in the order Save() wrote them.
func (s *NRF52840) Load(dec *migration.Decoder) error {
	for i := 0; i < memorymap.NumTimers; i++ {
		if err := s.Timer[i].Load(dec); err != nil {
			return err
		}
	}
	for i := 0; i < memorymap.NumRTCs; i++ {
		if err := s.RTC[i].Load(dec); err != nil {
			return err
		}
	}
	if err := s.NVM.Load(dec); err != nil {
		return err
	}
	return s.Clock.Load(dec)
}
