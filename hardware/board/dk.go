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

// Package board wraps the SoC into the nRF52840-DK development kit: one
// SoC, one serial endpoint bound to the SoC's first UART, and a kernel
// image placed into flash at realisation.
package board

import (
	"fmt"

	"github.com/nrfemu/nrfemu/chardev"
	"github.com/nrfemu/nrfemu/hardware/memory"
	"github.com/nrfemu/nrfemu/hardware/soc"
	"github.com/nrfemu/nrfemu/hardware/vclock"
)

// MaxCPUs of the board. The SoC carries a single Cortex-M4.
const MaxCPUs = 1

// KernelLoader places a kernel image into the machine. The stock ARMv7-M
// loader lives with the external CPU model; the board hands it the realised
// SoC, the kernel filename and the flash size.
type KernelLoader func(s *soc.NRF52840, filename string, flashSize uint32) error

// DK is the nRF52840-DK development kit.
type DK struct {
	SoC *soc.NRF52840

	systemMemory *memory.Region
}

// NewDK is the preferred method of initialisation for the DK type. The
// serial backend is bound to the SoC's first UART; a nil backend leaves the
// UART unbound. The kernel filename is handed to the loader after the SoC
// has realised; an empty filename skips loading.
func NewDK(clk *vclock.Clock, conf soc.Config, serial chardev.Backend,
	loader KernelLoader, kernel string) (*DK, error) {
	dk := &DK{
		systemMemory: memory.NewContainer("system-memory", memory.MaxSize),
	}

	dk.SoC = soc.NewNRF52840(clk, conf)
	dk.SoC.UART.Attach(serial)
	dk.SoC.Memory = dk.systemMemory

	err := dk.SoC.Realise()
	if err != nil {
		return nil, fmt.Errorf("dk: %w", err)
	}
	dk.SoC.Reset()

	if kernel != "" && loader != nil {
		err = loader(dk.SoC, kernel, dk.SoC.NVM.FlashSize())
		if err != nil {
			return nil, fmt.Errorf("dk: %w", err)
		}
	}

	return dk, nil
}
