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

// Package hardware is the parent package for the emulation of the nRF52840
// System-on-Chip. The soc package ties the individual peripheral packages
// together into a single addressable machine.
//
// The packages under hardware/peripherals model the memory mapped devices of
// the SoC. Each peripheral owns its MMIO window, its internal state and its
// outgoing interrupt line. All mutation happens on a single thread, either
// as a consequence of a load/store into the peripheral's window or as an
// upcall from the virtual clock.
//
// The CPU model itself is not part of this project. The cpu package provides
// the interrupt input fabric that an external Cortex-M model (or a test)
// attaches to.
package hardware
