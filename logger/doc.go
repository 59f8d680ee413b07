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

// Package logger is the central log for the emulation. Peripherals tag their
// entries with the name of the part of the emulation they model ("TIMER0",
// "NVMC", etc.) which makes filtering of the log output straightforward.
//
// Guest programming errors (writes to unknown registers, flash stores while
// the flash is not writeable, and so on) are reported through this package
// and nowhere else. A guest error never stops the emulation.
package logger
