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

// Package clocks defines the constant values for the clock sources in the
// nRF52840. Values taken from the nRF52840 product specification.
package clocks

const (
	// the high frequency clock. also the frequency of HCLK, the main CPU
	// clock, which on this SoC always runs at the full 64MHz
	HFCLK = 64000000

	// the low frequency clock used by the RTC peripherals
	LFCLK = 32768
)

const NanosecondsPerSecond = 1000000000
