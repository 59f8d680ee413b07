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

// Package cpu provides the interrupt input fabric of the Cortex-M CPU. The
// CPU model itself is external to this project; what the peripherals need
// from it is a set of numbered interrupt inputs whose levels they can drive
// and whose state the interrupt controller samples.
package cpu

import "fmt"

// NumInputs is the number of external interrupt inputs. The SoC is
// configured with 32 interrupt lines.
const NumInputs = 32

// Interrupts latches the levels of the CPU's interrupt inputs. An external
// CPU model samples the levels; tests inspect them directly.
type Interrupts struct {
	levels [NumInputs]bool
}

// SetInput drives the level of a numbered interrupt input.
func (n *Interrupts) SetInput(input int, level bool) {
	if input < 0 || input >= NumInputs {
		panic(fmt.Sprintf("cpu: interrupt input %d out of range", input))
	}
	n.levels[input] = level
}

// Level returns the current level of a numbered interrupt input.
func (n *Interrupts) Level(input int) bool {
	if input < 0 || input >= NumInputs {
		panic(fmt.Sprintf("cpu: interrupt input %d out of range", input))
	}
	return n.levels[input]
}

// Pending returns the numbers of all inputs currently held high.
func (n *Interrupts) Pending() []int {
	var pending []int
	for i, l := range n.levels {
		if l {
			pending = append(pending, i)
		}
	}
	return pending
}

// Reset lowers every input.
func (n *Interrupts) Reset() {
	n.levels = [NumInputs]bool{}
}
