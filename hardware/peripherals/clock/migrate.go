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

package clock

import "github.com/nrfemu/nrfemu/migration"

// Version of the migration schema for the CLOCK type.
const Version = 1

// State is the migration schema for the CLOCK type.
type State struct {
	Reg [numRegisters]uint32

	HFCLKStarted bool
	LFCLKStarted bool

	HFCLKEventEnabled   bool
	HFCLKEventGenerated bool
	LFCLKEventEnabled   bool
	LFCLKEventGenerated bool

	LFCLKSource uint32
}

// Save writes the state of the clock controller to the migration stream.
func (c *CLOCK) Save(enc *migration.Encoder) error {
	return enc.Encode("CLOCK", Version, State{
		Reg:                 c.reg,
		HFCLKStarted:        c.hfclkStarted,
		LFCLKStarted:        c.lfclkStarted,
		HFCLKEventEnabled:   c.hfclkEventEnabled,
		HFCLKEventGenerated: c.hfclkEventGenerated,
		LFCLKEventEnabled:   c.lfclkEventEnabled,
		LFCLKEventGenerated: c.lfclkEventGenerated,
		LFCLKSource:         c.lfclkSource,
	})
}

// Load reads the state of the clock controller from the migration stream.
func (c *CLOCK) Load(dec *migration.Decoder) error {
	var s State

	err := dec.Decode("CLOCK", Version, &s)
	if err != nil {
		return err
	}

	c.reg = s.Reg
	c.hfclkStarted = s.HFCLKStarted
	c.lfclkStarted = s.LFCLKStarted
	c.hfclkEventEnabled = s.HFCLKEventEnabled
	c.hfclkEventGenerated = s.HFCLKEventGenerated
	c.lfclkEventEnabled = s.LFCLKEventEnabled
	c.lfclkEventGenerated = s.LFCLKEventGenerated
	c.lfclkSource = s.LFCLKSource
	c.updateIRQ()

	return nil
}
