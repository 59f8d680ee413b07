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

package nvm

import "github.com/nrfemu/nrfemu/migration"

// Version of the migration schema for the NVM type.
const Version = 1

// State is the migration schema for the NVM type. The flash body is not
// part of the schema. It is owned by the memory region layer and migrated
// as plain memory.
type State struct {
	FICR   [FICRWords]uint32
	UICR   [UICRWords]uint32
	Config uint32
}

// Save writes the state of the NVM to the migration stream.
func (n *NVM) Save(enc *migration.Encoder) error {
	return enc.Encode("NVM", Version, State{
		FICR:   n.ficr,
		UICR:   n.uicr,
		Config: n.config,
	})
}

// Load reads the state of the NVM from the migration stream.
func (n *NVM) Load(dec *migration.Decoder) error {
	var s State

	err := dec.Decode("NVM", Version, &s)
	if err != nil {
		return err
	}

	n.ficr = s.FICR
	n.uicr = s.UICR
	n.config = s.Config

	return nil
}
