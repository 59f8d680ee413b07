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

// Package migration reads and writes the state of the emulated machine as a
// stream of named, versioned sections. Each peripheral declares its own
// state schema; this package only handles the framing.
//
// Sections are CBOR encoded. A section written by a newer schema version
// than the reader understands fails the load rather than guessing.
package migration

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// sentinel errors returned by the Decoder.
var (
	ErrWrongSection = errors.New("migration: unexpected section")
	ErrWrongVersion = errors.New("migration: unsupported version")
)

type envelope struct {
	Name    string
	Version int
	State   cbor.RawMessage
}

// Encoder writes sections to a migration stream.
type Encoder struct {
	enc *cbor.Encoder
}

// NewEncoder is the preferred method of initialisation for the Encoder
// type.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: cbor.NewEncoder(w)}
}

// Encode writes a named, versioned section to the stream.
func (e *Encoder) Encode(name string, version int, state interface{}) error {
	raw, err := cbor.Marshal(state)
	if err != nil {
		return fmt.Errorf("migration: %s: %w", name, err)
	}
	err = e.enc.Encode(envelope{
		Name:    name,
		Version: version,
		State:   raw,
	})
	if err != nil {
		return fmt.Errorf("migration: %s: %w", name, err)
	}
	return nil
}

// Decoder reads sections from a migration stream, in the order they were
// written.
type Decoder struct {
	dec *cbor.Decoder
}

// NewDecoder is the preferred method of initialisation for the Decoder
// type.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: cbor.NewDecoder(r)}
}

// Decode reads the next section of the stream into state. The section name
// and version must match what the caller expects.
func (d *Decoder) Decode(name string, version int, state interface{}) error {
	var env envelope

	err := d.dec.Decode(&env)
	if err != nil {
		return fmt.Errorf("migration: %s: %w", name, err)
	}
	if env.Name != name {
		return fmt.Errorf("%w: want %s, have %s", ErrWrongSection, name, env.Name)
	}
	if env.Version != version {
		return fmt.Errorf("%w: %s version %d", ErrWrongVersion, name, env.Version)
	}

	err = cbor.Unmarshal(env.State, state)
	if err != nil {
		return fmt.Errorf("migration: %s: %w", name, err)
	}
	return nil
}
