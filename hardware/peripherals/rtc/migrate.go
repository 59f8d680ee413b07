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

package rtc

import "github.com/nrfemu/nrfemu/migration"

// Version of the migration schema for the RTC type.
const Version = 1

// State is the migration schema for the RTC type.
type State struct {
	TimerArmed    bool
	TimerDeadline int64

	UpdateCounterNS int64
	Counter         uint32
	Running         bool
	EventsCompare   [NumCC]bool
	CC              [NumCC]uint32
	Inten           uint32
	Evten           uint32
	Prescaler       uint32
}

// Save writes the state of the RTC to the migration stream.
func (r *RTC) Save(enc *migration.Encoder) error {
	return enc.Encode(r.tag, Version, State{
		TimerArmed:      r.tmr.Armed(),
		TimerDeadline:   r.tmr.Deadline(),
		UpdateCounterNS: r.updateCounterNS,
		Counter:         r.counter,
		Running:         r.running,
		EventsCompare:   r.eventsCompare,
		CC:              r.cc,
		Inten:           r.inten,
		Evten:           r.evten,
		Prescaler:       r.prescaler,
	})
}

// Load reads the state of the RTC from the migration stream. A running RTC
// is reconciled against the virtual clock immediately.
func (r *RTC) Load(dec *migration.Decoder) error {
	var s State

	err := dec.Decode(r.tag, Version, &s)
	if err != nil {
		return err
	}

	r.updateCounterNS = s.UpdateCounterNS
	r.counter = s.Counter
	r.running = s.Running
	r.eventsCompare = s.EventsCompare
	r.cc = s.CC
	r.inten = s.Inten
	r.evten = s.Evten
	r.prescaler = s.Prescaler

	if s.TimerArmed {
		r.tmr.ModNS(s.TimerDeadline)
	} else {
		r.tmr.Del()
	}

	if r.running {
		r.expire()
	}
	r.updateIRQ()

	return nil
}
