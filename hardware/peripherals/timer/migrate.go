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

package timer

import "github.com/nrfemu/nrfemu/migration"

// Version of the migration schema for the Timer type.
const Version = 1

// State is the migration schema for the Timer type.
type State struct {
	TimerArmed    bool
	TimerDeadline int64

	TimerStartNS    int64
	UpdateCounterNS int64
	Counter         uint32
	Running         bool
	EventsCompare   [NumCC]bool
	CC              [NumCC]uint32
	Shorts          uint32
	Inten           uint32
	Mode            uint32
	Bitmode         uint32
	Prescaler       uint32
}

// Save writes the state of the timer to the migration stream.
func (t *Timer) Save(enc *migration.Encoder) error {
	return enc.Encode(t.tag, Version, State{
		TimerArmed:      t.tmr.Armed(),
		TimerDeadline:   t.tmr.Deadline(),
		TimerStartNS:    t.timerStartNS,
		UpdateCounterNS: t.updateCounterNS,
		Counter:         t.counter,
		Running:         t.running,
		EventsCompare:   t.eventsCompare,
		CC:              t.cc,
		Shorts:          t.shorts,
		Inten:           t.inten,
		Mode:            t.mode,
		Bitmode:         t.bitmode,
		Prescaler:       t.prescaler,
	})
}

// Load reads the state of the timer from the migration stream. A running
// timer is reconciled against the virtual clock immediately, which also
// rearms the host timer.
func (t *Timer) Load(dec *migration.Decoder) error {
	var s State

	err := dec.Decode(t.tag, Version, &s)
	if err != nil {
		return err
	}

	t.timerStartNS = s.TimerStartNS
	t.updateCounterNS = s.UpdateCounterNS
	t.counter = s.Counter
	t.running = s.Running
	t.eventsCompare = s.EventsCompare
	t.cc = s.CC
	t.shorts = s.Shorts
	t.inten = s.Inten
	t.mode = s.Mode
	t.bitmode = s.Bitmode
	t.prescaler = s.Prescaler

	if s.TimerArmed {
		t.tmr.ModNS(s.TimerDeadline)
	} else {
		t.tmr.Del()
	}

	if t.running && t.mode == modeTimer {
		t.expire()
	}
	t.updateIRQ()

	return nil
}
