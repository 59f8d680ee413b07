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

// Package vclock provides the virtual clock that drives every timed
// peripheral in the emulation. The clock only moves when it is told to move,
// with the Advance() function. Timer upcalls happen during Advance(), on the
// calling thread, in deadline order. Peripherals therefore never see time
// move backwards and never race with one another.
package vclock

import "fmt"

// Upcall functions are called when a timer deadline is reached. The upcall
// runs on the thread that called Advance() and may rearm the timer.
type Upcall func()

// Clock is a virtual nanosecond clock and the scheduler for the one-shot
// timers created from it.
type Clock struct {
	now    int64
	timers []*Timer
}

// NewClock is the preferred method of initialisation for the Clock type.
func NewClock() *Clock {
	return &Clock{}
}

// Nanoseconds returns the current virtual time.
func (clk *Clock) Nanoseconds() int64 {
	return clk.now
}

// NewTimer creates a one-shot timer driven by this clock. The timer is
// created unarmed.
func (clk *Clock) NewTimer(label string, upcall Upcall) *Timer {
	t := &Timer{
		clk:    clk,
		label:  label,
		upcall: upcall,
	}
	clk.timers = append(clk.timers, t)
	return t
}

// Advance moves virtual time forward, firing every armed timer whose
// deadline falls inside the advanced period. Timers fire in deadline order
// and see Nanoseconds() equal to their deadline. An upcall that rearms its
// timer inside the period will fire again in the same Advance().
func (clk *Clock) Advance(ns int64) {
	if ns < 0 {
		panic(fmt.Sprintf("vclock: advance by negative duration (%d)", ns))
	}

	target := clk.now + ns

	for {
		var next *Timer
		for _, t := range clk.timers {
			if !t.armed || t.deadline > target {
				continue
			}
			if next == nil || t.deadline < next.deadline {
				next = t
			}
		}
		if next == nil {
			break
		}

		// a deadline in the past fires immediately without regressing the
		// clock
		if next.deadline > clk.now {
			clk.now = next.deadline
		}
		next.armed = false
		next.upcall()
	}

	clk.now = target
}

// Timer is a one-shot timer. Arm it with ModNS() and cancel it with Del().
// The upcall fires at most once per arming.
type Timer struct {
	clk      *Clock
	label    string
	upcall   Upcall
	deadline int64
	armed    bool
}

// ModNS arms the timer with an absolute virtual-clock deadline, replacing
// any previous deadline.
func (t *Timer) ModNS(deadline int64) {
	t.deadline = deadline
	t.armed = true
}

// Del disarms the timer. A disarmed timer never fires. Deleting an unarmed
// timer is a no-op.
func (t *Timer) Del() {
	t.armed = false
}

// Armed returns true if the timer has a pending deadline.
func (t *Timer) Armed() bool {
	return t.armed
}

// Deadline returns the absolute deadline of the timer. Only meaningful when
// Armed() is true.
func (t *Timer) Deadline() int64 {
	return t.deadline
}

// Label returns the label the timer was created with.
func (t *Timer) Label() string {
	return t.label
}
