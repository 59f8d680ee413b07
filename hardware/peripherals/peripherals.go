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

// Package peripherals is the parent package for the memory mapped devices
// of the nRF52840. The register interfaces share the task/event convention
// of the nRF52 family: a task register performs its action when the magic
// value one is written to it; an event register reads as one once the event
// has occurred and is cleared by writing zero.
package peripherals

const (
	// the value written to a task register to trigger the task
	TriggerTask = 1

	// the value written to an event register to clear the event
	EventClear = 0
)
