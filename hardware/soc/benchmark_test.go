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

package soc_test

import (
	"testing"

	"github.com/nrfemu/nrfemu/hardware/memory"
	"github.com/nrfemu/nrfemu/hardware/memorymap"
	"github.com/nrfemu/nrfemu/hardware/soc"
	"github.com/nrfemu/nrfemu/hardware/vclock"
)

// a busy machine: every timer and RTC running with a pending compare
func benchmarkMachine(b *testing.B) (*soc.NRF52840, *vclock.Clock) {
	b.Helper()

	clk := vclock.NewClock()
	s := soc.NewNRF52840(clk, soc.Config{})
	s.Memory = memory.NewContainer("system-memory", memory.MaxSize)
	if err := s.Realise(); err != nil {
		b.Fatal(err)
	}
	s.Reset()

	for i := 0; i < memorymap.NumTimers; i++ {
		base := memorymap.TimerBase(i)
		s.Write(base+0x510, 6, 4)
		s.Write(base+0x508, 3, 4)
		s.Write(base+0x540, 1000, 4)
		s.Write(base+0x000, 1, 4)
	}
	for i := 0; i < memorymap.NumRTCs; i++ {
		base := memorymap.RTCBase(i)
		s.Write(base+0x540, 32768, 4)
		s.Write(base+0x000, 1, 4)
	}

	return s, clk
}

func BenchmarkAdvance(b *testing.B) {
	_, clk := benchmarkMachine(b)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		clk.Advance(1000000)
	}
}

func BenchmarkMMIO(b *testing.B) {
	s, _ := benchmarkMachine(b)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		s.Read(memorymap.Timer0Base+0x540, 4)
	}
}
