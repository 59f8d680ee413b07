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

// Package performance measures how quickly the peripheral fabric moves
// virtual time compared to the wall clock. With the statistics server
// enabled the runtime metrics of the process can be watched live in a
// browser while the measurement runs.
package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/nrfemu/nrfemu/hardware/soc"
	"github.com/nrfemu/nrfemu/hardware/vclock"
)

// the address the statistics server listens on.
const statsAddr = "localhost:18066"

// the amount of virtual time advanced per run loop iteration.
const quantumNS = 1000000

// Check runs the emulation flat out for the given wall-clock duration and
// reports the ratio of virtual time to wall time.
func Check(output io.Writer, s *soc.NRF52840, clk *vclock.Clock,
	duration time.Duration, stats bool) error {
	if stats {
		viewer.SetConfiguration(viewer.WithAddr(statsAddr))
		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
		fmt.Fprintf(output, "statistics server at http://%s/debug/statsview\n", statsAddr)
	}

	startVirtual := clk.Nanoseconds()
	startWall := time.Now()

	var quanta int64
	for time.Since(startWall) < duration {
		clk.Advance(quantumNS)
		s.Service()
		quanta++
	}

	wall := time.Since(startWall).Seconds()
	virtual := time.Duration(clk.Nanoseconds() - startVirtual).Seconds()

	fmt.Fprintf(output, "%.2fs of virtual time in %.2fs of wall time (x%.1f, %d quanta)\n",
		virtual, wall, virtual/wall, quanta)

	return nil
}
