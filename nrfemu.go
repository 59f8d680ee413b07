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

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/nrfemu/nrfemu/chardev"
	"github.com/nrfemu/nrfemu/hardware/board"
	"github.com/nrfemu/nrfemu/hardware/soc"
	"github.com/nrfemu/nrfemu/hardware/vclock"
	"github.com/nrfemu/nrfemu/logger"
	"github.com/nrfemu/nrfemu/monitor"
	"github.com/nrfemu/nrfemu/performance"
	"github.com/nrfemu/nrfemu/version"
)

// list of valid modes.
const (
	modeRun         = "RUN"
	modeMonitor     = "MONITOR"
	modePerformance = "PERFORMANCE"
	modeVersion     = "VERSION"
)

func main() {
	os.Exit(launch(os.Args[1:]))
}

func launch(args []string) int {
	mode := modeRun
	if len(args) > 0 {
		switch strings.ToUpper(args[0]) {
		case modeRun, modeMonitor, modePerformance, modeVersion:
			mode = strings.ToUpper(args[0])
			args = args[1:]
		}
	}

	var err error

	switch mode {
	case modeRun:
		err = run(args)
	case modeMonitor:
		err = runMonitor(args)
	case modePerformance:
		err = runPerformance(args)
	case modeVersion:
		fmt.Printf("nrfemu %s\n", version.Version())
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		return 10
	}

	return 0
}

// machineFlags adds the flags common to every mode that builds a machine.
func machineFlags(flgs *flag.FlagSet) (*uint, *uint, *string, *int) {
	flashSize := flgs.Uint("flash", 0, "flash size in bytes (default 1MiB)")
	sramSize := flgs.Uint("sram", 0, "SRAM size in bytes (default 64KiB)")
	serialDevice := flgs.String("serial", "", "host serial port for the UART (default stdio)")
	baud := flgs.Int("baud", 115200, "baud rate of the host serial port")
	return flashSize, sramSize, serialDevice, baud
}

// buildDK assembles the development kit board from the parsed flags. the
// first remaining argument is the kernel image.
func buildDK(clk *vclock.Clock, flgs *flag.FlagSet,
	flashSize *uint, sramSize *uint, serialDevice *string, baud *int) (*board.DK, error) {
	var backend chardev.Backend
	var err error

	if *serialDevice != "" {
		backend, err = chardev.NewSerial(*serialDevice, *baud)
		if err != nil {
			return nil, err
		}
	} else {
		backend = chardev.NewStdio()
	}

	kernel := ""
	if flgs.NArg() > 0 {
		kernel = flgs.Arg(0)
	}

	conf := soc.Config{
		FlashSize: uint32(*flashSize),
		SRAMSize:  uint32(*sramSize),
	}

	return board.NewDK(clk, conf, backend, loadKernel, kernel)
}

// loadKernel copies a flat binary image into the bottom of flash. It
// stands in for the ARMv7-M loader that lives with the external CPU model.
func loadKernel(s *soc.NRF52840, filename string, flashSize uint32) error {
	d, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	if len(d) > int(flashSize) {
		return fmt.Errorf("kernel image is larger than flash (%d > %d)", len(d), flashSize)
	}

	copy(s.NVM.Flash().Data(), d)
	return nil
}

func run(args []string) error {
	flgs := flag.NewFlagSet(modeRun, flag.ExitOnError)
	flashSize, sramSize, serialDevice, baud := machineFlags(flgs)
	echoLog := flgs.Bool("log", false, "echo log entries to stderr")
	flgs.Parse(args)

	if *echoLog {
		logger.SetEcho(os.Stderr, true)
	}

	clk := vclock.NewClock()
	dk, err := buildDK(clk, flgs, flashSize, sramSize, serialDevice, baud)
	if err != nil {
		return err
	}

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	// the run loop advances virtual time in lockstep with the wall clock.
	// without an attached CPU model this exercises the timed peripherals
	// and the serial data path
	const quantum = 10 * time.Millisecond
	tick := time.NewTicker(quantum)
	defer tick.Stop()

	for {
		select {
		case <-intChan:
			return nil
		case <-tick.C:
			clk.Advance(quantum.Nanoseconds())
			dk.SoC.Service()
		}
	}
}

func runMonitor(args []string) error {
	flgs := flag.NewFlagSet(modeMonitor, flag.ExitOnError)
	flashSize, sramSize, serialDevice, baud := machineFlags(flgs)
	flgs.Parse(args)

	clk := vclock.NewClock()
	dk, err := buildDK(clk, flgs, flashSize, sramSize, serialDevice, baud)
	if err != nil {
		return err
	}

	return monitor.NewMonitor(dk.SoC, clk).Run()
}

func runPerformance(args []string) error {
	flgs := flag.NewFlagSet(modePerformance, flag.ExitOnError)
	flashSize, sramSize, serialDevice, baud := machineFlags(flgs)
	duration := flgs.Duration("duration", 5*time.Second, "length of the measurement")
	stats := flgs.Bool("stats", false, "run the live statistics server")
	flgs.Parse(args)

	clk := vclock.NewClock()
	dk, err := buildDK(clk, flgs, flashSize, sramSize, serialDevice, baud)
	if err != nil {
		return err
	}

	return performance.Check(os.Stdout, dk.SoC, clk, *duration, *stats)
}
