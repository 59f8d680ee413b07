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

// Package monitor is an interactive console onto the emulated machine:
// peek and poke the address space, advance the virtual clock, inspect the
// interrupt inputs and the log. It stands in for the vCPU when exploring
// the peripherals by hand.
package monitor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bradleyjkemp/memviz"

	"github.com/nrfemu/nrfemu/hardware/cpu"
	"github.com/nrfemu/nrfemu/hardware/memorymap"
	"github.com/nrfemu/nrfemu/hardware/soc"
	"github.com/nrfemu/nrfemu/hardware/vclock"
	"github.com/nrfemu/nrfemu/logger"
	"github.com/nrfemu/nrfemu/monitor/easyterm"
)

const prompt = "(nrf) "

// Monitor is an interactive session onto a realised SoC.
type Monitor struct {
	soc *soc.NRF52840
	clk *vclock.Clock

	term   easyterm.EasyTerm
	useRaw bool

	// fallback input when stdin is not a terminal
	scanner *bufio.Scanner
}

// NewMonitor is the preferred method of initialisation for the Monitor
// type.
func NewMonitor(s *soc.NRF52840, clk *vclock.Clock) *Monitor {
	m := &Monitor{
		soc: s,
		clk: clk,
	}

	if err := m.term.Initialise(os.Stdin, os.Stdout); err == nil {
		m.useRaw = true
	} else {
		m.scanner = bufio.NewScanner(os.Stdin)
	}

	return m
}

// Run the monitor until the user quits or input ends.
func (m *Monitor) Run() error {
	if m.useRaw {
		if err := m.term.CBreakMode(); err != nil {
			return fmt.Errorf("monitor: %w", err)
		}
		defer m.term.CanonicalMode()
	}

	for {
		line, err := m.readLine()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("monitor: %w", err)
		}

		quit, err := m.dispatch(line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// readLine assembles an input line. In cbreak mode the line is built a
// character at a time with rudimentary backspace handling.
func (m *Monitor) readLine() (string, error) {
	if !m.useRaw {
		fmt.Print(prompt)
		if !m.scanner.Scan() {
			if err := m.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return m.scanner.Text(), nil
	}

	m.term.TermPrint(prompt)

	var line []byte
	for {
		b, err := m.term.ReadByte()
		if err != nil {
			return "", err
		}

		switch b {
		case '\n', '\r':
			m.term.TermPrint("\n")
			return string(line), nil
		case 0x7f, 0x08: // delete and backspace
			if len(line) > 0 {
				line = line[:len(line)-1]
				m.term.TermPrint("\b \b")
			}
		case 0x04: // ctrl-d
			if len(line) == 0 {
				m.term.TermPrint("\n")
				return "", io.EOF
			}
		default:
			if b >= 0x20 && b < 0x7f {
				line = append(line, b)
				m.term.TermPrint(string(b))
			}
		}
	}
}

func (m *Monitor) dispatch(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch strings.ToUpper(fields[0]) {
	case "PEEK":
		return false, m.peek(fields[1:])
	case "POKE":
		return false, m.poke(fields[1:])
	case "ADVANCE":
		return false, m.advance(fields[1:])
	case "IRQ":
		m.irq()
	case "MAP":
		fmt.Print(memorymap.Summary())
	case "LOG":
		logger.Tail(os.Stdout, 20)
	case "VIZ":
		return false, m.viz(fields[1:])
	case "RESET":
		m.soc.Reset()
	case "HELP":
		fmt.Println("PEEK addr [n] / POKE addr val / ADVANCE dur / IRQ / MAP / LOG / VIZ file / RESET / QUIT")
	case "QUIT", "Q":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}

	return false, nil
}

func parseNumber(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(s, "$"), 0, 64)
}

func (m *Monitor) peek(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("PEEK requires an address")
	}

	addr, err := parseNumber(args[0])
	if err != nil {
		return err
	}

	count := uint64(1)
	if len(args) > 1 {
		count, err = parseNumber(args[1])
		if err != nil {
			return err
		}
	}

	for i := uint64(0); i < count; i++ {
		a := addr + i*4
		fmt.Printf("%08x: %08x\n", a, m.soc.Read(a, 4))
	}

	return nil
}

func (m *Monitor) poke(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("POKE requires an address and a value")
	}

	addr, err := parseNumber(args[0])
	if err != nil {
		return err
	}
	value, err := parseNumber(args[1])
	if err != nil {
		return err
	}

	m.soc.Write(addr, value, 4)
	return nil
}

func (m *Monitor) advance(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("ADVANCE requires a duration")
	}

	d, err := time.ParseDuration(args[0])
	if err != nil {
		return err
	}

	m.clk.Advance(d.Nanoseconds())
	m.soc.Service()
	fmt.Printf("virtual clock at %dns\n", m.clk.Nanoseconds())
	return nil
}

func (m *Monitor) irq() {
	nv, ok := m.soc.CPU.(*cpu.Interrupts)
	if !ok {
		fmt.Println("interrupt inputs not inspectable")
		return
	}

	pending := nv.Pending()
	if len(pending) == 0 {
		fmt.Println("no interrupt inputs asserted")
		return
	}
	for _, n := range pending {
		fmt.Printf("input %d asserted\n", n)
	}
}

// viz writes a graphviz dot rendering of the machine state, which is
// useful when chasing down why a peripheral is not in the state a test
// expects it to be.
func (m *Monitor) viz(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("VIZ requires a filename")
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	memviz.Map(f, m.soc)
	return nil
}
