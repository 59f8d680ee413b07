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

// Package chardev provides the character device backends that the UART
// peripheral is bound to. A backend moves bytes between the emulated serial
// port and something on the host: stdin/stdout, or a real serial port.
//
// Backends read from the host on their own goroutine but the emulation only
// ever sees the bytes through the non-blocking Poll() function, keeping the
// peripheral side single threaded.
package chardev

import (
	"io"
	"os"

	"github.com/tarm/serial"
)

// Backend is the interface to a host character device.
type Backend interface {
	// WriteByte sends a byte from the emulated machine to the host
	WriteByte(b byte) error

	// Poll returns the next byte from the host, if there is one. Poll
	// never blocks
	Poll() (byte, bool)

	Close() error
}

// reader pumps an io.Reader into a buffered channel so that Poll() never
// blocks.
type reader struct {
	input chan byte
}

func newReader(r io.Reader) *reader {
	rd := &reader{
		input: make(chan byte, 1024),
	}

	go func() {
		b := make([]byte, 1)
		for {
			n, err := r.Read(b)
			if n == 1 {
				rd.input <- b[0]
			}
			if err != nil {
				close(rd.input)
				return
			}
		}
	}()

	return rd
}

func (rd *reader) poll() (byte, bool) {
	select {
	case b, ok := <-rd.input:
		return b, ok
	default:
		return 0, false
	}
}

// Stdio is a backend connected to the stdin and stdout of the emulator
// process.
type Stdio struct {
	rd *reader
}

// NewStdio is the preferred method of initialisation for the Stdio type.
func NewStdio() *Stdio {
	return &Stdio{
		rd: newReader(os.Stdin),
	}
}

// WriteByte implements the Backend interface.
func (s *Stdio) WriteByte(b byte) error {
	_, err := os.Stdout.Write([]byte{b})
	return err
}

// Poll implements the Backend interface.
func (s *Stdio) Poll() (byte, bool) {
	return s.rd.poll()
}

// Close implements the Backend interface. Stdin and stdout are left open.
func (s *Stdio) Close() error {
	return nil
}

// Serial is a backend connected to a serial port on the host.
type Serial struct {
	port *serial.Port
	rd   *reader
}

// NewSerial is the preferred method of initialisation for the Serial type.
func NewSerial(device string, baud int) (*Serial, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name: device,
		Baud: baud,
	})
	if err != nil {
		return nil, err
	}

	return &Serial{
		port: port,
		rd:   newReader(port),
	}, nil
}

// WriteByte implements the Backend interface.
func (s *Serial) WriteByte(b byte) error {
	_, err := s.port.Write([]byte{b})
	return err
}

// Poll implements the Backend interface.
func (s *Serial) Poll() (byte, bool) {
	return s.rd.poll()
}

// Close implements the Backend interface.
func (s *Serial) Close() error {
	return s.port.Close()
}

// Null is a backend that drops everything written to it and never produces
// input. It is the backend of an unbound UART.
type Null struct{}

// WriteByte implements the Backend interface.
func (n Null) WriteByte(b byte) error {
	return nil
}

// Poll implements the Backend interface.
func (n Null) Poll() (byte, bool) {
	return 0, false
}

// Close implements the Backend interface.
func (n Null) Close() error {
	return nil
}
