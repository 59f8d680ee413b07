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

package uart_test

import (
	"testing"

	"github.com/nrfemu/nrfemu/hardware/peripherals/uart"
	"github.com/nrfemu/nrfemu/test"
)

// register offsets used by the tests.
const (
	taskStartRX = 0x000
	taskStartTX = 0x008
	taskStopTX  = 0x00c
	eventRXDRDY = 0x108
	eventTXDRDY = 0x11c
	regIntenset = 0x304
	regRXD      = 0x518
	regTXD      = 0x51c
)

// a backend with scripted input and recorded output
type fakeBackend struct {
	sent  []byte
	input []byte
}

func (f *fakeBackend) WriteByte(b byte) error {
	f.sent = append(f.sent, b)
	return nil
}

func (f *fakeBackend) Poll() (byte, bool) {
	if len(f.input) == 0 {
		return 0, false
	}
	b := f.input[0]
	f.input = f.input[1:]
	return b, true
}

func (f *fakeBackend) Close() error {
	return nil
}

func TestTransmit(t *testing.T) {
	u := uart.NewUART()
	u.Reset()

	be := &fakeBackend{}
	u.Attach(be)

	// TXD before STARTTX goes nowhere
	u.MMIO().Write(regTXD, 'x', 4)
	test.ExpectEquality(t, len(be.sent), 0)
	test.ExpectEquality(t, u.MMIO().Read(eventTXDRDY, 4), uint64(0))

	u.MMIO().Write(taskStartTX, 1, 4)
	u.MMIO().Write(regTXD, 'h', 4)
	u.MMIO().Write(regTXD, 'i', 4)

	test.ExpectEquality(t, string(be.sent), "hi")
	test.ExpectEquality(t, u.MMIO().Read(eventTXDRDY, 4), uint64(1))

	u.MMIO().Write(taskStopTX, 1, 4)
	u.MMIO().Write(regTXD, 'x', 4)
	test.ExpectEquality(t, string(be.sent), "hi")
}

func TestReceive(t *testing.T) {
	u := uart.NewUART()
	u.Reset()

	be := &fakeBackend{input: []byte{'o', 'k'}}
	u.Attach(be)
	u.MMIO().Write(regIntenset, 1<<2, 4) // RXDRDY

	// no reception before STARTRX
	u.Service()
	test.ExpectEquality(t, u.MMIO().Read(eventRXDRDY, 4), uint64(0))

	u.MMIO().Write(taskStartRX, 1, 4)
	u.Service()
	test.ExpectEquality(t, u.MMIO().Read(eventRXDRDY, 4), uint64(1))
	test.ExpectEquality(t, u.IRQ.Level(), true)

	// only one byte is buffered at a time; reading RXD makes room for the
	// next
	test.ExpectEquality(t, u.MMIO().Read(regRXD, 4), uint64('o'))
	test.ExpectEquality(t, u.IRQ.Level(), false)

	u.Service()
	test.ExpectEquality(t, u.MMIO().Read(regRXD, 4), uint64('k'))
}
