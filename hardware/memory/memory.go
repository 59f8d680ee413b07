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

// Package memory provides the memory region framework that the SoC maps its
// peripherals into. There are five kinds of region:
//
//   - IO regions forward loads and stores to a peripheral Handler
//   - RAM regions are plain byte storage
//   - ROM device regions read as plain storage but trap stores into a
//     callback. the flash of the NVM subsystem is a ROM device: guest reads
//     take the fast path into the backing array and never enter the model
//   - container regions hold other regions at a base address and priority
//   - stub regions log a guest error on any access
//
// A lookup inside a container considers regions in priority order. A
// container that has nothing mapped at an address is transparent, letting
// lower priority siblings claim the access. An access that no region claims
// reads as zero and is logged. Nothing traps.
package memory

import (
	"encoding/binary"
	"fmt"

	"github.com/nrfemu/nrfemu/logger"
)

// Handler is implemented by peripherals that expose registers through an IO
// region. The offset is relative to the start of the region. The size is the
// access size in bytes and is already validated against the region's
// declared access sizes.
type Handler interface {
	Read(offset uint32, size int) uint64
	Write(offset uint32, value uint64, size int)
}

// WriteTrap is the store callback of a ROM device region.
type WriteTrap func(offset uint32, value uint64, size int)

type kind int

const (
	kindIO kind = iota
	kindRAM
	kindROMDevice
	kindContainer
	kindStub
)

// MaxSize is the size of a container that spans the whole address space.
const MaxSize = ^uint64(0)

// Region is a window in the address space. Use the New* functions to create
// instances of the different kinds.
type Region struct {
	label string
	size  uint64
	kind  kind

	// io regions
	handler   Handler
	minAccess int
	maxAccess int

	// ram and rom device backing store
	data []byte

	// rom device store trap and flush count
	trap    WriteTrap
	flushes int

	// container contents
	subregions []subregion
}

type subregion struct {
	base     uint64
	priority int
	region   *Region
}

// NewIO creates a region that forwards accesses to a Handler. Access sizes
// outside the declared min/max, or misaligned accesses, are logged and
// ignored (reads return zero). A min/max of zero accepts any access size.
func NewIO(label string, size uint64, handler Handler, minAccess int, maxAccess int) *Region {
	return &Region{
		label:     label,
		size:      size,
		kind:      kindIO,
		handler:   handler,
		minAccess: minAccess,
		maxAccess: maxAccess,
	}
}

// NewRAM creates a region of plain byte storage.
func NewRAM(label string, size uint64) *Region {
	return &Region{
		label: label,
		size:  size,
		kind:  kindRAM,
		data:  make([]byte, size),
	}
}

// NewROMDevice creates a region whose reads go directly to the backing
// array and whose stores are forwarded to the trap function. The trap is
// responsible for mutating the backing array (or not).
func NewROMDevice(label string, size uint64, trap WriteTrap) *Region {
	return &Region{
		label: label,
		size:  size,
		kind:  kindROMDevice,
		data:  make([]byte, size),
		trap:  trap,
	}
}

// NewContainer creates an empty region that other regions are mapped into
// with Add() and AddOverlap().
func NewContainer(label string, size uint64) *Region {
	return &Region{
		label: label,
		size:  size,
		kind:  kindContainer,
	}
}

// NewStub creates a region that logs a guest error on any access. Reads
// return zero.
func NewStub(label string, size uint64) *Region {
	return &Region{
		label: label,
		size:  size,
		kind:  kindStub,
	}
}

// Label returns the label the region was created with.
func (r *Region) Label() string {
	return r.label
}

// Size returns the size of the region in bytes.
func (r *Region) Size() uint64 {
	return r.size
}

// Data exposes the backing array of a RAM or ROM device region. It panics
// for any other kind of region.
func (r *Region) Data() []byte {
	if r.data == nil {
		panic(fmt.Sprintf("memory: %s: region kind has no backing array", r.label))
	}
	return r.data
}

// Flush records a request to invalidate any fast-path mapping of a ROM
// device after its backing array has changed.
func (r *Region) Flush(offset uint64, size uint64) {
	if r.kind != kindROMDevice {
		panic(fmt.Sprintf("memory: %s: flush of a region that is not a ROM device", r.label))
	}
	if offset+size > r.size {
		panic(fmt.Sprintf("memory: %s: flush beyond end of region", r.label))
	}
	r.flushes++
}

// Flushes returns the number of Flush() requests made against the region.
func (r *Region) Flushes() int {
	return r.flushes
}

// Add maps a subregion into a container at the given base address, with
// priority zero.
func (r *Region) Add(base uint64, sub *Region) {
	r.AddOverlap(base, sub, 0)
}

// AddOverlap maps a subregion into a container at the given base address.
// Where regions overlap the one with the higher priority claims the access.
func (r *Region) AddOverlap(base uint64, sub *Region, priority int) {
	if r.kind != kindContainer {
		panic(fmt.Sprintf("memory: %s: mapping into a region that is not a container", r.label))
	}
	r.subregions = append(r.subregions, subregion{
		base:     base,
		priority: priority,
		region:   sub,
	})
}

// Read performs a load. An access that nothing claims is logged and reads
// as zero.
func (r *Region) Read(addr uint64, size int) uint64 {
	v, ok := r.read(addr, size)
	if !ok {
		logger.Logf(r.label, "unmapped read of %d bytes at %#08x", size, addr)
	}
	return v
}

// Write performs a store. An access that nothing claims is logged and
// ignored.
func (r *Region) Write(addr uint64, value uint64, size int) {
	if !r.write(addr, value, size) {
		logger.Logf(r.label, "unmapped write of %d bytes at %#08x", size, addr)
	}
}

// checkAccess validates the access size and alignment of an access to an io
// region.
func (r *Region) checkAccess(offset uint64, size int) bool {
	if r.minAccess > 0 && size < r.minAccess {
		return false
	}
	if r.maxAccess > 0 && size > r.maxAccess {
		return false
	}
	if offset%uint64(size) != 0 {
		return false
	}
	return true
}

func (r *Region) read(addr uint64, size int) (uint64, bool) {
	if addr >= r.size || uint64(size) > r.size-addr {
		return 0, false
	}

	switch r.kind {
	case kindIO:
		if !r.checkAccess(addr, size) {
			logger.Logf(r.label, "bad read of %d bytes at offset %#03x", size, addr)
			return 0, true
		}
		return r.handler.Read(uint32(addr), size), true

	case kindRAM, kindROMDevice:
		return loadLE(r.data[addr:], size), true

	case kindContainer:
		sub, offset := r.resolve(addr, size)
		if sub == nil {
			return 0, false
		}
		return sub.read(offset, size)

	case kindStub:
		logger.Logf(r.label, "read of %d bytes at unimplemented offset %#08x", size, addr)
		return 0, true
	}

	return 0, false
}

func (r *Region) write(addr uint64, value uint64, size int) bool {
	if addr >= r.size || uint64(size) > r.size-addr {
		return false
	}

	switch r.kind {
	case kindIO:
		if !r.checkAccess(addr, size) {
			logger.Logf(r.label, "bad write of %d bytes at offset %#03x", size, addr)
			return true
		}
		r.handler.Write(uint32(addr), value, size)
		return true

	case kindRAM:
		storeLE(r.data[addr:], value, size)
		return true

	case kindROMDevice:
		r.trap(uint32(addr), value, size)
		return true

	case kindContainer:
		sub, offset := r.resolve(addr, size)
		if sub == nil {
			return false
		}
		return sub.write(offset, value, size)

	case kindStub:
		logger.Logf(r.label, "write of %d bytes at unimplemented offset %#08x", size, addr)
		return true
	}

	return false
}

// resolve finds the highest priority subregion claiming an address. For
// equal priorities the region mapped first wins. A container subregion that
// does not handle the address is transparent, which is how board memory
// mapped underneath the peripherals at negative priority works.
func (r *Region) resolve(addr uint64, size int) (*Region, uint64) {
	var found *Region
	var offset uint64
	foundPriority := 0

	for _, sub := range r.subregions {
		if addr < sub.base || addr-sub.base >= sub.region.size {
			continue
		}
		if found == nil || sub.priority > foundPriority {
			// transparency: a container with nothing at this address does
			// not claim it
			if sub.region.kind == kindContainer {
				if s, _ := sub.region.resolve(addr-sub.base, size); s == nil {
					continue
				}
			}
			found = sub.region
			foundPriority = sub.priority
			offset = addr - sub.base
		}
	}

	return found, offset
}

func loadLE(data []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(data[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(data))
	case 4:
		return uint64(binary.LittleEndian.Uint32(data))
	case 8:
		return binary.LittleEndian.Uint64(data)
	}
	panic(fmt.Sprintf("memory: unsupported access size %d", size))
}

func storeLE(data []byte, value uint64, size int) {
	switch size {
	case 1:
		data[0] = uint8(value)
	case 2:
		binary.LittleEndian.PutUint16(data, uint16(value))
	case 4:
		binary.LittleEndian.PutUint32(data, uint32(value))
	case 8:
		binary.LittleEndian.PutUint64(data, value)
	default:
		panic(fmt.Sprintf("memory: unsupported access size %d", size))
	}
}
