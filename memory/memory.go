/*
 * membershipcard - CDP1802 system memory
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package memory implements the CDP1802's addressable store: a TPA-latched
// high address byte, MRD/MWR-strobed reads and writes over the shared bus,
// and optional write-protected ranges.
package memory

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rcornwell/membershipcard/instr"
	"github.com/rcornwell/membershipcard/pins"
)

// ErrWriteProtectionFault is returned by Tick when the CPU attempts to
// write to an address covered by a write-protected range.
var ErrWriteProtectionFault = errors.New("memory: write protection fault")

// ErrImageOutOfRange is returned by Builder.Build when a loaded image
// extends past the end of the configured address space.
var ErrImageOutOfRange = errors.New("memory: image out of range")

// AccessMode distinguishes a Read access from a Write access in an Access
// record.
type AccessMode int

const (
	Read AccessMode = iota
	Write
)

// Access records one memory transaction performed during Tick, for callers
// that want to observe bus traffic (disassembly trace, event logging).
type Access struct {
	Mode AccessMode
	Addr uint16
	Data uint8
}

// Range is an inclusive address range; a nil Start or End defaults to the
// extremes of the configured address space.
type Range struct {
	Start *uint16
	End   *uint16
}

func (r Range) resolve(maxAddr uint16) (uint16, uint16) {
	start := uint16(0)
	if r.Start != nil {
		start = *r.Start
	}
	end := maxAddr
	if r.End != nil {
		end = *r.End
	}
	return start, end
}

// Builder constructs a Memory with optional preloaded images and
// write-protected ranges, mirroring the CDP1802 board's own memory-map
// configuration.
type Builder struct {
	capacity      int
	images        []image
	writeProtect  []Range
	randomizeFill bool
	randSource    *rand.Rand
}

type image struct {
	addr uint16
	data []byte
}

// NewBuilder returns a Builder defaulting to a full 64KiB address space
// with memory zero-filled.
func NewBuilder() *Builder {
	return &Builder{capacity: 64 * 1024}
}

// WithAddressWidth sets the address space to 2^bits bytes. bits must be at
// most 16.
func (b *Builder) WithAddressWidth(bits uint) *Builder {
	if bits > 16 {
		bits = 16
	}
	b.capacity = 1 << bits
	return b
}

// WithImage schedules data to be loaded starting at addr when Build runs.
func (b *Builder) WithImage(addr uint16, data []byte) *Builder {
	b.images = append(b.images, image{addr: addr, data: data})
	return b
}

// WithRandomFill causes Build to seed memory with pseudo-random bytes from
// src instead of zero-filling it, matching the hardware's power-on state of
// unpredictable RAM contents.
func (b *Builder) WithRandomFill(src *rand.Rand) *Builder {
	b.randomizeFill = true
	b.randSource = src
	return b
}

// WithWriteProtectRange marks a range of addresses as read-only; any CPU
// write within the range fails with ErrWriteProtectionFault.
func (b *Builder) WithWriteProtectRange(r Range) *Builder {
	b.writeProtect = append(b.writeProtect, r)
	return b
}

// Build allocates and initializes a Memory per the builder's configuration.
func (b *Builder) Build() (*Memory, error) {
	data := make([]byte, b.capacity)
	if b.randomizeFill {
		src := b.randSource
		if src == nil {
			src = rand.New(rand.NewSource(1))
		}
		src.Read(data)
	}

	for _, img := range b.images {
		start := int(img.addr)
		end := start + len(img.data)
		if end > len(data) {
			return nil, ErrImageOutOfRange
		}
		copy(data[start:end], img.data)
	}

	maxAddr := uint16(b.capacity - 1)
	protect := make([][2]uint16, 0, len(b.writeProtect))
	for _, r := range b.writeProtect {
		start, end := r.resolve(maxAddr)
		protect = append(protect, [2]uint16{start, end})
	}

	return &Memory{data: data, writeProtect: protect}, nil
}

// Memory is the CDP1802's addressable store, accessed one byte at a time
// over the shared bus and TPA-latched high address byte.
type Memory struct {
	data         []byte
	writeProtect [][2]uint16
	addrHi       uint8
}

// Tick advances memory by one timing state: it latches the high address
// byte on TPA, and if MRD or (when writeEnable) MWR is asserted low, it
// performs the corresponding bus transaction. writeEnable is the
// board-level write enable; the board passes its front panel's read/write
// switch.
func (m *Memory) Tick(bus pins.Bus, writeEnable bool) (pins.Bus, *Access, error) {
	if bus.GetTpa() {
		m.addrHi = bus.GetMa()
	}

	switch {
	case !bus.GetMrd():
		addrLo := bus.GetMa()
		addr := (uint16(m.addrHi) << 8) | uint16(addrLo)
		data := m.data[addr]
		bus = bus.SetBus(data)
		return bus, &Access{Mode: Read, Addr: addr, Data: data}, nil

	case writeEnable && !bus.GetMwr():
		addrLo := bus.GetMa()
		addr := (uint16(m.addrHi) << 8) | uint16(addrLo)
		if !m.IsWritable(addr) {
			return bus, nil, fmt.Errorf("memory: write protection fault at %#04x: %w", addr, ErrWriteProtectionFault)
		}
		data := bus.GetBus()
		m.data[addr] = data
		return bus, &Access{Mode: Write, Addr: addr, Data: data}, nil

	default:
		return bus, nil, nil
	}
}

// IsWritable reports whether addr falls outside every write-protected
// range.
func (m *Memory) IsWritable(addr uint16) bool {
	for _, r := range m.writeProtect {
		if addr >= r[0] && addr <= r[1] {
			return false
		}
	}
	return true
}

// AsSlice returns the live backing array; callers may read it directly for
// inspection (e.g. disassembly listings) but must not retain it across a
// Build.
func (m *Memory) AsSlice() []byte {
	return m.data
}

// GetInstrAt decodes the instruction starting at addr without driving the
// bus, for disassembly listings and trace tooling. It returns ok=false if
// addr is too close to the end of memory for the matched schema's full
// width.
func (m *Memory) GetInstrAt(addr uint16) (instr.Instr, bool) {
	start := int(addr)
	end := start + 3
	if end > len(m.data) {
		end = len(m.data)
	}
	if start >= end {
		return instr.Instr{}, false
	}
	return instr.Decode(m.data[start:end])
}

// ReadByte returns the byte at addr without driving the bus.
func (m *Memory) ReadByte(addr uint16) uint8 {
	return m.data[addr]
}

// WriteByte stores val at addr without driving the bus or checking write
// protection; intended for test fixtures and image loading outside of
// Build.
func (m *Memory) WriteByte(addr uint16, val uint8) {
	m.data[addr] = val
}
