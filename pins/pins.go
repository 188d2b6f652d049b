/*
 * membershipcard - CDP1802 system bus pin bundle
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

// Package pins implements the single packed-word bus shared by the CPU and
// memory in the Membership Card system; each UART chip has its own pin
// bundle, which the board connects to Q and EF3. Every wire
// named here is one bit (or bit group) offset into a bitfield.Word; no
// device owns the bundle outright, each only claims the offsets its mask
// covers during a tick.
package pins

import "github.com/rcornwell/membershipcard/bitfield"

// Offset names every wire's low bit position within a Bus word, in the same
// order the hardware's own pin list enumerates them.
const (
	Bus0 uint = iota
	Bus1
	Bus2
	Bus3
	Bus4
	Bus5
	Bus6
	Bus7

	Ma0
	Ma1
	Ma2
	Ma3
	Ma4
	Ma5
	Ma6
	Ma7
	N0
	N1
	N2
	QOff
	Mrd
	Mwr
	Tpb
	Tpa
	Sc0
	Sc1

	DmaIn
	DmaOut
	Intr
	Ef1
	Ef2
	Ef3
	Ef4
	Clear
	Wait

	numPins
)

// Bus is the packed pin bundle. It is a defined type over bitfield.Word, so masked
// overlay and raw access are available via the bitfield package when a
// device needs them.
type Bus bitfield.Word

// MaskBus covers the 8 bidirectional data-bus wires.
func MaskBus() bitfield.Word {
	return (bitfield.Word(1) << (Bus7 + 1)) - 1
}

// MaskBusOut covers every bus wire the CPU can drive as an output, bus
// included (Bus0 through Sc1).
func MaskBusOut() bitfield.Word {
	return (bitfield.Word(1) << (Sc1 + 1)) - 1
}

// MaskAll covers the full pin bundle, bus through Wait.
func MaskAll() bitfield.Word {
	return (bitfield.Word(1) << (Wait + 1)) - 1
}

// MaskOut covers the CPU's output-only wires: MaskBusOut minus the bus
// itself, since the bus is bidirectional.
func MaskOut() bitfield.Word {
	return ^MaskBus() & MaskBusOut()
}

// MaskIn covers every wire an external device (not the CPU) drives.
func MaskIn() bitfield.Word {
	return ^MaskOut() & MaskAll()
}

// New returns a bus with every wire held high, matching the idle/undriven
// state the hardware's pull-ups present at power-on.
func New() Bus {
	return Bus(bitfield.Word(^uint64(0)) & MaskAll())
}

// SetMasked overlays other onto b wherever mask has a bit set.
func (b Bus) SetMasked(other Bus, mask bitfield.Word) Bus {
	return Bus(bitfield.Masked(bitfield.Word(b), bitfield.Word(other), mask))
}

func (b Bus) GetBus() uint8   { return bitfield.Get8(bitfield.Word(b), Bus0) }
func (b Bus) GetMa() uint8    { return bitfield.Get8(bitfield.Word(b), Ma0) }
func (b Bus) GetN() uint8     { return bitfield.Get3(bitfield.Word(b), N0) }
func (b Bus) GetN2() bool     { return bitfield.Get1(bitfield.Word(b), N2) }
func (b Bus) GetQ() bool      { return bitfield.Get1(bitfield.Word(b), QOff) }
func (b Bus) GetEf() uint8    { return bitfield.Get4(bitfield.Word(b), Ef1) }
func (b Bus) GetEf1() bool    { return bitfield.Get1(bitfield.Word(b), Ef1) }
func (b Bus) GetEf2() bool    { return bitfield.Get1(bitfield.Word(b), Ef2) }
func (b Bus) GetEf3() bool    { return bitfield.Get1(bitfield.Word(b), Ef3) }
func (b Bus) GetEf4() bool    { return bitfield.Get1(bitfield.Word(b), Ef4) }
func (b Bus) GetMrd() bool    { return bitfield.Get1(bitfield.Word(b), Mrd) }
func (b Bus) GetMwr() bool    { return bitfield.Get1(bitfield.Word(b), Mwr) }
func (b Bus) GetTpa() bool    { return bitfield.Get1(bitfield.Word(b), Tpa) }
func (b Bus) GetTpb() bool    { return bitfield.Get1(bitfield.Word(b), Tpb) }
func (b Bus) GetDmaIn() bool  { return bitfield.Get1(bitfield.Word(b), DmaIn) }
func (b Bus) GetDmaOut() bool { return bitfield.Get1(bitfield.Word(b), DmaOut) }
func (b Bus) GetIntr() bool   { return bitfield.Get1(bitfield.Word(b), Intr) }
func (b Bus) GetSc() uint8    { return bitfield.Get2(bitfield.Word(b), Sc0) }
func (b Bus) GetSc1() bool    { return bitfield.Get1(bitfield.Word(b), Sc1) }
func (b Bus) GetClear() bool  { return bitfield.Get1(bitfield.Word(b), Clear) }
func (b Bus) GetWait() bool   { return bitfield.Get1(bitfield.Word(b), Wait) }

func (b Bus) SetBus(v uint8) Bus    { return Bus(bitfield.Set8(bitfield.Word(b), Bus0, v)) }
func (b Bus) SetMa(v uint8) Bus     { return Bus(bitfield.Set8(bitfield.Word(b), Ma0, v)) }
func (b Bus) SetN(v uint8) Bus      { return Bus(bitfield.Set3(bitfield.Word(b), N0, v)) }
func (b Bus) SetQ(v bool) Bus       { return Bus(bitfield.Set1(bitfield.Word(b), QOff, v)) }
func (b Bus) SetEf(v uint8) Bus     { return Bus(bitfield.Set4(bitfield.Word(b), Ef1, v)) }
func (b Bus) SetMrd(v bool) Bus     { return Bus(bitfield.Set1(bitfield.Word(b), Mrd, v)) }
func (b Bus) SetMwr(v bool) Bus     { return Bus(bitfield.Set1(bitfield.Word(b), Mwr, v)) }
func (b Bus) SetTpa(v bool) Bus     { return Bus(bitfield.Set1(bitfield.Word(b), Tpa, v)) }
func (b Bus) SetTpb(v bool) Bus     { return Bus(bitfield.Set1(bitfield.Word(b), Tpb, v)) }
func (b Bus) SetSc(v uint8) Bus     { return Bus(bitfield.Set2(bitfield.Word(b), Sc0, v)) }
func (b Bus) SetDmaIn(v bool) Bus   { return Bus(bitfield.Set1(bitfield.Word(b), DmaIn, v)) }
func (b Bus) SetDmaOut(v bool) Bus  { return Bus(bitfield.Set1(bitfield.Word(b), DmaOut, v)) }
func (b Bus) SetIntr(v bool) Bus    { return Bus(bitfield.Set1(bitfield.Word(b), Intr, v)) }
func (b Bus) SetEf1(v bool) Bus     { return Bus(bitfield.Set1(bitfield.Word(b), Ef1, v)) }
func (b Bus) SetEf2(v bool) Bus     { return Bus(bitfield.Set1(bitfield.Word(b), Ef2, v)) }
func (b Bus) SetEf3(v bool) Bus     { return Bus(bitfield.Set1(bitfield.Word(b), Ef3, v)) }
func (b Bus) SetEf4(v bool) Bus     { return Bus(bitfield.Set1(bitfield.Word(b), Ef4, v)) }
func (b Bus) SetClear(v bool) Bus   { return Bus(bitfield.Set1(bitfield.Word(b), Clear, v)) }
func (b Bus) SetWait(v bool) Bus    { return Bus(bitfield.Set1(bitfield.Word(b), Wait, v)) }
