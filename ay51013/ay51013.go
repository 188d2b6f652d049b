/*
 * membershipcard - General Instrument AY-5-1013 UART
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

// Package ay51013 emulates the General Instrument AY-5-1013 UART: a
// configurable character width, parity, and stop-bit count, with
// independent Rx and Tx bit-phase state machines that run at 16x the bit
// rate (16 ticks per bit cell).
package ay51013

import (
	"fmt"

	"github.com/rcornwell/membershipcard/bitfield"
)

// Pin offsets within a Pins bundle, in the same order the chip's own pin
// list enumerates them: outputs first, then inputs.
const (
	Rd1 uint = iota
	Rd2
	Rd3
	Rd4
	Rd5
	Rd6
	Rd7
	Rd8
	Dav
	Pe
	Fe
	Or
	Tbmt
	Eoc
	So

	Si
	Db1
	Db2
	Db3
	Db4
	Db5
	Db6
	Db7
	Db8
	Tsb
	Eps
	Np
	Nb1
	Nb2
	Cs
	Ds
	Rde
	Swe
	Rdav
	Xr

	numPins
)

// Pins is the AY-5-1013's own pin bundle, distinct from the CPU system bus;
// a board wires the two together one signal at a time.
type Pins bitfield.Word

// MaskAll covers every defined pin.
func MaskAll() bitfield.Word {
	return (bitfield.Word(1) << (Xr + 1)) - 1
}

// NewPins returns a pin bundle with every wire held high, the
// power-on/pull-up idle state.
func NewPins() Pins {
	return Pins(bitfield.Word(^uint64(0)) & MaskAll())
}

func (p Pins) GetRd() uint8  { return bitfield.Get8(bitfield.Word(p), Rd1) }
func (p Pins) GetDav() bool  { return bitfield.Get1(bitfield.Word(p), Dav) }
func (p Pins) GetPe() bool   { return bitfield.Get1(bitfield.Word(p), Pe) }
func (p Pins) GetFe() bool   { return bitfield.Get1(bitfield.Word(p), Fe) }
func (p Pins) GetOr() bool   { return bitfield.Get1(bitfield.Word(p), Or) }
func (p Pins) GetTbmt() bool { return bitfield.Get1(bitfield.Word(p), Tbmt) }
func (p Pins) GetEoc() bool  { return bitfield.Get1(bitfield.Word(p), Eoc) }
func (p Pins) GetSo() bool   { return bitfield.Get1(bitfield.Word(p), So) }
func (p Pins) GetSi() bool   { return bitfield.Get1(bitfield.Word(p), Si) }
func (p Pins) GetDb() uint8  { return bitfield.Get8(bitfield.Word(p), Db1) }
func (p Pins) GetTsb() bool  { return bitfield.Get1(bitfield.Word(p), Tsb) }
func (p Pins) GetEps() bool  { return bitfield.Get1(bitfield.Word(p), Eps) }
func (p Pins) GetNp() bool   { return bitfield.Get1(bitfield.Word(p), Np) }
func (p Pins) GetNb() uint8  { return bitfield.Get2(bitfield.Word(p), Nb1) }
func (p Pins) GetCs() bool   { return bitfield.Get1(bitfield.Word(p), Cs) }
func (p Pins) GetDs() bool   { return bitfield.Get1(bitfield.Word(p), Ds) }
func (p Pins) GetRde() bool  { return bitfield.Get1(bitfield.Word(p), Rde) }
func (p Pins) GetSwe() bool  { return bitfield.Get1(bitfield.Word(p), Swe) }
func (p Pins) GetRdav() bool { return bitfield.Get1(bitfield.Word(p), Rdav) }
func (p Pins) GetXr() bool   { return bitfield.Get1(bitfield.Word(p), Xr) }

func (p Pins) SetRd(v uint8) Pins   { return Pins(bitfield.Set8(bitfield.Word(p), Rd1, v)) }
func (p Pins) SetDav(v bool) Pins   { return Pins(bitfield.Set1(bitfield.Word(p), Dav, v)) }
func (p Pins) SetPe(v bool) Pins    { return Pins(bitfield.Set1(bitfield.Word(p), Pe, v)) }
func (p Pins) SetFe(v bool) Pins    { return Pins(bitfield.Set1(bitfield.Word(p), Fe, v)) }
func (p Pins) SetOr(v bool) Pins    { return Pins(bitfield.Set1(bitfield.Word(p), Or, v)) }
func (p Pins) SetTbmt(v bool) Pins  { return Pins(bitfield.Set1(bitfield.Word(p), Tbmt, v)) }
func (p Pins) SetEoc(v bool) Pins   { return Pins(bitfield.Set1(bitfield.Word(p), Eoc, v)) }
func (p Pins) SetSo(v bool) Pins    { return Pins(bitfield.Set1(bitfield.Word(p), So, v)) }
func (p Pins) SetSi(v bool) Pins    { return Pins(bitfield.Set1(bitfield.Word(p), Si, v)) }
func (p Pins) SetDb(v uint8) Pins   { return Pins(bitfield.Set8(bitfield.Word(p), Db1, v)) }
func (p Pins) SetTsb(v bool) Pins   { return Pins(bitfield.Set1(bitfield.Word(p), Tsb, v)) }
func (p Pins) SetEps(v bool) Pins   { return Pins(bitfield.Set1(bitfield.Word(p), Eps, v)) }
func (p Pins) SetNp(v bool) Pins    { return Pins(bitfield.Set1(bitfield.Word(p), Np, v)) }
func (p Pins) SetNb(v uint8) Pins   { return Pins(bitfield.Set2(bitfield.Word(p), Nb1, v)) }
func (p Pins) SetCs(v bool) Pins    { return Pins(bitfield.Set1(bitfield.Word(p), Cs, v)) }
func (p Pins) SetDs(v bool) Pins    { return Pins(bitfield.Set1(bitfield.Word(p), Ds, v)) }
func (p Pins) SetRde(v bool) Pins   { return Pins(bitfield.Set1(bitfield.Word(p), Rde, v)) }
func (p Pins) SetSwe(v bool) Pins   { return Pins(bitfield.Set1(bitfield.Word(p), Swe, v)) }
func (p Pins) SetRdav(v bool) Pins  { return Pins(bitfield.Set1(bitfield.Word(p), Rdav, v)) }
func (p Pins) SetXr(v bool) Pins    { return Pins(bitfield.Set1(bitfield.Word(p), Xr, v)) }

// Parity selects the kind of parity bit the chip generates and checks. The
// zero value of *Parity (nil) means no parity bit at all.
type Parity int

const (
	Odd Parity = iota
	Even
)

func (p Parity) String() string {
	if p == Even {
		return "even"
	}
	return "odd"
}

// ctrl is the chip's latched character-format configuration, sampled from
// the NB/TSB/NP/EPS pins whenever CS is asserted.
type ctrl struct {
	charBits  uint8
	parity    *Parity
	stopBits  uint8
}

func (c ctrl) tick(p Pins) ctrl {
	if !p.GetCs() {
		return c
	}
	next := ctrl{charBits: p.GetNb() + 5, stopBits: 1}
	if p.GetTsb() {
		next.stopBits = 2
	}
	if !p.GetNp() {
		par := Odd
		if p.GetEps() {
			par = Even
		}
		next.parity = &par
	}
	return next
}

func (c ctrl) String() string {
	par := "n"
	if c.parity != nil {
		if *c.parity == Even {
			par = "e"
		} else {
			par = "o"
		}
	}
	return fmt.Sprintf("%d%s%d", c.charBits, par, c.stopBits)
}

// rxState enumerates the receiver's bit-phase states. dataBit holds the
// next bit index to sample while in rxData.
type rxState int

const (
	rxIdle rxState = iota
	rxWaitSi
	rxStart
	rxData
	rxParity
	rxStop
	rxDav
)

type rx struct {
	state   rxState
	dataBit uint8
	tick    uint8
	shift   uint8
	parity  bool

	buffer uint8
	dav    bool
	pe     bool
	fe     bool
	or     bool
}

func (r *rx) reset() {
	r.dav, r.pe, r.fe, r.or, r.shift = false, false, false, false, 0
}

func (r *rx) tickOne(c ctrl, p Pins) Pins {
	si := p.GetSi()

	switch {
	case r.state == rxIdle && si:
		r.state, r.tick = rxWaitSi, 0
	case r.state == rxWaitSi && !si:
		r.state, r.tick = rxStart, 0
	case r.state == rxStart && r.tick == 7 && si:
		r.state, r.tick = rxWaitSi, 0
	case r.state == rxStart && r.tick == 7 && !si:
		r.shift = 0
		r.parity = c.parity != nil && *c.parity == Even
		r.state, r.dataBit, r.tick = rxData, 0, 0
	case r.state == rxData && r.tick == 15:
		if si {
			r.shift |= 1 << r.dataBit
		}
		r.parity = r.parity != si
		r.dataBit++
		switch {
		case r.dataBit < c.charBits:
			r.state = rxData
		case c.parity != nil:
			r.state = rxParity
		default:
			r.state = rxStop
		}
		r.tick = 0
	case r.state == rxParity && r.tick == 15:
		r.pe = si != r.parity
		r.state, r.tick = rxStop, 0
	case r.state == rxStop && r.tick == 15:
		r.fe = !si
		r.or = r.dav
		r.dav = false
		r.state, r.tick = rxDav, 0
	case r.state == rxDav && r.tick == 0:
		r.buffer = r.shift
		r.dav = true
		if si {
			r.state = rxWaitSi
		} else {
			r.state = rxIdle
		}
		r.tick = 0
	default:
		r.tick++
	}

	if !p.GetRdav() {
		r.dav = false
	}

	if p.GetSwe() {
		p = p.SetDav(false).SetPe(false).SetFe(false).SetOr(false)
	} else {
		p = p.SetDav(r.dav).SetPe(r.pe).SetFe(r.fe).SetOr(r.or)
	}

	if p.GetRde() {
		p = p.SetRd(0)
	} else {
		p = p.SetRd(r.buffer)
	}
	return p
}

// txState enumerates the transmitter's bit-phase states.
type txState int

const (
	txIdle txState = iota
	txStart
	txData
	txParity
	txStop
	txEoc
)

type tx struct {
	state   txState
	dataBit uint8
	tick    uint8
	buffer  uint8
	shift   uint8
	parity  bool
	prevDs  bool

	tbmt bool
	eoc  bool
	so   bool
}

func newTx() tx {
	return tx{state: txIdle, prevDs: true, tbmt: true, eoc: true, so: true}
}

func (t *tx) reset() {
	*t = newTx()
}

func (t *tx) start(c ctrl) {
	t.parity = c.parity != nil && *c.parity == Even
	t.shift = t.buffer
	t.so = false
}

func (t *tx) tickOne(c ctrl, p Pins) Pins {
	ds := p.GetDs()
	if !t.prevDs && ds {
		t.buffer = p.GetDb()
		t.tbmt = false
	}
	t.prevDs = ds

	switch {
	case t.state == txIdle && !t.tbmt:
		t.start(c)
		t.state, t.tick = txStart, 1
	case t.state == txStart && t.tick == 1:
		t.eoc = false
		t.state, t.tick = txStart, 2
	case t.state == txStart && t.tick == 5:
		t.tbmt = true
		t.state, t.tick = txStart, 6
	case t.state == txStart && t.tick == 15:
		t.state, t.dataBit, t.tick = txData, 0, 0
	case t.state == txData && t.tick == 0:
		val := t.shift&0x1 == 1
		t.so = val
		t.parity = t.parity != val
		t.shift >>= 1
		t.tick = 1
	case t.state == txData && t.tick == 15:
		t.dataBit++
		switch {
		case t.dataBit < c.charBits:
			t.state = txData
		case c.parity != nil:
			t.state = txParity
		default:
			t.state = txStop
		}
		t.tick = 0
	case t.state == txParity && t.tick == 0:
		t.so = t.parity
		t.tick = 1
	case t.state == txParity && t.tick == 15:
		t.state, t.tick = txStop, 0
	case t.state == txStop && t.tick == 0:
		t.so = true
		t.tick = 1
	case t.state == txStop && t.tick == c.stopBits*16-1:
		t.state, t.tick = txEoc, 0
	case t.state == txEoc && t.tick == 0:
		t.eoc = true
		if !t.tbmt {
			t.start(c)
			t.state, t.tick = txStart, 1
		} else {
			t.state, t.tick = txIdle, 0
		}
	default:
		t.tick++
	}

	if p.GetSwe() {
		p = p.SetTbmt(false)
	} else {
		p = p.SetTbmt(t.tbmt)
	}
	return p.SetEoc(t.eoc).SetSo(t.so)
}

// Ay51013 is the chip itself: a latched character-format configuration plus
// independent receive and transmit bit-phase engines, all driven by the
// same tick.
type Ay51013 struct {
	ctrl  ctrl
	tx    tx
	rx    rx
	cycle uint64
}

// New returns a chip defaulting to 8 data bits, no parity, 1 stop bit —
// the AY-5-1013's own power-on default format.
func New() *Ay51013 {
	return &Ay51013{
		ctrl: ctrl{charBits: 8, stopBits: 1},
		tx:   newTx(),
	}
}

// Configure latches char_bits/parity/stop_bits through the CS strobe and
// resets the chip. char_bits must be 5-8 and stop_bits 1-2.
func (a *Ay51013) Configure(p Pins, charBits uint8, parity *Parity, stopBits uint8) Pins {
	if charBits < 5 || charBits > 8 {
		panic("ay51013: char_bits out of range")
	}
	if stopBits < 1 || stopBits > 2 {
		panic("ay51013: stop_bits out of range")
	}
	p = p.SetNb(charBits - 5)
	p = p.SetEps(parity != nil && *parity == Even)
	p = p.SetNp(parity == nil)
	p = p.SetTsb(stopBits == 2)
	p = p.SetCs(true)
	p = a.Reset(p)
	return p.SetCs(false)
}

// Reset pulses XR for one tick without touching the latched format.
func (a *Ay51013) Reset(p Pins) Pins {
	p = p.SetDs(true).SetRde(false).SetSwe(false).SetRdav(true).SetXr(true)
	p = a.Tick(p)
	return p.SetXr(false)
}

// Tick advances the chip's control latch, receiver, and transmitter by one
// 16x-oversample tick.
func (a *Ay51013) Tick(p Pins) Pins {
	if p.GetXr() {
		a.rx.reset()
		a.tx.reset()
	}
	a.ctrl = a.ctrl.tick(p)
	p = a.rx.tickOne(a.ctrl, p)
	p = a.tx.tickOne(a.ctrl, p)
	a.cycle++
	return p
}

// IsTxIdle reports whether the transmitter has no character in flight or
// buffered.
func (a *Ay51013) IsTxIdle() bool {
	return a.tx.state == txIdle
}

func (a *Ay51013) String() string {
	return fmt.Sprintf("Tx(%d tick:%d so:%v) Rx(%d tick:%d shift:%x)",
		a.tx.state, a.tx.tick, a.tx.so, a.rx.state, a.rx.tick, a.rx.shift)
}
