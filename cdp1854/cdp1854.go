/*
 * membershipcard - RCA CDP1854 UART
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

// Package cdp1854 emulates the RCA CDP1854 UART: a bus-addressable chip
// with separate control and status registers, interrupt latches for
// receive/transmit/peripheral-status/clear-to-send events, and optional
// paravirt channels that let a test or a host terminal inject and observe
// serial bytes without simulating the wire bit by bit.
package cdp1854

import (
	"github.com/rcornwell/membershipcard/bitfield"
)

// Pin offsets within a Pins bundle, mirroring the chip's own pin list.
const (
	TBus0 uint = iota
	TBus1
	TBus2
	TBus3
	TBus4
	TBus5
	TBus6
	TBus7

	RBus0
	RBus1
	RBus2
	RBus3
	RBus4
	RBus5
	RBus6
	RBus7

	Cs1
	Cs2
	Cs3

	Clear
	RdWr
	Rsel
	Tpb

	Sdi
	Sdo

	Thre
	Da
	Fe
	PeOe
	Int

	Rts
	Cts
	Psi
	Es

	Mode
	Tsre

	numPins
)

// Pins is the CDP1854's own pin bundle.
type Pins bitfield.Word

// MaskAll covers every defined pin.
func MaskAll() bitfield.Word {
	return (bitfield.Word(1) << (Tsre + 1)) - 1
}

// NewPins returns a pin bundle with every wire held high.
func NewPins() Pins {
	return Pins(bitfield.Word(^uint64(0)) & MaskAll())
}

func (p Pins) GetTBus() uint8 { return bitfield.Get8(bitfield.Word(p), TBus0) }
func (p Pins) GetRBus() uint8 { return bitfield.Get8(bitfield.Word(p), RBus0) }
func (p Pins) GetCs() uint8   { return bitfield.Get3(bitfield.Word(p), Cs1) }
func (p Pins) GetClear() bool { return bitfield.Get1(bitfield.Word(p), Clear) }
func (p Pins) GetRdWr() bool  { return bitfield.Get1(bitfield.Word(p), RdWr) }
func (p Pins) GetRsel() bool  { return bitfield.Get1(bitfield.Word(p), Rsel) }
func (p Pins) GetTpb() bool   { return bitfield.Get1(bitfield.Word(p), Tpb) }
func (p Pins) GetSdi() bool   { return bitfield.Get1(bitfield.Word(p), Sdi) }
func (p Pins) GetSdo() bool   { return bitfield.Get1(bitfield.Word(p), Sdo) }
func (p Pins) GetThre() bool  { return bitfield.Get1(bitfield.Word(p), Thre) }
func (p Pins) GetDa() bool    { return bitfield.Get1(bitfield.Word(p), Da) }
func (p Pins) GetFe() bool    { return bitfield.Get1(bitfield.Word(p), Fe) }
func (p Pins) GetPeOe() bool  { return bitfield.Get1(bitfield.Word(p), PeOe) }
func (p Pins) GetInt() bool   { return bitfield.Get1(bitfield.Word(p), Int) }
func (p Pins) GetRts() bool   { return bitfield.Get1(bitfield.Word(p), Rts) }
func (p Pins) GetCts() bool   { return bitfield.Get1(bitfield.Word(p), Cts) }
func (p Pins) GetPsi() bool   { return bitfield.Get1(bitfield.Word(p), Psi) }
func (p Pins) GetEs() bool    { return bitfield.Get1(bitfield.Word(p), Es) }
func (p Pins) GetMode() bool  { return bitfield.Get1(bitfield.Word(p), Mode) }
func (p Pins) GetTsre() bool  { return bitfield.Get1(bitfield.Word(p), Tsre) }

func (p Pins) SetTBus(v uint8) Pins { return Pins(bitfield.Set8(bitfield.Word(p), TBus0, v)) }
func (p Pins) SetRBus(v uint8) Pins { return Pins(bitfield.Set8(bitfield.Word(p), RBus0, v)) }
func (p Pins) SetCs(v uint8) Pins   { return Pins(bitfield.Set3(bitfield.Word(p), Cs1, v)) }
func (p Pins) SetClear(v bool) Pins { return Pins(bitfield.Set1(bitfield.Word(p), Clear, v)) }
func (p Pins) SetRdWr(v bool) Pins  { return Pins(bitfield.Set1(bitfield.Word(p), RdWr, v)) }
func (p Pins) SetRsel(v bool) Pins  { return Pins(bitfield.Set1(bitfield.Word(p), Rsel, v)) }
func (p Pins) SetTpb(v bool) Pins   { return Pins(bitfield.Set1(bitfield.Word(p), Tpb, v)) }
func (p Pins) SetSdi(v bool) Pins   { return Pins(bitfield.Set1(bitfield.Word(p), Sdi, v)) }
func (p Pins) SetSdo(v bool) Pins   { return Pins(bitfield.Set1(bitfield.Word(p), Sdo, v)) }
func (p Pins) SetThre(v bool) Pins  { return Pins(bitfield.Set1(bitfield.Word(p), Thre, v)) }
func (p Pins) SetDa(v bool) Pins    { return Pins(bitfield.Set1(bitfield.Word(p), Da, v)) }
func (p Pins) SetFe(v bool) Pins    { return Pins(bitfield.Set1(bitfield.Word(p), Fe, v)) }
func (p Pins) SetPeOe(v bool) Pins  { return Pins(bitfield.Set1(bitfield.Word(p), PeOe, v)) }
func (p Pins) SetInt(v bool) Pins   { return Pins(bitfield.Set1(bitfield.Word(p), Int, v)) }
func (p Pins) SetRts(v bool) Pins   { return Pins(bitfield.Set1(bitfield.Word(p), Rts, v)) }
func (p Pins) SetCts(v bool) Pins   { return Pins(bitfield.Set1(bitfield.Word(p), Cts, v)) }
func (p Pins) SetPsi(v bool) Pins   { return Pins(bitfield.Set1(bitfield.Word(p), Psi, v)) }
func (p Pins) SetEs(v bool) Pins    { return Pins(bitfield.Set1(bitfield.Word(p), Es, v)) }
func (p Pins) SetMode(v bool) Pins  { return Pins(bitfield.Set1(bitfield.Word(p), Mode, v)) }
func (p Pins) SetTsre(v bool) Pins  { return Pins(bitfield.Set1(bitfield.Word(p), Tsre, v)) }

// Parity selects even or odd parity generation/checking.
type Parity int

const (
	Odd Parity = iota
	Even
)

// Control is the CDP1854's control register: word length, parity, stop
// bits, interrupt enable, transmit break, and transmit request.
type Control struct {
	WordLength uint8
	Parity     *Parity
	StopBits   uint8
	IE         bool
	TxBreak    bool
	TR         bool
}

// DefaultControl matches the chip's power-on/clear configuration: 8 data
// bits, no parity, 1 stop bit, everything else disabled.
func DefaultControl() Control {
	return Control{WordLength: 8, StopBits: 1}
}

func (c Control) wordMask() uint8 {
	switch c.WordLength {
	case 5:
		return 0x1f
	case 6:
		return 0x3f
	case 7:
		return 0x7f
	default:
		return 0xff
	}
}

// rxTicks returns the tick count from start-bit detection to data
// availability (half-way through the first stop bit).
func (c Control) rxTicks() uint64 {
	n := uint64(8 + 16*int(c.WordLength) + 16)
	if c.Parity != nil {
		n += 16
	}
	return n
}

// stopTicks returns the number of ticks the transmitter spends on stop
// bit(s).
func (c Control) stopTicks() uint64 {
	if c.StopBits == 1 {
		return 16
	}
	if c.WordLength == 5 {
		return 24
	}
	return 32
}

// ControlFromByte decodes a control-register byte per the chip's bit
// layout (PI, EPE, BSS, WLS1, WLS2, IE, TBRK, TR).
func ControlFromByte(v uint8) Control {
	var parity *Parity
	switch v & 0x3 {
	case 0x00:
		p := Odd
		parity = &p
	case 0x02:
		p := Even
		parity = &p
	}
	stopBits := uint8(1 + (v>>2)&1)
	charBits := uint8(5 + (v>>3)&0x3)
	return Control{
		WordLength: charBits,
		Parity:     parity,
		StopBits:   stopBits,
		IE:         (v>>5)&1 != 0,
		TxBreak:    (v>>6)&1 != 0,
		TR:         v>>7 != 0,
	}
}

// Byte encodes the control register back to its bus representation.
func (c Control) Byte() uint8 {
	pi, epe := uint8(1), uint8(0)
	if c.Parity != nil {
		pi = 0
		if *c.Parity == Even {
			epe = 1
		}
	}
	bss := uint8(0)
	if c.StopBits > 1 {
		bss = 1
	}
	var wls1, wls2 uint8
	switch {
	case c.WordLength <= 5:
		wls1, wls2 = 0, 0
	case c.WordLength == 6:
		wls1, wls2 = 1, 0
	case c.WordLength == 7:
		wls1, wls2 = 0, 1
	default:
		wls1, wls2 = 1, 1
	}
	v := pi | epe<<1 | bss<<2 | wls1<<3 | wls2<<4
	if c.IE {
		v |= 1 << 5
	}
	if c.TxBreak {
		v |= 1 << 6
	}
	if c.TR {
		v |= 1 << 7
	}
	return v
}

// Status is the CDP1854's status register.
type Status struct {
	DA   bool
	OE   bool
	PE   bool
	FE   bool
	ES   bool
	PSI  bool
	TSRE bool
	THRE bool
}

// Byte encodes the status register to its bus representation.
func (s Status) Byte() uint8 {
	var v uint8
	if s.DA {
		v |= 1
	}
	if s.OE {
		v |= 1 << 1
	}
	if s.PE {
		v |= 1 << 2
	}
	if s.FE {
		v |= 1 << 3
	}
	if s.ES {
		v |= 1 << 4
	}
	if s.PSI {
		v |= 1 << 5
	}
	if s.TSRE {
		v |= 1 << 6
	}
	if s.THRE {
		v |= 1 << 7
	}
	return v
}

type interrupts struct {
	da      bool
	txReady bool
	txDone  bool
	psi     bool
	cts     bool
}

func (i interrupts) any() bool {
	return i.da || i.txReady || i.txDone || i.psi || i.cts
}

type rxState int

const (
	rxWaitSdiHigh rxState = iota
	rxWaitSdiLow
	rxParavirtData
	rxStart
	rxData
	rxParity
	rxStop
)

type rx struct {
	state   rxState
	dataBit uint8
	pvTicks uint64
	tick    uint64
	shift   uint8
	holding uint8
	parity  bool
	da      bool
	oe      bool
	pe      bool
	fe      bool

	pvRx <-chan uint8
}

func (r *rx) clear() {
	pv := r.pvRx
	*r = rx{pvRx: pv}
}

func (r *rx) tickOne(c Control, sdi bool) {
	switch {
	case r.state == rxWaitSdiHigh && sdi:
		r.state, r.tick = rxWaitSdiLow, 0

	case r.state == rxWaitSdiLow && sdi:
		if r.pvRx != nil {
			select {
			case b, ok := <-r.pvRx:
				if !ok {
					r.pvRx = nil
					r.tick++
					return
				}
				r.shift = b & c.wordMask()
				r.pvTicks = c.rxTicks()
				r.state, r.tick = rxParavirtData, 0
				return
			default:
			}
		}
		r.tick++

	case r.state == rxWaitSdiLow && !sdi:
		r.state, r.tick = rxStart, 0

	case r.state == rxStart && r.tick == 7 && sdi:
		r.state, r.tick = rxWaitSdiLow, 0

	case r.state == rxStart && r.tick == 7 && !sdi:
		r.shift = 0
		r.parity = c.Parity != nil && *c.Parity == Even
		r.state, r.dataBit, r.tick = rxData, 0, 0

	case r.state == rxData && r.tick == 15:
		if sdi {
			r.shift |= 1 << r.dataBit
		}
		r.parity = r.parity != sdi
		r.dataBit++
		switch {
		case r.dataBit < c.WordLength:
			r.state = rxData
		case c.Parity != nil:
			r.state = rxParity
		default:
			r.state = rxStop
		}
		r.tick = 0

	case r.state == rxParity && r.tick == 15:
		r.pe = sdi != r.parity
		r.state, r.tick = rxStop, 0

	case r.state == rxStop && r.tick == 15:
		r.holding = r.shift
		r.fe = !sdi
		r.oe = r.da
		r.da = true
		if sdi {
			r.state, r.tick = rxWaitSdiLow, 0
		} else {
			r.state, r.tick = rxWaitSdiHigh, 0
		}

	case r.state == rxParavirtData && r.tick == r.pvTicks-1:
		r.holding = r.shift
		r.fe = false
		r.oe = r.da
		r.da = true
		if sdi {
			r.state, r.tick = rxWaitSdiLow, 0
		} else {
			r.state, r.tick = rxWaitSdiHigh, 0
		}

	default:
		r.tick++
	}
}

type txState int

const (
	txIdle txState = iota
	txStart
	txData
	txParity
	txStop
)

type tx struct {
	state      txState
	dataBit    uint8
	tick       uint64
	holding    uint8
	shift      uint8
	parity     bool
	breakLatch bool
	tsre       bool
	thre       bool
	sdo        bool

	pvTx chan<- uint8
}

func newTx() tx {
	return tx{state: txIdle, tsre: true, thre: true, sdo: true}
}

func (t *tx) clear() {
	pv := t.pvTx
	*t = newTx()
	t.pvTx = pv
}

func (t *tx) tickOne(c Control, cts bool) {
	switch {
	case t.state == txIdle && cts && !t.thre:
		t.shift = t.holding
		t.tsre = false
		t.state, t.tick = txStart, 0

	case t.state == txStart && t.tick == 0:
		t.sdo = false
		t.breakLatch = false
		t.thre = true
		t.parity = c.Parity != nil && *c.Parity == Even
		if t.pvTx != nil {
			select {
			case t.pvTx <- t.shift & c.wordMask():
			default:
			}
		}
		t.tick = 1

	case t.state == txStart && t.tick == 15:
		t.state, t.dataBit, t.tick = txData, 0, 0

	case t.state == txData && t.tick == 0:
		bit := t.shift&1 == 1
		t.sdo = bit
		t.parity = t.parity != bit
		t.shift >>= 1
		t.tick = 1

	case t.state == txData && t.tick == 15:
		t.dataBit++
		switch {
		case t.dataBit < c.WordLength:
			t.state = txData
		case c.Parity != nil:
			t.state = txParity
		default:
			t.state = txStop
		}
		t.tick = 0

	case t.state == txParity && t.tick == 0:
		t.sdo = t.parity
		t.tick = 1

	case t.state == txParity && t.tick == 15:
		t.state, t.tick = txStop, 0

	case t.state == txStop && t.tick == 0:
		t.sdo = true
		t.tick = 1

	case t.state == txStop && t.tick == c.stopTicks()-1:
		if t.thre || !cts {
			t.tsre = true
			t.state, t.tick = txIdle, 0
		} else {
			t.shift = t.holding
			t.state, t.tick = txStart, 0
		}

	default:
		t.tick++
	}
}

// Cdp1854 is the chip itself.
type Cdp1854 struct {
	control    Control
	rx         rx
	tx         tx
	interrupts interrupts
	prevPsi    bool
	prevCts    bool
}

// New returns a chip with the power-on default control register.
func New() *Cdp1854 {
	return &Cdp1854{control: DefaultControl(), tx: newTx()}
}

// WithPvRx wires a channel the receiver drains non-blockingly instead of
// sampling SDI bit by bit, for tests and host-terminal bridging.
func (c *Cdp1854) WithPvRx(ch <-chan uint8) *Cdp1854 {
	c.rx.pvRx = ch
	return c
}

// WithPvTx wires a channel the transmitter feeds non-blockingly with each
// byte it starts sending; SDO is still driven bit by bit.
func (c *Cdp1854) WithPvTx(ch chan<- uint8) *Cdp1854 {
	c.tx.pvTx = ch
	return c
}

func (c *Cdp1854) clear(p Pins) Pins {
	c.control = DefaultControl()
	c.interrupts = interrupts{}
	c.rx.clear()
	c.tx.clear()
	c.prevPsi = p.GetPsi()
	c.prevCts = p.GetCts()
	return c.updatePins(p)
}

// TickTpb runs the bus-access and interrupt-edge-detection half of the
// chip's cycle; call this once per TPB pulse.
func (c *Cdp1854) TickTpb(p Pins) Pins {
	if !p.GetClear() {
		return c.clear(p)
	}

	psi := p.GetPsi()
	psiFalling := c.prevPsi && !psi
	c.prevPsi = psi
	if psiFalling {
		c.interrupts.psi = true
	}

	cts := p.GetCts()
	ctsRising := !c.prevCts && cts
	c.prevCts = cts
	if ctsRising {
		c.tx.breakLatch = false
		if !c.tx.thre || !c.tx.tsre {
			c.interrupts.cts = true
		}
	}

	if p.GetCs() == 0b101 && p.GetTpb() {
		rsel, rdWr := p.GetRsel(), p.GetRdWr()
		switch {
		case !rsel && !rdWr:
			p = c.busGetData(p)
		case !rsel && rdWr:
			p = c.busPutData(p)
		case rsel && !rdWr:
			p = c.busGetControl(p)
		default:
			p = c.busPutStatus(p)
		}
	}
	return c.updatePins(p)
}

// TickRclock advances the receiver by one bit-sample tick.
func (c *Cdp1854) TickRclock(p Pins) Pins {
	c.rx.tickOne(c.control, p.GetSdi())
	if c.rx.da {
		c.interrupts.da = true
	}
	return c.updatePins(p)
}

// TickTclock advances the transmitter by one bit-sample tick.
func (c *Cdp1854) TickTclock(p Pins) Pins {
	prevThre, prevTsre := c.tx.thre, c.tx.tsre
	c.tx.tickOne(c.control, !p.GetCts())
	if c.control.TR && !prevThre && c.tx.thre {
		c.interrupts.txReady = true
	}
	if c.tx.thre && !prevTsre && c.tx.tsre {
		c.interrupts.txDone = true
	}
	return c.updatePins(p)
}

func (c *Cdp1854) updatePins(p Pins) Pins {
	p = c.updatePvCts(p)
	p = p.SetRts(!c.control.TR)
	p = p.SetDa(!c.rx.da)
	p = p.SetFe(c.rx.fe)
	p = p.SetPeOe(c.rx.pe || c.rx.oe)
	p = p.SetSdo(!c.tx.breakLatch && c.tx.sdo)
	p = p.SetThre(!c.tx.thre)
	p = p.SetTsre(c.tx.tsre)
	return p.SetInt(!(c.control.IE && c.interrupts.any()))
}

// updatePvCts forces /CTS high while a wired paravirt transmit channel is
// full, holding the transmitter off instead of letting a send silently
// drop.
func (c *Cdp1854) updatePvCts(p Pins) Pins {
	if c.tx.pvTx != nil {
		p = p.SetCts(cap(c.tx.pvTx) == len(c.tx.pvTx))
	}
	return p
}

func (c *Cdp1854) busGetData(p Pins) Pins {
	c.tx.holding = p.GetTBus()
	c.tx.thre = false
	c.interrupts.txReady = false
	c.interrupts.txDone = false
	return p
}

func (c *Cdp1854) busGetControl(p Pins) Pins {
	ctrl := ControlFromByte(p.GetTBus())
	if ctrl.TR {
		c.control.TR = true
	} else {
		c.tx.breakLatch = c.tx.breakLatch || ctrl.TxBreak
		c.control = ctrl
	}
	return p
}

func (c *Cdp1854) busPutData(p Pins) Pins {
	p = p.SetRBus(c.rx.holding)
	c.rx.da = false
	c.interrupts.da = false
	return p
}

func (c *Cdp1854) busPutStatus(p Pins) Pins {
	status := Status{
		DA:   c.rx.da,
		OE:   c.rx.oe,
		PE:   c.rx.pe,
		FE:   c.rx.fe,
		ES:   !p.GetEs(),
		PSI:  c.interrupts.psi,
		TSRE: c.tx.tsre,
		THRE: c.tx.thre,
	}
	p = p.SetRBus(status.Byte())
	c.interrupts.txReady = false
	c.interrupts.txDone = false
	c.interrupts.psi = false
	c.interrupts.cts = false
	return p
}
