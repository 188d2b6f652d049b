/*
 * membershipcard - UART port abstraction
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

package uartport

import (
	"github.com/rcornwell/membershipcard/ay51013"
)

// Ay51013Port drives an ay51013.Ay51013 through the Uart interface, turning
// its pin-level SI/SO/DB/RD wiring into byte-level Rx/Tx calls and gating
// its 16x-oversample tick behind a board-rate clock divider.
type Ay51013Port struct {
	chip *ay51013.Ay51013
	pins ay51013.Pins
	div  clockDiv

	rxByte  uint8
	rxReady bool
	rxErr   error

	pendingTx uint8
	txPhase   int // 0: idle, 1: DS held low for one tick, 2: DS raised with data loaded
}

// NewAy51013Port configures a fresh chip for mode and returns a port ticking
// it once every clkMul board ticks.
func NewAy51013Port(mode Mode, clkMul uint16) *Ay51013Port {
	chip := ay51013.New()
	pins := ay51013.NewPins()

	var parity *ay51013.Parity
	if mode.Parity != nil {
		p := ay51013.Parity(*mode.Parity)
		parity = &p
	}
	pins = chip.Configure(pins, mode.CharBits, parity, mode.StopBits)
	// Configure leaves DS asserted from its internal Reset pulse; drop it so
	// the first real Tx() produces a rising edge instead of finding DS
	// already high and latching nothing.
	pins = pins.SetDs(false)

	return &Ay51013Port{
		chip: chip,
		pins: pins,
		div:  clockDiv{clkMul: clkMul},
	}
}

func (a *Ay51013Port) Reset() {
	a.pins = a.chip.Reset(a.pins)
	a.pins = a.pins.SetDs(false)
	a.rxReady = false
	a.txPhase = 0
}

func (a *Ay51013Port) Tick() {
	if !a.div.step() {
		return
	}

	switch a.txPhase {
	case 1:
		a.pins = a.pins.SetDs(false)
		a.txPhase = 2
	case 2:
		a.pins = a.pins.SetDb(a.pendingTx).SetDs(true)
		a.txPhase = 0
	}
	a.pins = a.pins.SetRdav(true).SetSwe(false).SetRde(false)

	a.pins = a.chip.Tick(a.pins)

	if a.pins.GetDav() && !a.rxReady {
		a.rxByte = a.pins.GetRd()
		a.rxErr = nil
		switch {
		case a.pins.GetFe():
			a.rxErr = ErrFraming
		case a.pins.GetPe():
			a.rxErr = ErrParity
		case a.pins.GetOr():
			a.rxErr = ErrOverrun
		}
		a.rxReady = true
		a.pins = a.pins.SetRdav(false)
	}
}

func (a *Ay51013Port) SetRxPin(val bool) { a.pins = a.pins.SetSi(val) }
func (a *Ay51013Port) GetTxPin() bool    { return a.pins.GetSo() }

func (a *Ay51013Port) Rx() (uint8, error) {
	if !a.rxReady {
		return 0, ErrOverrun
	}
	a.rxReady = false
	return a.rxByte, a.rxErr
}

// Tx queues a character. The chip latches data on the rising edge of DS, so
// the port first drives DS low for a tick and then raises it with the data
// byte present, producing that edge regardless of DS's prior level.
func (a *Ay51013Port) Tx(b uint8) {
	a.pendingTx = b
	a.txPhase = 1
}

func (a *Ay51013Port) RxHoldCycles() uint32 { return a.div.rxHoldCycles() }
func (a *Ay51013Port) TxHoldCycles() uint32 { return a.div.txHoldCycles() }

func (a *Ay51013Port) IsRxReady() bool { return a.rxReady }
func (a *Ay51013Port) IsTxReady() bool { return a.pins.GetTbmt() }
func (a *Ay51013Port) IsTxIdle() bool  { return a.chip.IsTxIdle() }

var _ Uart = (*Ay51013Port)(nil)
