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
	"github.com/rcornwell/membershipcard/cdp1854"
)

// Cdp1854Port drives a cdp1854.Cdp1854 through the Uart interface. Unlike
// the AY-5-1013 port, it leans on the chip's own paravirt channels for
// byte-level transfer instead of bit-banging SDI/SDO, since the CDP1854
// already exposes that escape hatch.
type Cdp1854Port struct {
	chip *cdp1854.Cdp1854
	pins cdp1854.Pins
	div  clockDiv

	rxCh chan uint8
	txCh chan uint8
}

// NewCdp1854Port configures a fresh chip for mode and returns a port whose
// bit-sample clock advances once every clkMul board ticks.
func NewCdp1854Port(mode Mode, clkMul uint16) *Cdp1854Port {
	rxCh := make(chan uint8, 1)
	txCh := make(chan uint8, 1)

	chip := cdp1854.New().WithPvRx(rxCh).WithPvTx(txCh)
	pins := cdp1854.NewPins().SetMode(true).SetCts(true).SetEs(true)

	var parity *cdp1854.Parity
	if mode.Parity != nil {
		p := cdp1854.Parity(*mode.Parity)
		parity = &p
	}
	ctrl := cdp1854.Control{WordLength: mode.CharBits, Parity: parity, StopBits: mode.StopBits}
	pins = pins.SetCs(0b101).SetTpb(true).SetRsel(true).SetRdWr(false).SetTBus(ctrl.Byte())
	pins = chip.TickTpb(pins)
	pins = pins.SetTpb(false)

	return &Cdp1854Port{chip: chip, pins: pins, div: clockDiv{clkMul: clkMul}, rxCh: rxCh, txCh: txCh}
}

func (c *Cdp1854Port) Reset() {
	c.pins = c.pins.SetClear(false)
	c.pins = c.chip.TickTpb(c.pins)
	c.pins = c.pins.SetClear(true)
}

func (c *Cdp1854Port) Tick() {
	if !c.div.step() {
		return
	}
	c.pins = c.chip.TickRclock(c.pins)
	c.pins = c.chip.TickTclock(c.pins)
}

func (c *Cdp1854Port) SetRxPin(val bool) { c.pins = c.pins.SetSdi(val) }
func (c *Cdp1854Port) GetTxPin() bool    { return c.pins.GetSdo() }

// Rx returns the next byte the chip's transmitter has shifted out onto the
// serial line (program-to-host direction), drained from txCh, the channel
// the chip itself fills via WithPvTx.
func (c *Cdp1854Port) Rx() (uint8, error) {
	select {
	case b := <-c.txCh:
		return b, nil
	default:
		return 0, ErrOverrun
	}
}

// Tx hands b to the chip's receiver as though it had just arrived on the
// serial line (host-to-program direction), enqueued onto rxCh, the channel
// the chip itself drains via WithPvRx.
func (c *Cdp1854Port) Tx(b uint8) {
	select {
	case c.rxCh <- b:
	default:
	}
}

func (c *Cdp1854Port) RxHoldCycles() uint32 { return c.div.rxHoldCycles() }
func (c *Cdp1854Port) TxHoldCycles() uint32 { return c.div.txHoldCycles() }

func (c *Cdp1854Port) IsRxReady() bool { return !c.pins.GetDa() }
func (c *Cdp1854Port) IsTxReady() bool { return !c.pins.GetThre() }
func (c *Cdp1854Port) IsTxIdle() bool  { return c.pins.GetTsre() }

var _ Uart = (*Cdp1854Port)(nil)
