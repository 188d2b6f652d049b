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

// Package uartport gives the board a single interface over either UART
// chip (AY-5-1013 or CDP1854), each wrapped in a clock-divider that turns
// the board's own tick rate into the chip's expected 16x-oversample serial
// clock.
package uartport

import (
	"errors"
	"fmt"
)

// ErrFraming, ErrParity, and ErrOverrun report the corresponding UART
// receive fault, mirroring the status bits both chips expose. Both ports'
// Rx also return ErrOverrun when no byte is waiting.
var (
	ErrFraming = errors.New("uart: framing error")
	ErrParity  = errors.New("uart: parity error")
	ErrOverrun = errors.New("uart: overrun error")
)

// Parity selects even or odd parity generation and checking.
type Parity int

const (
	Odd Parity = iota
	Even
)

// Mode is a UART's character format: bits per character, optional parity,
// and stop-bit count, the same three knobs both chips expose.
type Mode struct {
	CharBits uint8
	Parity   *Parity
	StopBits uint8
}

// DefaultMode is 8 data bits, no parity, 1 stop bit.
func DefaultMode() Mode {
	return Mode{CharBits: 8, StopBits: 1}
}

func (m Mode) String() string {
	p := "n"
	if m.Parity != nil {
		if *m.Parity == Even {
			p = "e"
		} else {
			p = "o"
		}
	}
	return fmt.Sprintf("%d%s%d", m.CharBits, p, m.StopBits)
}

// Uart is the common surface the board drives a serial port through,
// regardless of which chip backs it.
type Uart interface {
	Reset()
	Tick()

	SetRxPin(val bool)
	GetTxPin() bool

	Rx() (uint8, error)
	Tx(byte uint8)

	RxHoldCycles() uint32
	TxHoldCycles() uint32

	IsRxReady() bool
	IsTxReady() bool
	IsTxIdle() bool
}

// BaudToClockMultiplier converts a target baud rate and board clock
// frequency into the clock multiplier a 16x-oversampled UART needs: the
// number of board ticks per serial bit-cell tick.
func BaudToClockMultiplier(baud uint32, clkFreq uint32) uint16 {
	targetFreq := 16.0 * float64(baud)
	return uint16(float64(clkFreq)/targetFreq + 0.5)
}

// clockDiv turns a fast board tick into a slow 16x-oversample bit-cell
// tick: the chip only advances once every clkMul board ticks.
type clockDiv struct {
	clkMul uint16
	clkSeq uint16
}

func (d *clockDiv) step() bool {
	d.clkSeq++
	if d.clkSeq >= d.clkMul {
		d.clkSeq = 0
		return true
	}
	return false
}

func (d *clockDiv) rxHoldCycles() uint32 {
	return uint32(d.clkMul) - uint32(d.clkSeq)
}

func (d *clockDiv) txHoldCycles() uint32 {
	return uint32(d.clkMul) + (uint32(d.clkMul) - uint32(d.clkSeq))
}
