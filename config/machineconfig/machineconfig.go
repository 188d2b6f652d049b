/*
 * membershipcard - machine assembly directives
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

// Package machineconfig registers the boardconfig directives that describe
// a Membership Card: what ROM image to load, how big RAM is, which UART
// chip drives the serial port and at what baud rate, and where the telnet
// console listens. Each directive's handler folds into a package-level
// Config the same way the teacher's debugconfig directives mutate package
// state as they're parsed, letting main read the finished Config back
// after boardconfig.Load returns.
package machineconfig

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rcornwell/membershipcard/config/boardconfig"
)

// UartKind names which UART chip to wire into the board.
type UartKind int

const (
	UartNone UartKind = iota
	UartAy51013
	UartCdp1854
)

// Config accumulates every directive a configuration file supplied. Its
// zero value has no ROM, no RAM, no UART and no console; the package-level C
// starts from 32KiB of RAM and a 4MHz clock.
type Config struct {
	RomPath     string
	RomAddr     uint16
	RamSize     uint16
	Uart        UartKind
	Baud        uint32
	ClockFreq   uint32
	InvertEf    bool
	InvertQ     bool
	ConsoleAddr string
}

// C is the configuration being assembled by the directive handlers
// registered in this package's init. Load a file with boardconfig.Load,
// then read C.
var C = Config{RamSize: 0x8000, ClockFreq: 4_000_000}

func init() {
	boardconfig.Register("ROM", setRom)
	boardconfig.Register("RAM", setRam)
	boardconfig.Register("UART", setUart)
	boardconfig.Register("INVERT", setInvert)
	boardconfig.Register("CONSOLE", setConsole)
	boardconfig.Register("CLOCK", setClock)
}

func setRom(value string, opts []boardconfig.Option) error {
	C.RomPath = value
	for _, opt := range opts {
		if strings.EqualFold(opt.Name, "addr") {
			addr, err := strconv.ParseUint(opt.Value, 16, 16)
			if err != nil {
				return errors.New("rom addr must be hex: " + opt.Value)
			}
			C.RomAddr = uint16(addr)
		}
	}
	return nil
}

func setRam(value string, _ []boardconfig.Option) error {
	size, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return errors.New("ram size must be a number: " + value)
	}
	C.RamSize = uint16(size)
	return nil
}

func setUart(value string, opts []boardconfig.Option) error {
	switch strings.ToUpper(value) {
	case "AY51013", "AY-5-1013":
		C.Uart = UartAy51013
	case "CDP1854":
		C.Uart = UartCdp1854
	default:
		return errors.New("unknown uart type: " + value)
	}
	C.Baud = 9600
	for _, opt := range opts {
		if strings.EqualFold(opt.Name, "baud") {
			baud, err := strconv.ParseUint(opt.Value, 10, 32)
			if err != nil {
				return errors.New("uart baud must be a number: " + opt.Value)
			}
			C.Baud = uint32(baud)
		}
	}
	return nil
}

func setInvert(value string, _ []boardconfig.Option) error {
	switch strings.ToUpper(value) {
	case "EF":
		C.InvertEf = true
	case "Q":
		C.InvertQ = true
	default:
		return errors.New("invert target must be EF or Q: " + value)
	}
	return nil
}

func setConsole(value string, _ []boardconfig.Option) error {
	C.ConsoleAddr = value
	return nil
}

func setClock(value string, _ []boardconfig.Option) error {
	freq, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return errors.New("clock frequency must be a number: " + value)
	}
	C.ClockFreq = uint32(freq)
	return nil
}
