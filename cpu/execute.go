/*
 * membershipcard - CDP1802 Execute-cycle opcode semantics
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

package cpu

import (
	"github.com/rcornwell/membershipcard/alu"
	"github.com/rcornwell/membershipcard/pins"
)

// tickExecute dispatches one sub-tick of S1/Execute by (I, N), matching one
// decoded opcode family per case. Every opcode spans ticks 0-7 except the
// I==0xc family (long branches, long skips and NOP), which continues through
// tick 15; only the long branches use those ticks to fetch a second operand
// byte.
func (c *Cpu1802) tickExecute(tick uint8, bus pins.Bus) {
	switch {
	// IDL (00)
	case c.I == 0 && c.N == 0:
		if tick == 0 || tick == 2 {
			c.tickMrd(tick, 0)
		}

	// LDN (0n) / LDA (4n)
	case (c.I == 0 || c.I == 4) && tick != 3 && tick != 4:
		if tick == 0 || tick == 2 {
			c.tickMrd(tick, c.N)
		}
	case (c.I == 0 || c.I == 4) && tick == 3:
		c.D = bus.GetBus()
	case c.I == 4 && tick == 4:
		c.inc(c.N)

	// LDXA (72)
	case c.I == 7 && c.N == 2:
		c.execLdxa(tick, bus)

	// LDX (f0)
	case c.I == 0xf && c.N == 0:
		if tick == 0 || tick == 2 {
			c.tickMrd(tick, c.X)
		} else if tick == 3 {
			c.D = bus.GetBus()
		}

	// LDI (f8)
	case c.I == 0xf && c.N == 8:
		if tick == 0 || tick == 2 {
			c.tickMrd(tick, c.P)
		} else if tick == 3 {
			c.D = bus.GetBus()
		} else if tick == 4 {
			c.inc(c.P)
		}

	// STR (5n)
	case c.I == 5:
		c.tickStore(tick, c.N, c.D)

	// STXD (73)
	case c.I == 7 && c.N == 3:
		if tick == 4 {
			c.dec(c.X)
		} else {
			c.tickStore(tick, c.X, c.D)
		}

	// INC (1n) / DEC (2n)
	case c.I == 1 && tick == 4:
		c.inc(c.N)
	case c.I == 2 && tick == 4:
		c.dec(c.N)
	case c.I == 1 || c.I == 2:
		// nothing to do on other ticks

	// IRX (60)
	case c.I == 6 && c.N == 0:
		if tick == 4 {
			c.inc(c.X)
		}

	// GLO (8n) / GHI (9n) / PLO (an) / PHI (bn)
	case c.I == 8 && tick == 3:
		c.D = c.glo(c.N)
	case c.I == 9 && tick == 3:
		c.D = c.ghi(c.N)
	case c.I == 0xa && tick == 3:
		c.plo(c.N, c.D)
	case c.I == 0xb && tick == 3:
		c.phi(c.N, c.D)
	case c.I >= 8 && c.I <= 0xb:
		// nothing to do on other ticks

	// OR (f1) / AND (f2) / XOR (f3)
	case c.I == 0xf && c.N >= 1 && c.N <= 3:
		c.execLogic(tick, bus)

	// ORI (f9) / ANI (fa) / XRI (fb)
	case c.I == 0xf && c.N >= 9 && c.N <= 0xb:
		c.execLogicImmediate(tick, bus)

	// SHR (f6) / SHL (fe)
	case c.I == 0xf && c.N == 6:
		if tick == 3 {
			c.DF = c.D&0x1 != 0
			c.D = c.D >> 1
		}
	case c.I == 0xf && c.N == 0xe:
		if tick == 3 {
			c.DF = c.D&0x80 != 0
			c.D = c.D << 1
		}

	// SHRC (76) / SHLC (7e)
	case c.I == 7 && c.N == 6:
		if tick == 3 {
			df := c.D&0x01 != 0
			c.D >>= 1
			if c.DF {
				c.D |= 0x80
			}
			c.DF = df
		}
	case c.I == 7 && c.N == 0xe:
		if tick == 3 {
			df := c.D&0x80 != 0
			c.D <<= 1
			if c.DF {
				c.D |= 0x01
			}
			c.DF = df
		}

	// ADD (f4) / ADC (74)
	case c.I == 0xf && c.N == 4:
		c.tickAdd(bus, tick, c.X, false)
	case c.I == 7 && c.N == 4:
		c.tickAdd(bus, tick, c.X, true)

	// ADI (fc) / ADCI (7c)
	case (c.I == 0xf || c.I == 7) && c.N == 0xc:
		if tick == 4 {
			c.inc(c.P)
		} else if c.I == 0xf {
			c.tickAdd(bus, tick, c.P, false)
		} else {
			c.tickAdd(bus, tick, c.P, true)
		}

	// SD (f5) / SDB (75)
	case c.I == 0xf && c.N == 5:
		c.tickSubd(bus, tick, c.X, false)
	case c.I == 7 && c.N == 5:
		c.tickSubd(bus, tick, c.X, true)

	// SDI (fd) / SDBI (7d)
	case (c.I == 0xf || c.I == 7) && c.N == 0xd:
		if tick == 4 {
			c.inc(c.P)
		} else if c.I == 0xf {
			c.tickSubd(bus, tick, c.P, false)
		} else {
			c.tickSubd(bus, tick, c.P, true)
		}

	// SM (f7) / SMB (77)
	case c.I == 0xf && c.N == 7:
		c.tickSubm(bus, tick, c.X, false)
	case c.I == 7 && c.N == 7:
		c.tickSubm(bus, tick, c.X, true)

	// SMI (ff) / SMBI (7f)
	case (c.I == 0xf || c.I == 7) && c.N == 0xf:
		if tick == 4 {
			c.inc(c.P)
		} else if c.I == 0xf {
			c.tickSubm(bus, tick, c.P, false)
		} else {
			c.tickSubm(bus, tick, c.P, true)
		}

	// NOP (c4)
	case c.I == 0xc && c.N == 4:
		// nothing to do

	// Bxx (3n) / LBxx (cn)
	case c.I == 3:
		c.tickBxx(bus, tick, c.N)
	case c.I == 0xc:
		c.tickLbxx(bus, tick, c.N)

	// SEP (dn) / SEX (en)
	case c.I == 0xd && tick == 3:
		c.P = c.N
	case c.I == 0xe && tick == 3:
		c.X = c.N
	case c.I == 0xd || c.I == 0xe:
		// nothing to do on other ticks

	// REQ (7a) / SEQ (7b)
	case c.I == 7 && (c.N == 0xa || c.N == 0xb) && tick == 3:
		c.out = c.out.SetQ(c.N&1 != 0)
	case c.I == 7 && (c.N == 0xa || c.N == 0xb):
		// nothing to do on other ticks

	// SAV (78) / MARK (79)
	case c.I == 7 && c.N == 8:
		c.tickStore(tick, c.X, c.T)
	case c.I == 7 && c.N == 9:
		c.tickMark(tick)

	// RET (70) / DIS (71)
	case c.I == 7 && c.N == 0:
		c.tickRet(bus, tick, true)
	case c.I == 7 && c.N == 1:
		c.tickRet(bus, tick, false)

	// OUT (61..67) / INP (69..6f)
	case c.I == 6 && c.N >= 1 && c.N <= 7:
		c.tickOutput(tick, c.N)
	case c.I == 6 && c.N >= 9 && c.N <= 0xf:
		c.tickInput(bus, tick, c.N-8)

	// Resv (68)
	case c.I == 6 && c.N == 8:
		// nothing to do
	}
}

func (c *Cpu1802) execLdxa(tick uint8, bus pins.Bus) {
	switch tick {
	case 0, 2:
		c.tickMrd(tick, c.X)
	case 3:
		c.D = bus.GetBus()
	case 4:
		c.inc(c.X)
	}
}

func (c *Cpu1802) execLogic(tick uint8, bus pins.Bus) {
	switch tick {
	case 0, 2:
		c.tickMrd(tick, c.X)
	case 3:
		m := bus.GetBus()
		switch c.N {
		case 1:
			c.D |= m
		case 2:
			c.D &= m
		case 3:
			c.D ^= m
		}
	}
}

func (c *Cpu1802) execLogicImmediate(tick uint8, bus pins.Bus) {
	switch tick {
	case 0, 2:
		c.tickMrd(tick, c.P)
	case 3:
		m := bus.GetBus()
		switch c.N {
		case 9:
			c.D |= m
		case 0xa:
			c.D &= m
		case 0xb:
			c.D ^= m
		}
		c.inc(c.P)
	}
}

func (c *Cpu1802) tickMark(tick uint8) {
	switch tick {
	case 0:
		c.out = c.out.SetMa(c.ghi(2))
	case 2:
		c.out = c.out.SetMa(c.glo(2))
	case 3:
		c.T = (c.X << 4) | (c.P & 0xf)
		c.out = c.out.SetBus(c.T)
		c.X = c.P
		c.dec(2)
	case 5:
		c.out = c.out.SetMwr(false)
	}
}

func (c *Cpu1802) tickRet(bus pins.Bus, tick uint8, ie bool) {
	switch tick {
	case 0, 2:
		c.tickMrd(tick, c.X)
	case 3:
		m := bus.GetBus()
		c.X = m >> 4
		c.P = m & 0xf
		c.inc(c.X)
		c.IE = ie
	}
}

func (c *Cpu1802) tickAdd(bus pins.Bus, tick, n uint8, carry bool) {
	switch tick {
	case 0, 2:
		c.tickMrd(tick, n)
	case 3:
		m := bus.GetBus()
		if carry {
			c.D, c.DF = alu.Addc(c.D, m, c.DF)
		} else {
			c.D, c.DF = alu.Add(c.D, m)
		}
	}
}

func (c *Cpu1802) tickSubd(bus pins.Bus, tick, n uint8, borrow bool) {
	switch tick {
	case 0, 2:
		c.tickMrd(tick, n)
	case 3:
		m := bus.GetBus()
		if borrow {
			c.D, c.DF = alu.Subc(m, c.D, !c.DF)
		} else {
			c.D, c.DF = alu.Sub(m, c.D)
		}
	}
}

func (c *Cpu1802) tickSubm(bus pins.Bus, tick, n uint8, borrow bool) {
	switch tick {
	case 0, 2:
		c.tickMrd(tick, n)
	case 3:
		m := bus.GetBus()
		if borrow {
			c.D, c.DF = alu.Subc(c.D, m, !c.DF)
		} else {
			c.D, c.DF = alu.Sub(c.D, m)
		}
	}
}

func (c *Cpu1802) tickBxx(bus pins.Bus, tick uint8, n uint8) {
	switch tick {
	case 0, 2:
		c.tickMrd(tick, c.P)
	case 1:
		c.ef = bus.GetEf()
	case 3:
		if c.test(n) {
			m := bus.GetBus()
			c.plo(c.P, m)
		} else {
			c.inc(c.P)
		}
	}
}

func (c *Cpu1802) tickLbxx(bus pins.Bus, tick uint8, n uint8) {
	if n&4 != 0 {
		// Long skips (c5-c7, cc-cf) read no operand; a taken skip steps R(P)
		// past the two bytes that follow the opcode.
		if tick == 3 {
			skip := c.IE
			if n&3 != 0 {
				skip = c.test((n & 3) | (^n & 8))
			}
			if skip {
				c.inc(c.P)
				c.inc(c.P)
			}
		}
		return
	}
	switch tick {
	case 0, 2:
		c.tickMrd(tick, c.P)
	case 1:
		c.ef = bus.GetEf()
	case 3:
		c.B = bus.GetBus()
		c.inc(c.P)
	case 8, 10:
		c.tickMrd(tick&7, c.P)
	case 11:
		if c.test(n) {
			m := bus.GetBus()
			c.plo(c.P, m)
			c.phi(c.P, c.B)
		} else {
			c.inc(c.P)
		}
	}
}

// test evaluates a short- or long-branch condition. Bit 3 of n inverts the
// sense of the low three bits' selected flag.
func (c *Cpu1802) test(n uint8) bool {
	var br bool
	switch n & 7 {
	case 0x0:
		br = true
	case 0x1:
		br = c.out.GetQ()
	case 0x2:
		br = c.D == 0
	case 0x3:
		br = c.DF
	case 0x4:
		br = (c.ef & 1) == 0
	case 0x5:
		br = (c.ef & 2) == 0
	case 0x6:
		br = (c.ef & 4) == 0
	case 0x7:
		br = (c.ef & 8) == 0
	}
	if n&8 > 0 {
		return !br
	}
	return br
}

func (c *Cpu1802) tickOutput(tick uint8, n uint8) {
	switch tick {
	case 0:
		c.out = c.out.SetN(n)
		c.out = c.out.SetMa(c.ghi(c.X))
	case 2:
		c.out = c.out.SetMrd(false)
		c.out = c.out.SetMa(c.glo(c.X))
	case 3:
		c.inc(c.X)
	case 7:
		c.out = c.out.SetN(0)
	}
}

func (c *Cpu1802) tickInput(bus pins.Bus, tick uint8, n uint8) {
	switch tick {
	case 0:
		c.out = c.out.SetN(n)
		c.out = c.out.SetMa(c.ghi(c.X))
	case 2:
		c.out = c.out.SetMa(c.glo(c.X))
	case 5:
		c.out = c.out.SetMwr(false)
	case 6:
		c.D = bus.GetBus()
	case 7:
		c.out = c.out.SetN(0)
	}
}
