/*
 * membershipcard - RCA CDP1802 (COSMAC) microprocessor emulation
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

// Package cpu implements the RCA CDP1802 microprocessor: mode selection
// from CLEAR/WAIT, the eight (or sixteen, for Execute) sub-tick machine
// cycle, and every one of the instruction set's opcode semantics.
//
// Cycle timing on the physical device is more granular than what this
// package represents: a real CDP1802 strobes some signals on the rising
// clock edge and others on the falling edge. Here each clock cycle is a
// single tick:
//
//	0: MRD hi, N sampling (S1)
//	1: TPA hi, EF sampling (S1)
//	2: TPA lo, MRD lo (for reads)
//	3: bus sampling, update registers
//	4: post-op inc/dec
//	5: MWR lo (for writes)
//	6: TPB hi
//	7: TPB lo, MWR hi, DMA sampling (S1, S2, S3), INTR sampling (S1, S2)
package cpu

import "github.com/rcornwell/membershipcard/pins"

// mode is the chip's run mode, derived each tick from the CLEAR and WAIT
// pins.
type mode int

const (
	modeLoad mode = iota
	modeReset
	modePause
	modeRun
)

func modeOf(bus pins.Bus) mode {
	switch {
	case !bus.GetClear() && !bus.GetWait():
		return modeLoad
	case !bus.GetClear() && bus.GetWait():
		return modeReset
	case bus.GetClear() && !bus.GetWait():
		return modePause
	default:
		return modeRun
	}
}

// Cycle names the CDP1802's machine cycle kind: Fetch is S0, Init and
// Execute are S1, DmaIn and DmaOut are S2, Interrupt is S3.
type Cycle int

const (
	Init Cycle = iota
	Fetch
	Execute
	DmaIn
	DmaOut
	Interrupt
)

func (c Cycle) sc() uint8 {
	switch c {
	case Fetch:
		return 0
	case Init, Execute:
		return 1
	case DmaIn, DmaOut:
		return 2
	default:
		return 3
	}
}

func (c Cycle) String() string {
	names := map[Cycle]string{Fetch: "S0", Init: "S1", Execute: "S1", DmaIn: "S2", DmaOut: "S2", Interrupt: "S3"}
	return names[c]
}

// Cpu1802 is the CDP1802's architectural state: the machine cycle/sub-tick
// pair, the D/DF accumulator-and-carry, the sixteen 16-bit scratchpad
// registers, and the P/X/I/N/T/IE control registers.
type Cpu1802 struct {
	Cycle Cycle
	Tick  uint8

	D  uint8
	DF bool
	B  uint8
	R  [16]uint16
	P  uint8
	X  uint8
	I  uint8
	N  uint8
	T  uint8
	IE bool

	out      pins.Bus
	ef       uint8
	prevMode mode
}

// New returns a Cpu1802 in its Init(0) state, matching power-on reset.
func New() *Cpu1802 {
	c := &Cpu1802{IE: true, prevMode: modeReset}
	c.tickReset()
	return c
}

// Reset forces the chip back to its Init(0) state and re-drives pins
// accordingly, independent of the CLEAR/WAIT pins.
func (c *Cpu1802) Reset(bus pins.Bus) pins.Bus {
	c.tickReset()
	return c.updatePins(bus)
}

// IsWaiting reports whether the chip has nothing left to do this tick: it
// is in Pause mode, sitting in Reset's Init(0), or parked at the end of an
// instruction with no pending DMA/interrupt request.
func (c *Cpu1802) IsWaiting(bus pins.Bus) bool {
	dmaIntr := !bus.GetDmaIn() || !bus.GetDmaOut() || !bus.GetIntr()
	m := modeOf(bus)
	switch {
	case m == modeLoad && c.Cycle == Execute && c.Tick == 7:
		return !dmaIntr
	case m == modeLoad:
		return false
	case m == modeReset && c.Cycle == Init && c.Tick == 0:
		return true
	case m == modeReset:
		return false
	case m == modePause:
		return true
	case m == modeRun && c.Cycle == Execute && c.Tick == 7 && c.I == 0 && c.N == 0:
		return !dmaIntr
	default:
		return false
	}
}

// IsFetchTick0 reports whether the chip is at the very start of a fetch
// cycle, useful for instruction-boundary tracing.
func (c *Cpu1802) IsFetchTick0() bool {
	return c.Cycle == Fetch && c.Tick == 0
}

// ExecOpcode returns the opcode byte the chip is about to execute, if it is
// entering S1/Execute this tick.
func (c *Cpu1802) ExecOpcode() (uint8, bool) {
	if c.Cycle == Execute && c.Tick == 0 {
		return c.I<<4 | c.N, true
	}
	return 0, false
}

// RP returns the value of the register currently selected by P, the
// program counter in normal operation.
func (c *Cpu1802) RP() uint16 {
	return c.R[c.P]
}

// Tick advances the CPU by one clock cycle, reading and driving bus as
// described by the package doc's 8-phase tick breakdown.
func (c *Cpu1802) Tick(bus pins.Bus) pins.Bus {
	m := modeOf(bus)
	switch m {
	case modePause:
		return bus
	case modeReset:
		c.tickReset()
	case modeLoad:
		c.tickLoad(bus)
	case modeRun:
		c.tickRun(bus)
	}
	c.prevMode = m
	return c.updatePins(bus)
}

func (c *Cpu1802) updatePins(bus pins.Bus) pins.Bus {
	init := c.Cycle == Init
	mwr := !c.out.GetMwr()
	inp := c.Cycle == Execute && c.I == 6 && c.N >= 9
	mask := pins.MaskOut()
	if init || (mwr && !inp) {
		mask = pins.MaskBusOut()
	}
	return bus.SetMasked(c.out, mask)
}

func (c *Cpu1802) tickReset() {
	c.I = 0
	c.N = 0
	c.X = 0
	c.P = 0
	c.R[0] = 0
	c.IE = true
	c.Cycle = Init
	c.Tick = 0
	c.out = pins.Bus(0)
	c.out = c.out.SetMrd(true)
	c.out = c.out.SetMwr(true)
	c.out = c.out.SetSc(c.Cycle.sc())
}

func (c *Cpu1802) tickLoad(bus pins.Bus) {
	if c.prevMode == modePause || c.prevMode == modeRun {
		c.tickReset()
		return
	}
	c.tickTimingPulses(c.Cycle == DmaIn)
	switch {
	case c.Cycle == Init:
		c.tickInit(c.Tick)
	case c.Cycle == DmaIn:
		c.tickDmaIn(c.Tick)
	case c.Cycle == Execute && c.Tick == 2:
		addr := c.glo(c.P)
		if addr > 0 {
			c.out = c.out.SetMrd(false)
			c.out = c.out.SetMa(addr - 1)
		}
	case c.Cycle == Execute:
	default:
		panic("cpu: tickLoad in unexpected cycle")
	}

	switch {
	case (c.Cycle == Init && c.Tick == 8) || (c.Cycle == Execute && c.Tick == 7) || (c.Cycle == DmaIn && c.Tick == 7):
		if !bus.GetDmaIn() {
			c.Cycle, c.Tick = DmaIn, 0
		} else {
			c.Cycle, c.Tick = Execute, 0
		}
	case c.Cycle == Init, c.Cycle == Execute, c.Cycle == DmaIn:
		c.Tick++
	default:
		panic("cpu: tickLoad in unexpected cycle")
	}
}

func (c *Cpu1802) tickRun(bus pins.Bus) {
	c.tickTimingPulses(true)
	switch c.Cycle {
	case Init:
		c.tickInit(c.Tick)
	case Fetch:
		c.tickFetch(c.Tick, bus)
	case Execute:
		c.tickExecute(c.Tick, bus)
	case DmaIn:
		c.tickDmaIn(c.Tick)
	case DmaOut:
		c.tickDmaOut(c.Tick)
	case Interrupt:
		c.tickInterrupt(c.Tick)
	}

	switch {
	case c.Cycle == Init && c.Tick == 8:
		if s, ok := c.sampleDmaIntr(bus, false); ok {
			c.Cycle, c.Tick = s, 0
		} else {
			c.Cycle, c.Tick = Fetch, 0
		}

	case c.Cycle == Execute && c.Tick == 7 && c.I == 0 && c.N == 0:
		if s, ok := c.sampleDmaIntr(bus, c.IE); ok {
			c.Cycle, c.Tick = s, 0
		} else {
			c.Cycle, c.Tick = Execute, 0
		}

	case c.Cycle == Execute && c.Tick == 7 && c.I != 0xc:
		if s, ok := c.sampleDmaIntr(bus, c.IE); ok {
			c.Cycle, c.Tick = s, 0
		} else {
			c.Cycle, c.Tick = Fetch, 0
		}

	case (c.Cycle == Execute && c.Tick == 15) ||
		(c.Cycle == DmaIn && c.Tick == 7) ||
		(c.Cycle == DmaOut && c.Tick == 7) ||
		(c.Cycle == Interrupt && c.Tick == 7):
		if s, ok := c.sampleDmaIntr(bus, c.IE); ok {
			c.Cycle, c.Tick = s, 0
		} else {
			c.Cycle, c.Tick = Fetch, 0
		}

	case c.Cycle == Fetch && c.Tick == 7:
		c.Cycle, c.Tick = Execute, 0

	default:
		c.Tick++
	}
}

func (c *Cpu1802) tickTimingPulses(enableTPA bool) {
	switch c.Tick & 7 {
	case 0:
		c.out = c.out.SetSc(c.Cycle.sc())
		c.out = c.out.SetMrd(true)
	case 1:
		if enableTPA {
			c.out = c.out.SetTpa(true)
		}
	case 2:
		c.out = c.out.SetTpa(false)
	case 6:
		c.out = c.out.SetTpb(true)
	case 7:
		c.out = c.out.SetMwr(true)
		c.out = c.out.SetTpb(false)
	}
}

func (c *Cpu1802) tickInit(tick uint8) {
	if tick == 1 {
		c.X = 0
		c.P = 0
		c.R[0] = 0
	}
}

func (c *Cpu1802) tickFetch(tick uint8, bus pins.Bus) {
	switch tick {
	case 0, 2:
		c.tickMrd(tick, c.P)
	case 3:
		inst := bus.GetBus()
		c.I = (inst & 0xf0) >> 4
		c.N = inst & 0x0f
		if inst != 0 {
			c.inc(c.P)
		}
	}
}

func (c *Cpu1802) tickDmaIn(tick uint8) {
	switch tick {
	case 0:
		c.out = c.out.SetMa(c.ghi(0))
	case 2:
		c.out = c.out.SetMa(c.glo(0))
	case 4:
		c.inc(0)
	case 5:
		c.out = c.out.SetMwr(false)
	}
}

func (c *Cpu1802) tickDmaOut(tick uint8) {
	switch tick {
	case 0, 2:
		c.tickMrd(tick, 0)
	case 4:
		c.inc(0)
	}
}

func (c *Cpu1802) tickInterrupt(tick uint8) {
	if tick == 0 {
		c.T = (c.X << 4) | (c.P & 0xf)
		c.X = 2
		c.P = 1
		c.IE = false
	}
}

// sampleDmaIntr checks DMA-in/out and interrupt requests at the boundary
// between machine cycles. DMA and interrupt lines are sampled between the
// leading edge of TPB and the leading edge of TPA; the last tick of a
// machine cycle is as late as that window extends.
func (c *Cpu1802) sampleDmaIntr(bus pins.Bus, ie bool) (Cycle, bool) {
	dmaIn := !bus.GetDmaIn()
	dmaOut := !bus.GetDmaOut()
	intr := !bus.GetIntr()
	switch {
	case dmaIn:
		return DmaIn, true
	case dmaOut:
		return DmaOut, true
	case intr && ie:
		return Interrupt, true
	default:
		return 0, false
	}
}

func (c *Cpu1802) glo(n uint8) uint8 { return uint8(c.R[n] & 0xff) }
func (c *Cpu1802) ghi(n uint8) uint8 { return uint8(c.R[n] >> 8) }

func (c *Cpu1802) plo(n, d uint8) {
	c.R[n] = (c.R[n] & 0xff00) | uint16(d)
}

func (c *Cpu1802) phi(n, d uint8) {
	c.R[n] = (c.R[n] & 0xff) | (uint16(d) << 8)
}

func (c *Cpu1802) dec(n uint8) { c.R[n]-- }
func (c *Cpu1802) inc(n uint8) { c.R[n]++ }

func (c *Cpu1802) tickMrd(tick, n uint8) {
	switch tick {
	case 0:
		c.out = c.out.SetMa(c.ghi(n))
	case 2:
		c.out = c.out.SetMrd(false)
		c.out = c.out.SetMa(c.glo(n))
	}
}

func (c *Cpu1802) tickStore(tick, n, value uint8) {
	switch tick {
	case 0:
		c.out = c.out.SetMa(c.ghi(n))
	case 2:
		c.out = c.out.SetMa(c.glo(n))
	case 3:
		c.out = c.out.SetBus(value)
	case 5:
		c.out = c.out.SetMwr(false)
	}
}
