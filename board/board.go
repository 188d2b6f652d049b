/*
 * membershipcard - Lee Hart's 1802 Membership Card, with a UART
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

// Package board integrates a CDP1802, its memory, and a single serial port
// into Lee Hart's Membership Card: front-panel toggle-in/single-step
// semantics, Q/EF3 wired to the UART's rx/tx pins, and a poll heuristic a
// host loop can use to decide whether to single-tick the board or block
// waiting on serial I/O.
package board

import (
	"log/slog"

	"github.com/rcornwell/membershipcard/cpu"
	"github.com/rcornwell/membershipcard/instr"
	"github.com/rcornwell/membershipcard/memory"
	"github.com/rcornwell/membershipcard/pins"
	"github.com/rcornwell/membershipcard/uartport"
)

// opcodeHistoryLen bounds the executed-opcode ring buffer used by
// isCPUWaitingForUART's heuristic. At 4MHz and 2400 baud, an S0/S1 cycle
// takes 16 clock ticks, so 4_000_000 / (2_400 * 16) = 104 instructions can
// run between successive start-bit windows.
const opcodeHistoryLen = 104

// Status is what Poll found worth doing next.
type Status int

const (
	// StatusNone means there's nothing to do; the caller can block.
	StatusNone Status = iota
	// StatusUartRead means the UART has a received byte ready to drain.
	StatusUartRead
	// StatusUartWrite means the CPU looks like it's spinning on EF3,
	// waiting for serial input, while the UART's transmit side is idle: the
	// host can write a byte.
	StatusUartWrite
	// StatusTick means the CPU is not halted and should be ticked.
	StatusTick
)

func (s Status) String() string {
	switch s {
	case StatusUartRead:
		return "uart-read"
	case StatusUartWrite:
		return "uart-write"
	case StatusTick:
		return "tick"
	default:
		return "none"
	}
}

// FrontPanel mirrors the Membership Card's toggle switches and LEDs.
type FrontPanel struct {
	OutBuffer uint8
	InBuffer  uint8
	In        bool // true = pressed
	Clear     bool // true = down
	Wait      bool // true = down
	Read      bool // true = down, false = write
}

// Board is the assembled Membership Card.
type Board struct {
	log *slog.Logger

	cpuPins pins.Bus
	cpu     *cpu.Cpu1802
	memory  *memory.Memory

	frontPanel     FrontPanel
	lastFrontPanel FrontPanel

	uart uartport.Uart

	invertEf bool
	invertQ  bool

	lastPC         uint16
	opcodeHistory  []uint8
	tickCount      uint64
}

// Builder assembles a Board with the teacher's functional-option idiom:
// each With* call returns a new Builder value, and Build produces the
// running board with the CPU reset and pins defaulted.
type Builder struct {
	log      *slog.Logger
	memory   *memory.Memory
	uart     uartport.Uart
	invertEf bool
	invertQ  bool
}

// NewBuilder returns a Builder with no memory or UART attached; callers
// must supply memory via WithMemory before calling Build.
func NewBuilder() Builder {
	return Builder{}
}

func (b Builder) WithLogger(log *slog.Logger) Builder { b.log = log; return b }
func (b Builder) WithMemory(mem *memory.Memory) Builder { b.memory = mem; return b }
func (b Builder) WithUart(uart uartport.Uart) Builder { b.uart = uart; return b }
func (b Builder) WithInvertEf(invert bool) Builder { b.invertEf = invert; return b }
func (b Builder) WithInvertQ(invert bool) Builder { b.invertQ = invert; return b }

// Build constructs the board, resetting the CPU.
func (b Builder) Build() *Board {
	return New(b.log, b.memory, b.uart, b.invertEf, b.invertQ)
}

// New assembles a board around mem, optionally wired to a serial port.
// invertEF and invertQ account for boards that wire /EF and Q through an
// inverting buffer.
func New(log *slog.Logger, mem *memory.Memory, uart uartport.Uart, invertEf, invertQ bool) *Board {
	b := &Board{
		log:      log,
		cpu:      cpu.New(),
		memory:   mem,
		uart:     uart,
		invertEf: invertEf,
		invertQ:  invertQ,
	}
	b.cpuPins = pins.New()
	if invertEf {
		b.cpuPins = b.cpuPins.SetEf(0)
	}
	b.cpuPins = b.cpu.Reset(b.cpuPins)
	return b
}

// LastPC returns the value of R(P) the last time the CPU entered S0.
func (b *Board) LastPC() uint16 { return b.lastPC }

// CPU returns the CPU for inspection (register dumps, disassembly cursors).
func (b *Board) CPU() *cpu.Cpu1802 { return b.cpu }

// Memory returns the board's memory for inspection.
func (b *Board) Memory() *memory.Memory { return b.memory }

// FrontPanel returns the current front-panel state.
func (b *Board) FrontPanel() FrontPanel { return b.frontPanel }

// SetFrontPanel replaces the front-panel state ahead of the next Tick,
// simulating the operator flipping switches.
func (b *Board) SetFrontPanel(fp FrontPanel) { b.frontPanel = fp }

// Tick advances the whole board by one clock cycle: CPU, then memory, then
// (when not halted) the UART.
func (b *Board) Tick() {
	fp := b.frontPanel

	load := fp.Clear && fp.Wait
	b.cpuPins = b.cpuPins.SetClear(!fp.Clear)
	b.cpuPins = b.cpuPins.SetWait(!fp.Wait)
	b.cpuPins = b.cpuPins.SetEf4(xor(b.invertEf, !fp.In))
	writeEnable := !fp.Read

	if load && b.lastFrontPanel.In && !fp.In {
		b.cpuPins = b.cpuPins.SetDmaIn(false)
	}
	b.lastFrontPanel = fp

	b.cpuPins = b.cpu.Tick(b.cpuPins)

	if b.cpu.IsFetchTick0() {
		b.lastPC = b.cpu.RP()
	} else if load {
		b.updateLoadPC()
	}

	if fp.Clear {
		b.opcodeHistory = b.opcodeHistory[:0]
	} else if opcode, ok := b.cpu.ExecOpcode(); ok {
		b.pushOpcodeHistory(opcode)
	}

	if !b.cpuPins.GetDmaIn() && b.cpuPins.GetSc1() {
		b.cpuPins = b.cpuPins.SetDmaIn(true)
	}

	n2OrLoad := b.cpuPins.GetN2() || load
	if !b.cpuPins.GetMwr() && n2OrLoad {
		b.cpuPins = b.cpuPins.SetBus(fp.InBuffer)
	}

	newBus, _, err := b.memory.Tick(b.cpuPins, writeEnable)
	b.cpuPins = newBus
	if err != nil && b.log != nil {
		b.log.Warn("memory fault", "err", err, "tick", b.tickCount)
	}

	if !b.cpuPins.GetMrd() && b.cpuPins.GetTpb() && n2OrLoad {
		b.frontPanel.OutBuffer = b.cpuPins.GetBus()
	}

	if b.uart != nil {
		if fp.Clear {
			b.uart.Reset()
		} else if !fp.Wait {
			b.uart.SetRxPin(xor(b.invertQ, !b.cpuPins.GetQ()))
			b.uart.Tick()
		}
		b.cpuPins = b.cpuPins.SetEf3(xor(b.invertEf, b.uart.GetTxPin()))
	}

	b.tickCount++
}

func (b *Board) updateLoadPC() {
	rp := b.cpu.RP()
	if rp > 0 {
		rp--
	}
	switch {
	case rp > b.lastPC && rp < b.lastPC+3:
		ins, ok := b.memory.GetInstrAt(b.lastPC)
		size := uint16(1)
		if ok {
			size = uint16(instr.Size(ins))
		}
		if rp >= b.lastPC+size {
			b.lastPC = rp
		}
	case rp != b.lastPC:
		b.lastPC = rp
	}
}

func (b *Board) pushOpcodeHistory(opcode uint8) {
	for len(b.opcodeHistory)+1 >= opcodeHistoryLen {
		b.opcodeHistory = b.opcodeHistory[1:]
	}
	b.opcodeHistory = append(b.opcodeHistory, opcode)
}

// UartRead drains one byte from the UART, ticking the board forward by the
// chip's rx hold-cycle count so the rest of the system stays in lockstep
// with the time the real UART would have taken to settle.
func (b *Board) UartRead() (uint8, error) {
	val, err := b.uart.Rx()
	holdCycles := b.uart.RxHoldCycles()
	for i := uint32(0); i < holdCycles; i++ {
		b.Tick()
	}
	return val, err
}

// UartWrite sends one byte to the UART and ticks the board forward by the
// chip's tx hold-cycle count.
func (b *Board) UartWrite(val uint8) {
	b.uart.Tx(val)
	holdCycles := b.uart.TxHoldCycles()
	for i := uint32(0); i < holdCycles; i++ {
		b.Tick()
	}
}

// Poll reports what a host loop should do next: drain a received byte,
// write a byte to a program that appears to be waiting for serial input,
// advance the clock, or block because nothing is happening.
func (b *Board) Poll() Status {
	switch {
	case b.isUartRxReady():
		return StatusUartRead
	case b.isCPUWaitingForUart():
		return StatusUartWrite
	case !b.cpu.IsWaiting(b.cpuPins) || b.isFrontPanelUpdated():
		return StatusTick
	default:
		return StatusNone
	}
}

func (b *Board) isUartRxReady() bool {
	return !b.frontPanel.Clear && !b.frontPanel.Wait &&
		b.uart != nil && b.uart.IsRxReady()
}

// isCPUWaitingForUart approximates "the program is spinning on EF3 waiting
// for serial data" by checking whether the CPU has just repeated a branch
// instruction that tests EF3 (the short branches 0x36 B3 and 0x3e BN3).
func (b *Board) isCPUWaitingForUart() bool {
	if b.frontPanel.Clear || b.frontPanel.Wait || b.uart == nil || !b.uart.IsTxIdle() {
		return false
	}
	opcode, ok := b.cpu.ExecOpcode()
	if !ok || (opcode != 0x36 && opcode != 0x3e) {
		return false
	}
	count := 0
	for _, oc := range b.opcodeHistory {
		if oc == opcode {
			count++
		}
	}
	return count > 1
}

func (b *Board) isFrontPanelUpdated() bool {
	return b.frontPanel != b.lastFrontPanel
}

func xor(a, b bool) bool { return a != b }
