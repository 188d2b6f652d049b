/*
 * membershipcard - CDP1802 disassembler
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

// Package disassemble formats CDP1802 memory contents as a listing, built
// directly atop instr's decode table instead of its own opcode map, since
// the CDP1802's one/two/three-byte schemas need no RR/RX/SS-style
// addressing-mode table the way the teacher's 370 disassembler does.
package disassemble

import (
	"fmt"

	"github.com/rcornwell/membershipcard/instr"
	"github.com/rcornwell/membershipcard/memory"
)

// Line is one disassembled instruction: its address, raw bytes, and
// formatted mnemonic.
type Line struct {
	Addr  uint16
	Bytes []byte
	Text  string
}

func (l Line) String() string {
	hex := ""
	for _, b := range l.Bytes {
		hex += fmt.Sprintf("%02x ", b)
	}
	return fmt.Sprintf("%04x  %-9s%s", l.Addr, hex, l.Text)
}

// Listing decodes up to count instructions starting at addr, stopping
// early if decoding runs off the end of the image.
func Listing(mem *memory.Memory, addr uint16, count int) []Line {
	lines := make([]Line, 0, count)
	for i := 0; i < count; i++ {
		ins, ok := mem.GetInstrAt(addr)
		if !ok {
			break
		}
		size := instr.Size(ins)
		bytes := make([]byte, size)
		for j := uint8(0); j < size; j++ {
			bytes[j] = mem.ReadByte(addr + uint16(j))
		}
		lines = append(lines, Line{
			Addr:  addr,
			Bytes: bytes,
			Text:  instr.Mnemonic(ins),
		})
		addr += uint16(size)
	}
	return lines
}

// One formats the single instruction at addr, or "???" if decoding fails.
func One(mem *memory.Memory, addr uint16) Line {
	lines := Listing(mem, addr, 1)
	if len(lines) == 0 {
		return Line{Addr: addr, Bytes: []byte{mem.ReadByte(addr)}, Text: "???"}
	}
	return lines[0]
}
