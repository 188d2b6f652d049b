/*
 * membershipcard - CDP1802 instruction schema: decode, encode, mnemonics
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

// Package instr implements the CDP1802's 96-opcode instruction set: decode
// bytes into an Instr, encode an Instr back to bytes, and render mnemonics
// for disassembly. Each opcode family is declared as one schema entry rather
// than hand-written per-opcode parsing, following the same decode-and-store
// shape the CPU's own execute dispatch uses.
package instr

import "fmt"

// Op names every distinct CDP1802 instruction family.
type Op int

const (
	Idl Op = iota
	Ldn
	Inc
	Dec
	Br
	Bq
	Bz
	Bdf
	B1
	B2
	B3
	B4
	Nbr
	Bnq
	Bnz
	Bnf
	Bn1
	Bn2
	Bn3
	Bn4
	Lda
	Str
	Irx
	Out
	Resv68
	Inp
	Ret
	Dis
	Ldxa
	Stxd
	Adc
	Sdb
	Shrc
	Smb
	Sav
	Mark
	Req
	Seq
	Adci
	Sdbi
	Shlc
	Smbi
	Glo
	Ghi
	Plo
	Phi
	Lbr
	Lbq
	Lbz
	Lbdf
	Nop
	Lsnq
	Lsnz
	Lsnf
	Nlbr
	Lbnq
	Lbnz
	Lbnf
	Lsie
	Lsq
	Lsz
	Lsdf
	Sep
	Sex
	Ldx
	Or
	And
	Xor
	Add
	Sd
	Shr
	Sm
	Ldi
	Ori
	Ani
	Xri
	Adi
	Sdi
	Shl
	Smi
	numOps
)

// kind distinguishes the four schema shapes described in §4.2 of the spec:
// a bare opcode, a packed low-nibble operand, one immediate byte, or a
// 16-bit immediate split across two bytes.
type kind int

const (
	kindPlain kind = iota
	kindPacked
	kindPlainNN
	kindPlainHHLL
)

// schema describes how one Op is encoded. base is the full opcode byte for
// kindPlain/kindPlainNN/kindPlainHHLL, or the opcode's high nibble (already
// shifted into bits 4..7) for kindPacked.
type schema struct {
	base byte
	kind kind
	name string
}

var schemas = [numOps]schema{
	Idl:    {0x00, kindPlain, "idl"},
	Ldn:    {0x00, kindPacked, "ldn"},
	Inc:    {0x10, kindPacked, "inc"},
	Dec:    {0x20, kindPacked, "dec"},
	Br:     {0x30, kindPlainNN, "br"},
	Bq:     {0x31, kindPlainNN, "bq"},
	Bz:     {0x32, kindPlainNN, "bz"},
	Bdf:    {0x33, kindPlainNN, "bdf"},
	B1:     {0x34, kindPlainNN, "b1"},
	B2:     {0x35, kindPlainNN, "b2"},
	B3:     {0x36, kindPlainNN, "b3"},
	B4:     {0x37, kindPlainNN, "b4"},
	Nbr:    {0x38, kindPlainNN, "nbr"},
	Bnq:    {0x39, kindPlainNN, "bnq"},
	Bnz:    {0x3a, kindPlainNN, "bnz"},
	Bnf:    {0x3b, kindPlainNN, "bnf"},
	Bn1:    {0x3c, kindPlainNN, "bn1"},
	Bn2:    {0x3d, kindPlainNN, "bn2"},
	Bn3:    {0x3e, kindPlainNN, "bn3"},
	Bn4:    {0x3f, kindPlainNN, "bn4"},
	Lda:    {0x40, kindPacked, "lda"},
	Str:    {0x50, kindPacked, "str"},
	Irx:    {0x60, kindPlain, "irx"},
	Out:    {0x60, kindPacked, "out"},
	Resv68: {0x68, kindPlain, "resv68"},
	Inp:    {0x60, kindPacked, "inp"},
	Ret:    {0x70, kindPlain, "ret"},
	Dis:    {0x71, kindPlain, "dis"},
	Ldxa:   {0x72, kindPlain, "ldxa"},
	Stxd:   {0x73, kindPlain, "stxd"},
	Adc:    {0x74, kindPlain, "adc"},
	Sdb:    {0x75, kindPlain, "sdb"},
	Shrc:   {0x76, kindPlain, "shrc"},
	Smb:    {0x77, kindPlain, "smb"},
	Sav:    {0x78, kindPlain, "sav"},
	Mark:   {0x79, kindPlain, "mark"},
	Req:    {0x7a, kindPlain, "req"},
	Seq:    {0x7b, kindPlain, "seq"},
	Adci:   {0x7c, kindPlainNN, "adci"},
	Sdbi:   {0x7d, kindPlainNN, "sdbi"},
	Shlc:   {0x7e, kindPlain, "shlc"},
	Smbi:   {0x7f, kindPlainNN, "smbi"},
	Glo:    {0x80, kindPacked, "glo"},
	Ghi:    {0x90, kindPacked, "ghi"},
	Plo:    {0xa0, kindPacked, "plo"},
	Phi:    {0xb0, kindPacked, "phi"},
	Lbr:    {0xc0, kindPlainHHLL, "lbr"},
	Lbq:    {0xc1, kindPlainHHLL, "lbq"},
	Lbz:    {0xc2, kindPlainHHLL, "lbz"},
	Lbdf:   {0xc3, kindPlainHHLL, "lbdf"},
	Nop:    {0xc4, kindPlain, "nop"},
	Lsnq:   {0xc5, kindPlain, "lsnq"},
	Lsnz:   {0xc6, kindPlain, "lsnz"},
	Lsnf:   {0xc7, kindPlain, "lsnf"},
	Nlbr:   {0xc8, kindPlainHHLL, "nlbr"},
	Lbnq:   {0xc9, kindPlainHHLL, "lbnq"},
	Lbnz:   {0xca, kindPlainHHLL, "lbnz"},
	Lbnf:   {0xcb, kindPlainHHLL, "lbnf"},
	Lsie:   {0xcc, kindPlain, "lsie"},
	Lsq:    {0xcd, kindPlain, "lsq"},
	Lsz:    {0xce, kindPlain, "lsz"},
	Lsdf:   {0xcf, kindPlain, "lsdf"},
	Sep:    {0xd0, kindPacked, "sep"},
	Sex:    {0xe0, kindPacked, "sex"},
	Ldx:    {0xf0, kindPlain, "ldx"},
	Or:     {0xf1, kindPlain, "or"},
	And:    {0xf2, kindPlain, "and"},
	Xor:    {0xf3, kindPlain, "xor"},
	Add:    {0xf4, kindPlain, "add"},
	Sd:     {0xf5, kindPlain, "sd"},
	Shr:    {0xf6, kindPlain, "shr"},
	Sm:     {0xf7, kindPlain, "sm"},
	Ldi:    {0xf8, kindPlainNN, "ldi"},
	Ori:    {0xf9, kindPlainNN, "ori"},
	Ani:    {0xfa, kindPlainNN, "ani"},
	Xri:    {0xfb, kindPlainNN, "xri"},
	Adi:    {0xfc, kindPlainNN, "adi"},
	Sdi:    {0xfd, kindPlainNN, "sdi"},
	Shl:    {0xfe, kindPlain, "shl"},
	Smi:    {0xff, kindPlainNN, "smi"},
}

// Instr is a decoded CDP1802 instruction. Only the fields relevant to Op's
// schema kind are meaningful: Reg for kindPacked (register index, or for
// Out/Inp the raw low nibble of the opcode byte), Imm for kindPlainNN, Hi
// and Lo for kindPlainHHLL.
type Instr struct {
	Op  Op
	Reg uint8
	Imm uint8
	Hi  uint8
	Lo  uint8
}

// exactByte maps opcode bytes that are NOT claimed by a packed family to
// their Op. It is checked before the packed table, matching the schema
// macro's own "exact byte, then high nibble" resolution order.
var exactByte = func() map[byte]Op {
	m := map[byte]Op{}
	for op := Op(0); op < numOps; op++ {
		s := schemas[op]
		if s.kind != kindPacked {
			m[s.base] = op
		}
	}
	return m
}()

// packedNibble maps a high nibble to the Op of the packed family that owns
// it, for families where every low nibble maps to the same instruction.
var packedNibble = map[byte]Op{
	0x0: Ldn,
	0x1: Inc,
	0x2: Dec,
	0x4: Lda,
	0x5: Str,
	0x8: Glo,
	0x9: Ghi,
	0xa: Plo,
	0xb: Phi,
	0xd: Sep,
	0xe: Sex,
}

// Decode reads an instruction from the start of bin. It returns ok=false if
// bin is too short for the matched schema, or if the first byte matches no
// schema at all (which cannot happen for the CDP1802's full opcode map, but
// callers should not assume a non-empty bin always decodes).
func Decode(bin []byte) (Instr, bool) {
	if len(bin) == 0 {
		return Instr{}, false
	}
	b := bin[0]

	if op, ok := exactByte[b]; ok {
		return decodeAt(op, bin)
	}

	nibble := b >> 4
	lowNibble := b & 0xf

	// Nibble 6 is split between Irx/Resv68 (handled by exactByte above) and
	// the Out/Inp packed families, disambiguated by low-nibble range rather
	// than schema declaration order.
	if nibble == 0x6 {
		switch {
		case lowNibble >= 1 && lowNibble <= 7:
			return decodeAt(Out, bin)
		case lowNibble >= 9 && lowNibble <= 0xf:
			return decodeAt(Inp, bin)
		default:
			return Instr{}, false
		}
	}

	if op, ok := packedNibble[nibble]; ok {
		return decodeAt(op, bin)
	}
	return Instr{}, false
}

func decodeAt(op Op, bin []byte) (Instr, bool) {
	s := schemas[op]
	switch s.kind {
	case kindPlain:
		return Instr{Op: op}, true
	case kindPacked:
		return Instr{Op: op, Reg: bin[0] & 0xf}, true
	case kindPlainNN:
		if len(bin) < 2 {
			return Instr{}, false
		}
		return Instr{Op: op, Imm: bin[1]}, true
	case kindPlainHHLL:
		if len(bin) < 3 {
			return Instr{}, false
		}
		return Instr{Op: op, Hi: bin[1], Lo: bin[2]}, true
	default:
		return Instr{}, false
	}
}

// Encode renders an instruction back to its 1-3 byte wire form.
func Encode(i Instr) []byte {
	s := schemas[i.Op]
	switch s.kind {
	case kindPlain:
		return []byte{s.base}
	case kindPacked:
		return []byte{s.base | (i.Reg & 0xf)}
	case kindPlainNN:
		return []byte{s.base, i.Imm}
	case kindPlainHHLL:
		return []byte{s.base, i.Hi, i.Lo}
	default:
		return nil
	}
}

// Size returns the instruction's length in bytes: 1, 2, or 3.
func Size(i Instr) uint8 {
	switch schemas[i.Op].kind {
	case kindPlainNN:
		return 2
	case kindPlainHHLL:
		return 3
	default:
		return 1
	}
}

// Mnemonic renders the lowercase mnemonic with operand, e.g. "ldi f0" or
// "lbr 12 34".
func Mnemonic(i Instr) string {
	s := schemas[i.Op]
	switch s.kind {
	case kindPlain:
		return s.name
	case kindPacked:
		return fmt.Sprintf("%s %x", s.name, i.Reg)
	case kindPlainNN:
		return fmt.Sprintf("%s %02x", s.name, i.Imm)
	case kindPlainHHLL:
		return fmt.Sprintf("%s %02x %02x", s.name, i.Hi, i.Lo)
	default:
		return s.name
	}
}

// Opcode returns the first encoded byte of i.
func Opcode(i Instr) byte {
	return Encode(i)[0]
}
