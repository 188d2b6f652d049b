/*
 * membershipcard - Packed bit-field accessors for pin-bundle words
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

// Package bitfield implements the packed-word pin bundle shared by every
// device in the system. Every device's wire state is a single uint64 with
// named bit offsets; get/set operate on 1, 2, 3, 4, or 8 contiguous bits.
package bitfield

// Word is a 64-bit packed pin bundle. Each device defines its own named
// offsets over a Word; bitfield only knows how to slice bits out of it.
type Word uint64

// Get1 returns the bit at offset lsb.
func Get1(w Word, lsb uint) bool {
	return (w & (1 << lsb)) != 0
}

// Get2 returns the 2-bit field with low bit at offset lsb.
func Get2(w Word, lsb uint) uint8 {
	return uint8((w >> lsb) & 0x3)
}

// Get3 returns the 3-bit field with low bit at offset lsb.
func Get3(w Word, lsb uint) uint8 {
	return uint8((w >> lsb) & 0x7)
}

// Get4 returns the 4-bit field with low bit at offset lsb.
func Get4(w Word, lsb uint) uint8 {
	return uint8((w >> lsb) & 0xf)
}

// Get8 returns the 8-bit field with low bit at offset lsb.
func Get8(w Word, lsb uint) uint8 {
	return uint8((w >> lsb) & 0xff)
}

// Set1 returns w with the bit at offset lsb set to val, other bits unchanged.
func Set1(w Word, lsb uint, val bool) Word {
	mask := Word(1) << lsb
	var v Word
	if val {
		v = mask
	}
	return (w &^ mask) | v
}

func setN(w Word, lsb uint, mask Word, val uint8) Word {
	m := mask << lsb
	v := (Word(val) << lsb) & m
	return (w &^ m) | v
}

// Set2 returns w with the 2-bit field at offset lsb set to val.
func Set2(w Word, lsb uint, val uint8) Word {
	return setN(w, lsb, 0x3, val)
}

// Set3 returns w with the 3-bit field at offset lsb set to val.
func Set3(w Word, lsb uint, val uint8) Word {
	return setN(w, lsb, 0x7, val)
}

// Set4 returns w with the 4-bit field at offset lsb set to val.
func Set4(w Word, lsb uint, val uint8) Word {
	return setN(w, lsb, 0xf, val)
}

// Set8 returns w with the 8-bit field at offset lsb set to val.
func Set8(w Word, lsb uint, val uint8) Word {
	return setN(w, lsb, 0xff, val)
}

// Masked overlays other onto w wherever mask has a bit set, leaving the rest
// of w untouched. This is the discipline every device's pin-drive logic
// relies on: a device only ever claims the subset of wires its mask covers.
func Masked(w, other, mask Word) Word {
	return (w &^ mask) | (other & mask)
}
