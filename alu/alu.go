/*
 * membershipcard - 8-bit ALU primitives shared by the CPU and its tests
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

// Package alu implements the width-8 add/sub primitives the CDP1802 uses to
// update D and DF. Subtraction follows the CDP1802's own carry convention:
// DF is set to true when no borrow occurred, not when one did.
package alu

// Add returns x+y truncated to 8 bits and the carry-out.
func Add(x, y uint8) (uint8, bool) {
	sum := uint16(x) + uint16(y)
	return uint8(sum), sum > 0xff
}

// Addc returns x+y+cin truncated to 8 bits and the carry-out of either stage.
func Addc(x, y uint8, cin bool) (uint8, bool) {
	acc, c1 := Add(x, y)
	var cinB uint8
	if cin {
		cinB = 1
	}
	acc, c2 := Add(acc, cinB)
	return acc, c1 || c2
}

// Sub returns x-y truncated to 8 bits. The returned flag follows the
// CDP1802's DF convention: true means no borrow was needed, i.e. x >= y.
func Sub(x, y uint8) (uint8, bool) {
	diff := uint16(x) - uint16(y)
	return uint8(diff), x >= y
}

// Subc returns x-y-bin (bin = 0 when borrow-in is true per the DF
// convention) and the combined no-borrow flag.
func Subc(x, y uint8, bin bool) (uint8, bool) {
	acc, b1 := Sub(x, y)
	var binB uint8
	if bin {
		binB = 1
	}
	acc, b2 := Sub(acc, binB)
	return acc, b1 && b2
}
