/*
 * membershipcard - bitmask-gated trace logging
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

// Package debug implements per-component trace logging gated by a bitmask,
// so a board run can enable CPU instruction tracing without also paying for
// UART bit-phase tracing, and vice versa.
package debug

import (
	"fmt"
	"os"
)

// Component bits, combined to form a trace mask.
const (
	Cpu = 1 << iota
	Memory
	Ay51013
	Cdp1854
	Board
)

var traceFile *os.File

// SetFile directs trace output at file; nil disables tracing output.
func SetFile(file *os.File) {
	traceFile = file
}

// Tracef emits a trace line tagged with component when mask has component
// set and traceFile is open.
func Tracef(component int, mask int, format string, a ...interface{}) {
	if traceFile == nil || (mask&component) == 0 {
		return
	}
	fmt.Fprintf(traceFile, name(component)+": "+format+"\n", a...)
}

func name(component int) string {
	switch component {
	case Cpu:
		return "cpu"
	case Memory:
		return "memory"
	case Ay51013:
		return "ay51013"
	case Cdp1854:
		return "cdp1854"
	case Board:
		return "board"
	default:
		return "?"
	}
}
